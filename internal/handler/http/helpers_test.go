package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront-admin/internal/repository/memory"
	"github.com/utafrali/storefront-admin/internal/service"
	storagemem "github.com/utafrali/storefront-admin/internal/storage/memory"
	"github.com/utafrali/storefront-admin/pkg/health"
	"github.com/utafrali/storefront-admin/pkg/httputil"
)

const unknownID = "7d444840-9dc0-11d1-b245-5ffdce74fad2"

// envelope mirrors httputil.Response with a typed payload.
type envelope[T any] struct {
	Data  T                       `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter builds the production router over the in-memory store.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := testLogger()
	store := memory.NewStore()
	assets := storagemem.NewPermissive("https://cdn.example.com")

	svc := Services{
		Brands:   service.NewBrandService(store.Brands, nil, nil, logger),
		Products: service.NewProductService(store.Products, store.Brands, assets, nil, nil, logger),
		Orders:   service.NewOrderService(store.Orders, store.Products, nil, nil, logger),
	}
	return NewRouter(svc, health.NewHandler(), prometheus.NewRegistry(), logger, nil)
}

// do sends body as JSON (or no body when nil) and records the response.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		r = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doWithContentType(t *testing.T, h http.Handler, method, path, body, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	env := decodeEnvelope[json.RawMessage](t, rec)
	require.NotNil(t, env.Error, "expected an error envelope")
	return env.Error
}

// createBrand creates a brand through the API and returns its id.
func createBrand(t *testing.T, h http.Handler, name, url string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/brands", map[string]any{"name": name, "url": url})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env envelope[struct {
		ID string `json:"id"`
	}]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Data.ID
}

func productBody(brandID, name, sku string) map[string]any {
	return map[string]any{
		"name":     name,
		"sku":      sku,
		"price":    "12.50",
		"quantity": 5,
		"type":     "deliverable",
		"image":    "products/" + sku + ".png",
		"brand_id": brandID,
	}
}

// createProduct creates a product through the API and returns its id.
func createProduct(t *testing.T, h http.Handler, brandID, name, sku string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/products", productBody(brandID, name, sku))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env envelope[struct {
		ID string `json:"id"`
	}]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Data.ID
}
