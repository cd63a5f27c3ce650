package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront-admin/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func memoryConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	base := map[string]string{"STORAGE_DRIVER": "memory"}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.LoadFrom(base)
	require.NoError(t, err)
	return cfg
}

func TestNewApp_MemoryDriver(t *testing.T) {
	a, err := NewApp(memoryConfig(t, nil), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })

	assert.Nil(t, a.pool)
	assert.Nil(t, a.redis)
	assert.Nil(t, a.producer)
	assert.Equal(t, ":8010", a.httpServer.Addr)

	body := `{"name":"Acme Corp","url":"https://acme.example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/brands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApp_WithRedisAndAssetStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(cdn.Close)

	cfg := memoryConfig(t, map[string]string{
		"REDIS_ENABLED":       "true",
		"REDIS_HOST":          mr.Host(),
		"REDIS_PORT":          mr.Port(),
		"ASSET_BASE_URL":      cdn.URL,
		"ASSET_VERIFY_IMAGES": "true",
	})

	a, err := NewApp(cfg, testLogger())
	require.NoError(t, err)
	require.NotNil(t, a.redis)

	rec := httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	require.NoError(t, a.Shutdown())
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host := mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	mr.Close()

	cfg := memoryConfig(t, map[string]string{
		"REDIS_ENABLED": "true",
		"REDIS_HOST":    host,
		"REDIS_PORT":    strconv.Itoa(port),
	})

	_, err = NewApp(cfg, testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}
