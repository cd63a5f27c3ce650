package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func serveReadiness(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", down)

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Empty(t, resp.Checks)
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(h *Handler)
		wantCode    int
		wantOverall Status
	}{
		{
			name:        "no checkers",
			setup:       func(*Handler) {},
			wantCode:    http.StatusOK,
			wantOverall: StatusUp,
		},
		{
			name: "all up",
			setup: func(h *Handler) {
				h.RegisterCritical("postgres", up)
				h.RegisterNonCritical("redis", up)
				h.RegisterNonCritical("kafka", up)
			},
			wantCode:    http.StatusOK,
			wantOverall: StatusUp,
		},
		{
			name: "non-critical down degrades",
			setup: func(h *Handler) {
				h.RegisterCritical("postgres", up)
				h.RegisterNonCritical("kafka", down)
				h.RegisterNonCritical("redis", down)
			},
			wantCode:    http.StatusOK,
			wantOverall: StatusDegraded,
		},
		{
			name: "critical down",
			setup: func(h *Handler) {
				h.RegisterCritical("postgres", down)
				h.RegisterNonCritical("redis", down)
			},
			wantCode:    http.StatusServiceUnavailable,
			wantOverall: StatusDown,
		},
		{
			name: "register is critical",
			setup: func(h *Handler) {
				h.Register("postgres", down)
			},
			wantCode:    http.StatusServiceUnavailable,
			wantOverall: StatusDown,
		},
		{
			name: "re-register overwrites",
			setup: func(h *Handler) {
				h.Register("postgres", down)
				h.Register("postgres", up)
			},
			wantCode:    http.StatusOK,
			wantOverall: StatusUp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler()
			tt.setup(h)

			code, resp := serveReadiness(t, h)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantOverall, resp.Status)
		})
	}
}

func TestCheck_ReportsPerDependency(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", up)
	h.RegisterNonCritical("kafka", down)

	resp := h.Check(context.Background())

	require.Len(t, resp.Checks, 2)
	assert.True(t, resp.Checks["postgres"].Critical)
	assert.Equal(t, StatusUp, resp.Checks["postgres"].Status)
	assert.False(t, resp.Checks["kafka"].Critical)
	assert.Equal(t, StatusDown, resp.Checks["kafka"].Status)
	assert.Equal(t, "connection refused", resp.Checks["kafka"].Error)
}
