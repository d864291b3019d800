package handler

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

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func serve(h *HealthCheckHandler, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck_AllHealthy(t *testing.T) {
	h := NewHealthCheckHandler(fakePinger{}, fakePinger{})

	w := serve(h, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["database"])
	assert.Equal(t, "healthy", resp.Checks["audit_store"])
}

func TestHealthCheck_AuditStoreDown(t *testing.T) {
	h := NewHealthCheckHandler(fakePinger{}, fakePinger{err: errors.New("server selection timeout")})

	w := serve(h, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["database"])
	assert.Contains(t, resp.Checks["audit_store"], "server selection timeout")
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name     string
		db       error
		audit    error
		wantCode int
		wantBody string
	}{
		{name: "ready", wantCode: http.StatusOK, wantBody: "ready"},
		{name: "database down", db: errors.New("refused"), wantCode: http.StatusServiceUnavailable, wantBody: "database not ready"},
		{name: "audit down", audit: errors.New("refused"), wantCode: http.StatusServiceUnavailable, wantBody: "audit store not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthCheckHandler(fakePinger{err: tt.db}, fakePinger{err: tt.audit})

			w := serve(h, "/health/readiness")

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestLiveness_IgnoresDependencies(t *testing.T) {
	h := NewHealthCheckHandler(fakePinger{err: errors.New("down")}, fakePinger{err: errors.New("down")})

	w := serve(h, "/health/liveness")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", w.Body.String())
}
