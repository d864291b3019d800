package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"recipehub/pkg/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckHandler reports on the Postgres store the sweep deletes from
// and the Mongo audit store events are recorded in.
type HealthCheckHandler struct {
	db    Pinger
	audit Pinger
	now   func() time.Time
}

func NewHealthCheckHandler(db Pinger, audit Pinger) *HealthCheckHandler {
	return &HealthCheckHandler{
		db:    db,
		audit: audit,
		now:   time.Now,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	if err := h.audit.Ping(ctx); err != nil {
		checks["audit_store"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["audit_store"] = "healthy"
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	response := HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: h.now().UTC(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Warn().Err(err).Msg("Failed to write health response")
	}
}

func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	if err := h.audit.Ping(ctx); err != nil {
		http.Error(w, "audit store not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/health/readiness", h.Readiness)
	mux.HandleFunc("/health/liveness", h.Liveness)
}
