package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/logging"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler responds with service health information.
type HealthHandler struct {
	// Check probes a backing dependency; nil means always healthy.
	Check func(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

// Handle implements GET /healthz and GET /api/v1/healthcheck.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Check != nil {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()
		if err := h.Check(checkCtx); err != nil {
			logging.FromContext(ctx).Error("health check failed", "error", err)
			respondJSON(ctx, w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}

	respondJSON(ctx, w, http.StatusOK, healthResponse{Status: "ok"})
}
