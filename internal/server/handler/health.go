package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// DepCheck pings one downstream dependency.
type DepCheck func(ctx context.Context) error

// HealthHandler serves the health-check endpoint, optionally probing
// downstream dependencies.
type HealthHandler struct {
	checks map[string]DepCheck
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. checks may be nil.
func NewHealthHandler(checks map[string]DepCheck, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// HealthCheck responds with a JSON status. Dependency failures are reported
// per dependency but the endpoint still returns 200 so orchestrators do not
// restart the process for a flaky downstream.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if len(h.checks) > 0 {
		deps := make(map[string]string, len(h.checks))
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				resp["status"] = "degraded"
			} else {
				deps[name] = "ok"
			}
		}
		resp["dependencies"] = deps
	}

	writeJSON(w, http.StatusOK, resp)
}
