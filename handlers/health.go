package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/inventory-admin/app"
	"github.com/upb/inventory-admin/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck reports that the process is serving
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessCheck verifies that the persistence backend is reachable
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		response := HealthResponse{
			Status:    "ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    map[string]string{"database": "healthy"},
		}
		status := http.StatusOK

		if err := deps.HealthCheck(ctx); err != nil {
			deps.Logger.Warn("database health check failed", zap.Error(err))
			response.Status = "not_ready"
			response.Checks["database"] = "unhealthy"
			status = http.StatusServiceUnavailable
		}

		if err := utils.WriteJSON(w, status, utils.SuccessResponse{Data: response}); err != nil {
			deps.Logger.Error("failed to write readiness response", zap.Error(err))
		}
	}
}
