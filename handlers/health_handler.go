package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/paper-assistant-gateway/services/providers"
	"github.com/upb/paper-assistant-gateway/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// DatabaseChecker checks the credential database
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// ProviderSource reports which providers can currently be selected
type ProviderSource interface {
	Eligible(kind providers.Kind) []*providers.Provider
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db        DatabaseChecker
	providers ProviderSource
	logger    *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db is nil when credentials are
// kept in memory only.
func NewHealthHandler(db DatabaseChecker, source ProviderSource, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		providers: source,
		logger:    logger,
	}
}

// HandleHealth handles GET /healthz
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz
// Only the database gates readiness. A gateway without AI credentials still
// serves translations and citations, so that check is informational.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	switch {
	case h.db == nil:
		checks["database"] = "not_configured"
	default:
		if err := h.db.HealthCheck(ctx); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			checks["database"] = "unhealthy"
			allHealthy = false
		} else {
			checks["database"] = "healthy"
		}
	}

	if h.providers != nil {
		if len(h.providers.Eligible(providers.KindAI)) == 0 {
			checks["ai_providers"] = "none_configured"
		} else {
			checks["ai_providers"] = "configured"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
