package handlers

import (
	"net/http"

	"github.com/upb/paper-assistant-gateway/services/cache"
	"github.com/upb/paper-assistant-gateway/services/gateway"
	"github.com/upb/paper-assistant-gateway/services/providers"
	"github.com/upb/paper-assistant-gateway/utils"
	"go.uber.org/zap"
)

// Version is reported by the status endpoint
var Version = "0.1.0"

// StatusSource exposes the gateway's runtime state
type StatusSource interface {
	CacheStats() cache.CacheStats
	AllServed() map[providers.Kind]gateway.Served
}

// StatusResponse represents GET /api/v1/status
type StatusResponse struct {
	Version    string                            `json:"version"`
	Locale     string                            `json:"locale"`
	Auth       bool                              `json:"auth_enabled"`
	Cache      cache.CacheStats                  `json:"cache"`
	LastServed map[providers.Kind]gateway.Served `json:"last_served"`
}

// StatusHandler reports cache statistics and the last served providers
type StatusHandler struct {
	source      StatusSource
	locale      string
	authEnabled bool
	logger      *zap.Logger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(source StatusSource, locale string, authEnabled bool, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		source:      source,
		locale:      locale,
		authEnabled: authEnabled,
		logger:      logger,
	}
}

// HandleStatus handles GET /api/v1/status
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Version:    Version,
		Locale:     h.locale,
		Auth:       h.authEnabled,
		Cache:      h.source.CacheStats(),
		LastServed: h.source.AllServed(),
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write status response", zap.Error(err))
	}
}
