package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/paper-assistant-gateway/app"
	"github.com/upb/paper-assistant-gateway/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.Config.Server.WriteTimeout))

	// Extension pages call from chrome-extension:// and moz-extension:// origins
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", deps.StatusHandler.HandleStatus)

		r.Post("/ai/ask", deps.GatewayHandler.HandleAsk)
		r.Post("/translate", deps.GatewayHandler.HandleTranslate)

		r.Route("/citations", func(r chi.Router) {
			r.Get("/metadata", deps.GatewayHandler.HandleCitationMetadata)
			r.Get("/text", deps.GatewayHandler.HandleCitationText)
		})

		r.Route("/providers", func(r chi.Router) {
			r.Get("/", deps.GatewayHandler.HandleListProviders)

			// Credential changes require a bearer token when auth is enabled
			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireAuth)
				r.Put("/{id}/credential", deps.GatewayHandler.HandleSetCredential)
				r.Delete("/{id}/credential", deps.GatewayHandler.HandleClearCredential)
			})
		})

		// Single envelope endpoint mirroring the extension's message actions
		r.Post("/messages", deps.MessageHandler.HandleMessage)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
