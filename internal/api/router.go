package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// Preview documents live outside /api: they are loaded directly into
	// an iframe or browser tab.
	r.Get("/render/{businessID}", apiHandler.RenderHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Route("/businesses/{businessID}", func(r chi.Router) {
			r.Post("/generate-website", apiHandler.GenerateWebsiteHandler)
			r.Post("/customize", apiHandler.CustomizeHandler)
			r.Get("/customize/remaining", apiHandler.RemainingMessagesHandler)

			r.Get("/session", apiHandler.GetSessionHandler)
			r.Post("/session/messages", apiHandler.PostSessionMessageHandler)
		})
	})

	r.Handle("/metrics", metricsHandler)

	return r
}
