package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router
func NewRouter(handlers *Handlers, loggingMiddleware *LoggingMiddleware) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - ORDER MATTERS!
	r.Use(middleware.RequestID)      // Generate request ID first
	r.Use(middleware.RealIP)         // Extract real IP
	r.Use(loggingMiddleware.Handler) // Add logger to context with request ID
	r.Use(middleware.Recoverer)      // Panic recovery

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"}, // Expose request ID
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)
	r.Get("/health/details", handlers.HealthDetails)

	r.Route("/v1", func(r chi.Router) {
		// Event streams outlive the request timeout below
		r.Get("/namespaces/{namespace}/pipelineruns/{name}/events", handlers.StreamEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// Pipeline runs
			r.Get("/namespaces/{namespace}/pipelineruns", handlers.ListSummaries)
			r.Get("/namespaces/{namespace}/pipelineruns/{name}/summary", handlers.GetSummary)
			r.Get("/namespaces/{namespace}/pipelineruns/{name}/history", handlers.GetHistory)

			// Saved views
			r.Get("/views", handlers.ListViews)
			r.Get("/views/{view_id}/summaries", handlers.ViewSummaries)
		})
	})

	return r
}
