// Package router sets up all HTTP routes and middleware chains for the
// Inkwell API server.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/metrics"
	"inkwell/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(blogs *handlers.Blogs, taxonomy *handlers.Taxonomy, media *handlers.Media) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS)

	// Health check and metrics — outside the rate limit.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// API routes.
	r.Route("/api/v1", func(r chi.Router) {
		limiter := middleware.NewRateLimiter(120, time.Minute)
		r.Use(limiter.Middleware)

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", blogs.List)
			r.Post("/", blogs.Create)
			r.Get("/{slug}", blogs.GetBySlug)
			r.Patch("/{slug}", blogs.Update)
		})

		r.Get("/tags", taxonomy.Tags)
		r.Get("/topics", taxonomy.Topics)

		r.Post("/media", media.Upload)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
