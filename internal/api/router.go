package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/feattrack/internal/api/features"
	"github.com/good-yellow-bee/feattrack/internal/api/middleware"
	"github.com/good-yellow-bee/feattrack/internal/api/projects"
	"github.com/good-yellow-bee/feattrack/internal/api/uploads"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	uploadLimiter := middleware.NewRateLimiter(s.config.RateLimitPerIP)

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PrometheusMiddleware)
	r.Use(middleware.Recoverer)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			projectHandler := projects.NewHandler(s.storage, s.config.Development)

			r.Get("/", projectHandler.List)
			r.Post("/", projectHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.GetByID)
				r.Put("/", projectHandler.Update)
				r.Delete("/", projectHandler.Delete)
			})
		})

		r.Route("/features", func(r chi.Router) {
			featureHandler := features.NewHandler(s.storage, s.config.Development)

			r.Get("/", featureHandler.List)
			r.Post("/", featureHandler.Create)
			r.Get("/tree", featureHandler.Tree)
			r.Put("/reorder", featureHandler.Reorder)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", featureHandler.GetByID)
				r.Put("/", featureHandler.Update)
				r.Delete("/", featureHandler.Delete)
			})
		})

		if s.blobs != nil {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimitByIP(uploadLimiter))
				uploadHandler := uploads.NewHandler(s.blobs, s.config.Development)
				r.Post("/uploads", uploadHandler.Upload)
			})
		}
	})

	// Locally stored blobs are fetched straight off the filesystem.
	if s.config.UploadsDir != "" {
		fileServer := http.FileServer(http.Dir(s.config.UploadsDir))
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))
	}

	// Health checks (public, no rate limit)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/health/live", s.healthHandler.Live)
	r.Get("/health/ready", s.healthHandler.Ready)

	return r
}
