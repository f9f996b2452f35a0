// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/blogicum/blogicum/internal/api/middleware"
)

// Routes assembles the full route tree with the canonical middleware stack.
func (s *Server) Routes() http.Handler {
	cfg := s.cfg.Current()

	r := mw.NewRouter(mw.StackConfig{
		EnableCORS:            true,
		AllowedOrigins:        cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		CSP:                   cfg.CSP,
		EnableCSRF:            true,
		EnableMetrics:         true,
		TracingService:        tracingService(cfg.Tracing.Enabled, cfg.LogService),
		EnableLogging:         true,
		RateLimitRPM:          cfg.RateLimitRPM,
	})
	r.Use(s.withSession)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if cfg.MetricsAddr == "" {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/images/{imageName}", s.handleServeImage)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Get("/posts", s.handleListPosts)
		r.Get("/posts/{postID}", s.handleGetPost)
		r.Get("/posts/{postID}/comments", s.handleListComments)

		r.Get("/categories", s.handleListCategories)
		r.Get("/categories/{slug}/posts", s.handleCategoryPosts)
		r.Get("/locations", s.handleListLocations)
		r.Get("/locations/{locationID}", s.handleGetLocation)

		r.Get("/profiles/{username}", s.handleGetProfile)
		r.Get("/pages/{slug}", s.handleStaticPage)

		// Everything below requires a valid session.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/posts", s.handleCreatePost)
			r.Patch("/posts/{postID}", s.handleUpdatePost)
			r.Delete("/posts/{postID}", s.handleDeletePost)
			r.Post("/posts/{postID}/image", s.handleUploadImage)

			r.Post("/posts/{postID}/comments", s.handleCreateComment)
			r.Patch("/posts/{postID}/comments/{commentID}", s.handleUpdateComment)
			r.Delete("/posts/{postID}/comments/{commentID}", s.handleDeleteComment)

			r.Post("/categories", s.handleCreateCategory)
			r.Post("/locations", s.handleCreateLocation)

			r.Get("/profile", s.handleGetOwnProfile)
			r.Patch("/profile", s.handleUpdateOwnProfile)
		})
	})

	return r
}

func tracingService(enabled bool, service string) string {
	if !enabled {
		return ""
	}
	return service
}
