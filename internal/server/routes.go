package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/warden/internal/api/v1"
	"github.com/gosuda/warden/internal/server/middleware"
)

func (s *Server) registerRoutes(ctx context.Context) {
	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated, IP-rate-limited registration.
	// 2. Admin-only moderation surface.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, 2, 5))

			publicAPI := humachi.New(r, apiConfig("Warden Registration API"))
			v1.RegisterPublicRoutes(publicAPI, s.svc)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(s.cfg.JWT.Secret))
			r.Use(middleware.RequireAdmin())
			r.Use(middleware.RateLimit(ctx, 100, 200))

			adminAPI := humachi.New(r, apiConfig("Warden Moderation API"))
			v1.RegisterAccountRoutes(adminAPI, s.svc)
			v1.RegisterBulkRoutes(adminAPI, s.svc)
			v1.RegisterAuditRoutes(adminAPI, s.store.Audit())
		})
	})

	// WebSocket audit feed, admin-only. Absent when Redis is not wired.
	if s.wsHub != nil {
		s.router.Route("/ws", func(r chi.Router) {
			r.Use(middleware.Auth(s.cfg.JWT.Secret))
			r.Use(middleware.RequireAdmin())

			r.Get("/audit", s.wsHub.ServeFirehose)
			r.Get("/audit/{accountID}", s.wsHub.ServeAccount)
		})
	}

	// Health check (unauthenticated).
	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}
