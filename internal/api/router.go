// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opticus-project/opticus/internal/auth"
	"github.com/opticus-project/opticus/internal/config"
	"github.com/opticus-project/opticus/internal/middleware"
)

// Router builds the HTTP handler tree.
type Router struct {
	handlers  *Handlers
	authority *auth.Authority
	cfg       *config.Config
}

// NewRouter creates a router over the given handler set.
func NewRouter(handlers *Handlers, authority *auth.Authority, cfg *config.Config) *Router {
	return &Router{handlers: handlers, authority: authority, cfg: cfg}
}

// Setup configures all routes. Middleware tiers:
//   - global: request id, real IP, panic recovery, CORS
//   - auth group: moderate IP rate limit, strict limit on login
//   - protected groups: prometheus metrics + session gate
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoint: permissive limit so monitors can poll freely.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/api/health", rt.handlers.Health)
	})

	// Authentication endpoints. Login gets the strictest limit since it is
	// the brute-force target; the rest of the group shares a moderate tier.
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(60, time.Minute))
		r.Use(middleware.PrometheusMetrics)

		r.With(httprate.LimitByIP(rt.cfg.Auth.LoginRateLimit, rt.cfg.Auth.LoginRateWindow)).
			Post("/login", rt.handlers.Login)
		r.Post("/register", rt.handlers.Register)
		r.Post("/verify-2fa", rt.handlers.VerifyTwoFactor)
		r.Post("/logout", rt.handlers.Logout)
	})

	// Camera queries require a validated session.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(300, time.Minute))
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)
		r.Use(rt.authority.Middleware)

		r.Get("/cameras", rt.handlers.Cameras)
	})

	// Data ingestion endpoints: sync trigger and direct upload.
	r.Route("/api/data", func(r chi.Router) {
		r.Use(httprate.LimitByIP(30, time.Minute))
		r.Use(middleware.PrometheusMetrics)
		r.Use(rt.authority.Middleware)

		r.Post("/sync-sheets", rt.handlers.SyncSheets)
		r.Post("/upload-file", rt.handlers.UploadFile)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
