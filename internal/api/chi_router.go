// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler, so the framework-free middleware from
// internal/middleware works with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router binds handlers to routes with per-group middleware.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter builds the router and its middleware from the handler's
// security configuration.
func NewRouter(handler *Handler) *Router {
	sec := handler.cfg.Security
	chiMw := NewChiMiddlewareFromConfig(
		sec.CORSOrigins,
		sec.RateLimitReqs,
		sec.RateLimitWindow,
		sec.RateLimitDisabled,
	)

	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order. CORS must be
	// global so OPTIONS preflight requests are answered before routing.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Health endpoints stay public with a permissive limit so monitors
	// can poll frequently without credentials.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Auth endpoints, with the strictest limits against brute force.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.Use(APISecurityHeaders())
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
		r.Post("/logout", router.handler.Logout)
	})

	// Review data endpoints. Writes and imports get tighter limits than
	// reads; everything requires authentication.
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.handler.perf.Middleware)
		r.Use(router.handler.auth.RequireAuth)

		r.Get("/", router.handler.ListReviews)
		r.Get("/sources", router.handler.ReviewSources)
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/", router.handler.CreateReviews)
		r.With(router.chiMiddleware.RateLimitImport()).Post("/import", router.handler.ImportReviews)
	})

	// Analysis endpoints. Insight jobs fan out remote model calls, so
	// submission is limited harder than synchronous scoring.
	r.Route("/api/v1/analysis", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.handler.perf.Middleware)
		r.Use(router.handler.auth.RequireAuth)

		r.Post("/sentiment", router.handler.AnalyzeSentiment)
		r.Post("/sentiment/batch", router.handler.AnalyzeSentimentBatch)
		r.With(router.chiMiddleware.RateLimitInsights()).Post("/insights", router.handler.StartInsights)
		r.Get("/insights/latest", router.handler.LatestInsights)
		r.Get("/snapshots", router.handler.ListSnapshots)
		r.Get("/jobs/{jobID}", router.handler.GetJob)
		r.Get("/status", router.handler.AnalysisStatus)
	})

	// System endpoints.
	r.Route("/api/v1/system", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(router.handler.auth.RequireAuth)
		r.Get("/performance", router.handler.SystemPerformance)
	})

	// Websocket upgrade. Auth runs before the upgrade; browser clients
	// carry the session cookie, so no Authorization header is needed.
	r.With(
		router.chiMiddleware.RateLimitWebSocket(),
		router.handler.auth.RequireAuth,
	).Get("/api/v1/ws", router.handler.WebSocket)

	// Observability.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
