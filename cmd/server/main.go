// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package main is the entry point for the Propacity server application.
//
// Propacity is a self-hosted customer feedback analytics service. It ingests
// reviews, scores sentiment, and extracts themed insights through a resilient
// inference pipeline that prefers a remote LLM and degrades to local lexicon
// scoring when the remote is unavailable.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Initialize DuckDB for reviews and insight snapshots
//  3. Remote endpoint: Gemini client when INFERENCE_API_KEY is set
//  4. Progress bus: Watermill in-process pub/sub for analysis job events
//  5. Inference client: cache, circuit breaker, adaptive throttle, batching
//  6. WebSocket Hub: Streams job progress to subscribed clients
//  7. Authentication: JWT or no-auth mode
//  8. HTTP Server: Chi REST API with Swagger documentation
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (see .env.example)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # Degraded Mode
//
// Propacity runs WITHOUT a remote inference key, serving every analysis from
// the bundled sentiment lexicon and keyword clustering:
//   - INFERENCE_API_KEY: remote model key (optional)
//   - INFERENCE_MODEL: remote model name (default gemini-2.5-flash)
//
// For JWT authentication (default):
//   - JWT_SECRET: 32+ character secret for token signing
//   - ADMIN_USERNAME: Admin username
//   - ADMIN_PASSWORD: Admin password (8+ characters)
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Cancels running analysis jobs and closes the progress bus
//   - Closes the database
//
// # Example Usage
//
// Development (no auth, local inference):
//
//	export AUTH_MODE=none
//	./propacity
//
// Production with JWT and remote inference:
//
//	export ENVIRONMENT=production
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD=secure-password
//	export INFERENCE_API_KEY=your-api-key
//	./propacity
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/GreenHacker420/propacity-proj-sub000/docs" // Import generated swagger docs
	"github.com/GreenHacker420/propacity-proj-sub000/internal/api"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/auth"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/breaker"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/config"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/gemini"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/inference"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/progress"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/store"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/supervisor"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/supervisor/services"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/throttle"
	ws "github.com/GreenHacker420/propacity-proj-sub000/internal/websocket"
)

// version is reported by metrics and the health endpoint.
const version = "1.0.0"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Propacity with supervisor tree")

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("remote_inference", cfg.Inference.RemoteConfigured()).
		Msg("Configuration loaded")

	st, err := store.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// The remote endpoint is optional. Without an API key the inference
	// client serves every analysis from the local lexicon analyzer, so
	// the service stays useful with no external dependency at all.
	var remote inference.RemoteEndpoint
	if cfg.Inference.RemoteConfigured() {
		gem, err := gemini.New(gemini.Config{
			APIKey:  cfg.Inference.APIKey,
			Model:   cfg.Inference.Model,
			BaseURL: cfg.Inference.Endpoint,
			Timeout: cfg.Inference.Timeout,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize remote inference client")
		}
		remote = gem
		logging.Info().Str("model", cfg.Inference.Model).Msg("Remote inference enabled")
	} else {
		logging.Warn().Msg("INFERENCE_API_KEY not set - running in degraded mode with local lexicon analysis")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Progress bus carries per-batch analysis events from the inference
	// client to the websocket hub and the job registry.
	bus := progress.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing progress bus")
		}
	}()

	client := inference.New(inference.Config{
		Remote:   remote,
		Progress: progress.NewPublisher(bus),
		Breaker: breaker.Config{
			Name:         "remote-inference",
			Threshold:    cfg.Inference.BreakerThreshold,
			ResetTimeout: cfg.Inference.BreakerReset,
			QuotaWeight:  cfg.Inference.QuotaFailureWeight,
			OtherWeight:  cfg.Inference.OtherFailureWeight,
		},
		Throttle: throttle.Config{
			RequestsPerWindow: cfg.Inference.RequestsPerMinute,
			Window:            time.Minute,
			MinInterval:       cfg.Inference.MinInterval,
			Floor:             cfg.Inference.MinIntervalFloor,
			Ceil:              cfg.Inference.MinIntervalCeil,
		},
		CacheCapacity:         cfg.Inference.CacheCapacity,
		SentimentTTL:          cfg.Inference.SentimentTTL,
		InsightTTL:            cfg.Inference.InsightTTL,
		RemoteSentiment:       cfg.Inference.RemoteSentiment,
		InsightBatchThreshold: cfg.Inference.InsightBatchThreshold,
		Workers:               cfg.Inference.LocalWorkers,
	})
	logging.Info().Msg("Inference client initialized")

	// WebSocket hub fans progress out to subscribed clients; the job
	// registry tracks job state for the polling endpoint.
	hub := ws.NewHub(bus)
	jobs := api.NewJobRegistry(bus)

	authManager, err := auth.New(&cfg.Security, cfg.Server.IsProduction())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authentication")
	}
	switch cfg.Security.AuthMode {
	case auth.ModeJWT:
		logging.Info().Msg("JWT authentication enabled")
	case auth.ModeNone:
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  All endpoints are publicly accessible without authentication!")
		logging.Warn().Msg("  This mode should ONLY be used for:")
		logging.Warn().Msg("    - Local development")
		logging.Warn().Msg("    - Completely isolated private networks")
		logging.Warn().Msg("    - CI/CD testing environments")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  NEVER use AUTH_MODE=none in production or on public networks!")
		logging.Warn().Msg("============================================================")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("This should only be used for load testing!")
	}

	handler := api.NewHandler(cfg, st, client, hub, authManager, jobs)

	// Analysis jobs spawned by the handler inherit this context so a
	// shutdown cancels them along with everything else.
	handler.BindJobContext(ctx)

	router := api.NewRouter(handler)

	// Create structured logger for supervisor using our slog adapter.
	// This bridges zerolog to slog for sutureslog compatibility.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	stopUptime := metrics.TrackUptime(version, runtime.Version())
	defer stopUptime()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer: snapshot retention pruning. The service exits cleanly
	// on its own when retention is disabled.
	tree.AddDataService(services.NewMaintenanceService(st, cfg.Database.SnapshotRetention, logging.WithComponent("maintenance")))

	// Messaging layer
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewJobTrackerService(jobs))
	logging.Info().Msg("WebSocket hub and job tracker added to supervisor tree")

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
