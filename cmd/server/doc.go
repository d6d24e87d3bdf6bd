// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

/*
Package main is the entry point for the Propacity server application.

Propacity is a self-hosted customer feedback analytics service. It ingests
reviews from JSON payloads and CSV files, scores sentiment, and extracts
themed insights (pain points, feature requests, praise) through a resilient
inference pipeline that prefers a remote LLM and degrades to local lexicon
scoring when the remote is unavailable.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("propacity")
	├── DataSupervisor ("data-layer")
	│   └── Maintenance (snapshot retention pruning)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (job progress fanout)
	│   └── Job Tracker (analysis job registry)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (Chi router, REST + websocket)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB for reviews and insight snapshots
 4. Remote endpoint: Gemini client when INFERENCE_API_KEY is set
 5. Progress bus: Watermill in-process pub/sub for job events
 6. Inference client: cache, circuit breaker, throttle, repair, batching
 7. WebSocket Hub: streams job progress to subscribed clients
 8. Authentication: JWT or no-auth mode
 9. Supervisor Tree: Suture v4 process supervision
 10. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8080               # HTTP server port
	HTTP_HOST=0.0.0.0            # Bind address
	ENVIRONMENT=development      # development or production
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Database
	DUCKDB_PATH=/data/propacity.duckdb
	SNAPSHOT_RETENTION=720h      # Prune insight snapshots older than this (0 disables)

	# Authentication (choose one mode)
	AUTH_MODE=jwt                # jwt or none (none is refused in production)
	JWT_SECRET=<32+ chars>       # Required for JWT mode in production
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<password>

	# Remote inference (optional; local lexicon mode without it)
	INFERENCE_API_KEY=<key>
	INFERENCE_MODEL=gemini-2.5-flash
	INFERENCE_TIMEOUT=30s
	BREAKER_THRESHOLD=2.0
	BREAKER_RESET_TIMEOUT=10m
	INFERENCE_REQUESTS_PER_MINUTE=60

See .env.example for the complete configuration reference.

# Degraded Mode

Propacity runs WITHOUT a remote inference key, falling back to the bundled
sentiment lexicon and keyword clustering:

	# Local-only analysis
	./propacity

	# Remote-backed analysis
	export INFERENCE_API_KEY=xxx
	./propacity

Every analysis response carries the mode that produced it ("remote", "cache",
or "local") so clients can tell degraded results apart.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Disconnects WebSocket clients
 3. Waits for in-flight requests (10s timeout)
 4. Cancels running analysis jobs and closes the progress bus
 5. Closes the database
 6. Reports any services that failed to stop

# Usage Examples

Development (no auth, local inference):

	export AUTH_MODE=none
	go run ./cmd/server

Production (JWT + remote inference):

	export ENVIRONMENT=production
	export AUTH_MODE=jwt
	export JWT_SECRET=$(openssl rand -base64 32)
	export ADMIN_USERNAME=admin ADMIN_PASSWORD=secure-password
	export INFERENCE_API_KEY=xxx
	./propacity

Docker:

	docker run -d \
	  -e AUTH_MODE=none \
	  -e INFERENCE_API_KEY=xxx \
	  -p 8080:8080 \
	  ghcr.io/greenhacker420/propacity

# API Documentation

Swagger documentation is available at /swagger/index.html when the server
is running. The API is organized into categories:

  - Health: Liveness, readiness, and full health report
  - Auth: Login and logout
  - Reviews: Ingestion, listing, CSV import, per-source stats
  - Analysis: Sentiment scoring, insight jobs, snapshots, pipeline status
  - System: Performance report and the progress websocket

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/inference: Resilient analysis pipeline
  - internal/store: DuckDB persistence
*/
package main
