// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package main provides the Propacity HTTP server
//
// Propacity ingests customer feedback, scores sentiment, and extracts
// themed insights with a resilient LLM-backed inference pipeline.
//
// @title Propacity Feedback Analytics API
// @version 1.0
// @description Customer feedback analytics service: review ingestion, resilient sentiment scoring, and LLM-backed insight extraction with graceful degradation.
// @description
// @description ## Inference Modes
// @description
// @description When a remote inference API key is configured, insight extraction runs
// @description against the remote model behind a circuit breaker and adaptive throttle.
// @description When the key is absent or the remote is unhealthy, the service degrades
// @description to local lexicon scoring instead of failing; every response reports the
// @description mode that produced it ("remote", "cache", or "local").
// @description
// @description ## Asynchronous Analysis
// @description
// @description POST /api/v1/analysis/insights returns 202 with a job ID. Job progress
// @description streams over the websocket at /api/v1/ws; final results are available
// @description from /api/v1/analysis/jobs/{jobID} and persisted as snapshots.
// @description
// @description ## Authentication
// @description
// @description With AUTH_MODE=jwt, obtain a token via /api/v1/auth/login and send it
// @description as "Bearer <token>" in the Authorization header (a session cookie is
// @description also set for browser clients). With AUTH_MODE=none all endpoints are
// @description open; the server refuses this mode in production environments.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address.
// @description Rate limit headers are included in responses: `X-RateLimit-Limit`, `X-RateLimit-Remaining`, `X-RateLimit-Reset`.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-01-15T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/GreenHacker420/propacity-proj-sub000/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT session token. Obtain via /api/v1/auth/login; send as "Bearer <token>" or rely on the session cookie.
//
// @tag.name Health
// @tag.description Health and readiness probes
//
// @tag.name Auth
// @tag.description Authentication and session management endpoints
//
// @tag.name Reviews
// @tag.description Review ingestion, listing, and CSV import
//
// @tag.name Analysis
// @tag.description Sentiment scoring and insight extraction
//
// @tag.name System
// @tag.description Operational endpoints: performance report and the progress websocket
package main
