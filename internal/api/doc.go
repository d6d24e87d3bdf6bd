// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package api implements the HTTP surface of the feedback analytics
// service: review ingestion, sentiment and insight analysis, job
// tracking, authentication, health, and the websocket progress feed.
//
// Every JSON endpoint responds with the models.APIResponse envelope. Data
// endpoints sit behind bearer/cookie authentication (internal/auth),
// per-group rate limits, and Prometheus instrumentation; health probes
// and /metrics stay public so orchestration keeps working when auth or
// the database is down.
//
// Routing uses go-chi. Framework-free middleware from internal/middleware
// is adapted with chiMiddleware; chi-ecosystem concerns (CORS, httprate)
// are built in chi_middleware.go.
package api
