// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

/*
Package middleware provides framework-independent HTTP middleware for the
Propacity API.

The middleware here is http.HandlerFunc-shaped; the chi router in
internal/api adapts it with a small wrapper. Chi-ecosystem middleware
(CORS, rate limiting) lives with the router instead, where go-chi/cors
and go-chi/httprate are configured.

# Middleware

  - RequestID: assigns (or preserves) an X-Request-ID per request and
    threads it through the logging context so every log line of a request
    carries the same request_id.
  - PrometheusMetrics: records request counts, durations, and the
    in-flight gauge, labeled by the chi route pattern so path parameters
    do not explode metric cardinality.
  - Compression: gzip-compresses responses for clients that accept it,
    skipping WebSocket upgrades.

# Performance Monitoring

PerformanceMonitor keeps a bounded sliding window of request samples and
aggregates per-endpoint latency percentiles for the system performance
endpoint. Requests slower than one second are logged as warnings.

# Ordering

RequestID should run first so downstream middleware and handlers log with
the request ID. PrometheusMetrics runs inside the route groups it
measures. Compression wraps data endpoints only; the Prometheus /metrics
handler negotiates its own encoding.
*/
package middleware
