// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - Remote inference calls, local fallbacks, and response repair outcomes
  - Cache hit/miss rates per namespace
  - Circuit breaker state and weighted failure accumulation
  - Throttle waits and the adaptive minimum interval
  - Batch sizes, durations, and active jobs
  - API request latency and throughput
  - WebSocket connections and job subscriptions
  - Database query performance

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Usage

Metrics are package-level variables registered via promauto. Record directly:

	metrics.CacheHits.WithLabelValues("sentiment").Inc()

or through the helper functions:

	metrics.RecordRemoteCall("insights", elapsed, err)
	metrics.RecordAPIRequest("POST", "/api/v1/analysis/insights", "202", elapsed)

All metrics are safe for concurrent use.
*/
package metrics
