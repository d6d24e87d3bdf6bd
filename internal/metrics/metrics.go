// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Remote inference calls and local fallbacks
// - Cache efficiency per namespace
// - Circuit breaker and throttle behavior
// - Batch scheduling throughput
// - API endpoint latency and WebSocket connections
// - Database query performance (DuckDB)

var (
	// Inference Metrics
	InferenceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_requests_total",
			Help: "Total number of inference requests by execution path",
		},
		[]string{"operation", "path", "result"}, // path: "remote", "local", "cache"; result: "success", "failure", "degraded"
	)

	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_remote_call_duration_seconds",
			Help:    "Duration of remote inference calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"operation"},
	)

	RemoteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_remote_failures_total",
			Help: "Total number of remote inference failures by class",
		},
		[]string{"class"}, // "quota", "transport", "malformed"
	)

	RepairOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_repair_outcomes_total",
			Help: "Total number of response repair attempts by winning strategy",
		},
		[]string{"strategy"}, // "direct", "fenced", "sliced", "quoted", "synthesized", "failed"
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"namespace"}, // "sentiment", "insights", "summary"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"namespace"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"namespace"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"namespace", "reason"}, // reason: "expired", "capacity"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerFailureWeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_failure_weight",
			Help: "Current accumulated weighted failure score",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Throttle Metrics
	ThrottleWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "throttle_wait_duration_seconds",
			Help:    "Time spent waiting for throttle clearance in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.25, 0.5, 1, 5, 15, 30, 60},
		},
	)

	ThrottleWindowRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "throttle_window_requests",
			Help: "Number of requests counted in the current rate window",
		},
	)

	ThrottleMinInterval = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "throttle_min_interval_seconds",
			Help: "Current adaptive minimum interval between remote calls",
		},
	)

	// Batch Scheduling Metrics
	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_size",
			Help:    "Number of items per scheduled batch",
			Buckets: []float64{50, 100, 120, 250, 500},
		},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_duration_seconds",
			Help:    "Duration of individual batch executions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	BatchJobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "batch_jobs_active",
			Help: "Current number of running batch jobs",
		},
	)

	// Progress Event Metrics
	ProgressEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_events_published_total",
			Help: "Total number of progress events published to the bus",
		},
	)

	ProgressEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_events_dropped_total",
			Help: "Total number of progress events dropped by slow consumers",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_job_subscriptions",
			Help: "Current number of job progress subscriptions",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordRemoteCall records the outcome of one remote inference call.
func RecordRemoteCall(operation string, duration time.Duration, err error) {
	RemoteCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	InferenceRequestsTotal.WithLabelValues(operation, "remote", result).Inc()
}

// RecordLocalFallback records a request served by the local path.
func RecordLocalFallback(operation string, degraded bool) {
	result := "success"
	if degraded {
		result = "degraded"
	}
	InferenceRequestsTotal.WithLabelValues(operation, "local", result).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// TrackUptime starts a goroutine updating the uptime gauge every minute.
// Returns a stop function.
func TrackUptime(version, goVersion string) func() {
	AppInfo.WithLabelValues(version, goVersion).Set(1)

	start := time.Now()
	done := make(chan struct{})
	ticker := time.NewTicker(time.Minute)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				AppUptime.Set(time.Since(start).Seconds())
			}
		}
	}()

	return func() { close(done) }
}
