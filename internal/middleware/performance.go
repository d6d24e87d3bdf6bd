// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
)

// slowRequestMS is the latency above which a request is logged as slow.
const slowRequestMS = 1000

// RequestSample is one observed request for the performance window.
type RequestSample struct {
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status_code"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// EndpointStats aggregates latency statistics for one method+path.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	P50Duration  int64   `json:"p50_duration_ms"`
	P95Duration  int64   `json:"p95_duration_ms"`
	P99Duration  int64   `json:"p99_duration_ms"`
	MinDuration  int64   `json:"min_duration_ms"`
	MaxDuration  int64   `json:"max_duration_ms"`
}

// PerformanceMonitor keeps a bounded sliding window of request samples
// and computes per-endpoint percentiles over it. Prometheus histograms
// cover long-term monitoring; this window backs the human-facing
// performance endpoint with exact recent numbers.
type PerformanceMonitor struct {
	mu         sync.RWMutex
	samples    []RequestSample
	maxSamples int
}

// NewPerformanceMonitor creates a monitor holding at most maxSamples
// recent requests.
func NewPerformanceMonitor(maxSamples int) *PerformanceMonitor {
	if maxSamples < 1 {
		maxSamples = 1
	}
	return &PerformanceMonitor{
		samples:    make([]RequestSample, 0, maxSamples),
		maxSamples: maxSamples,
	}
}

// Record adds a sample, evicting the oldest when the window is full.
func (pm *PerformanceMonitor) Record(sample RequestSample) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.samples = append(pm.samples, sample)
	if len(pm.samples) > pm.maxSamples {
		pm.samples = pm.samples[1:]
	}
}

// Stats aggregates the current window per endpoint, busiest first.
func (pm *PerformanceMonitor) Stats() []EndpointStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	byEndpoint := make(map[string][]int64)
	for _, s := range pm.samples {
		key := s.Method + " " + s.Path
		byEndpoint[key] = append(byEndpoint[key], s.DurationMS)
	}

	stats := make([]EndpointStats, 0, len(byEndpoint))
	for endpoint, durations := range byEndpoint {
		sorted := make([]int64, len(durations))
		copy(sorted, durations)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, d := range sorted {
			sum += d
		}

		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: int64(len(sorted)),
			AvgDuration:  float64(sum) / float64(len(sorted)),
			P50Duration:  percentile(sorted, 0.50),
			P95Duration:  percentile(sorted, 0.95),
			P99Duration:  percentile(sorted, 0.99),
			MinDuration:  sorted[0],
			MaxDuration:  sorted[len(sorted)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})

	return stats
}

// Recent returns the newest n samples, oldest first.
func (pm *PerformanceMonitor) Recent(n int) []RequestSample {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if n > len(pm.samples) {
		n = len(pm.samples)
	}
	if n < 0 {
		n = 0
	}

	recent := make([]RequestSample, n)
	copy(recent, pm.samples[len(pm.samples)-n:])
	return recent
}

// Middleware records every wrapped request into the window and warns on
// slow requests.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start).Milliseconds()

		pm.Record(RequestSample{
			Method:     r.Method,
			Path:       routePattern(r),
			StatusCode: wrapper.statusCode,
			DurationMS: duration,
			Timestamp:  time.Now(),
		})

		if duration > slowRequestMS {
			logging.Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int64("duration_ms", duration).
				Msg("Slow request detected")
		}
	})
}

// percentile reads the p-th percentile from an ascending-sorted slice.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}
