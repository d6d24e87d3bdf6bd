// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getCounterValue extracts the value from a Prometheus counter
func getCounterValue(counter prometheus.Counter) float64 {
	var m io_prometheus_client.Metric
	if err := counter.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// getGaugeValue extracts the value from a Prometheus gauge
func getGaugeValue(gauge prometheus.Gauge) float64 {
	var m io_prometheus_client.Metric
	if err := gauge.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func TestRecordRemoteCall(t *testing.T) {
	t.Run("records success", func(t *testing.T) {
		before := getCounterValue(InferenceRequestsTotal.WithLabelValues("insights", "remote", "success"))

		RecordRemoteCall("insights", 250*time.Millisecond, nil)

		after := getCounterValue(InferenceRequestsTotal.WithLabelValues("insights", "remote", "success"))
		if after != before+1 {
			t.Errorf("expected success counter to increase by 1, got %v -> %v", before, after)
		}
	})

	t.Run("records failure", func(t *testing.T) {
		before := getCounterValue(InferenceRequestsTotal.WithLabelValues("insights", "remote", "failure"))

		RecordRemoteCall("insights", 30*time.Second, errors.New("deadline exceeded"))

		after := getCounterValue(InferenceRequestsTotal.WithLabelValues("insights", "remote", "failure"))
		if after != before+1 {
			t.Errorf("expected failure counter to increase by 1, got %v -> %v", before, after)
		}
	})
}

func TestRecordLocalFallback(t *testing.T) {
	before := getCounterValue(InferenceRequestsTotal.WithLabelValues("sentiment", "local", "degraded"))

	RecordLocalFallback("sentiment", true)

	after := getCounterValue(InferenceRequestsTotal.WithLabelValues("sentiment", "local", "degraded"))
	if after != before+1 {
		t.Errorf("expected degraded counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := getCounterValue(APIRequestsTotal.WithLabelValues("GET", "/api/v1/reviews", "200"))

	RecordAPIRequest("GET", "/api/v1/reviews", "200", 15*time.Millisecond)

	after := getCounterValue(APIRequestsTotal.WithLabelValues("GET", "/api/v1/reviews", "200"))
	if after != before+1 {
		t.Errorf("expected request counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestRecordDBQuery(t *testing.T) {
	t.Run("successful query has no error count", func(t *testing.T) {
		before := getCounterValue(DBQueryErrors.WithLabelValues("SELECT", "reviews"))

		RecordDBQuery("SELECT", "reviews", 5*time.Millisecond, nil)

		after := getCounterValue(DBQueryErrors.WithLabelValues("SELECT", "reviews"))
		if after != before {
			t.Errorf("expected error counter unchanged, got %v -> %v", before, after)
		}
	})

	t.Run("failed query increments error count", func(t *testing.T) {
		before := getCounterValue(DBQueryErrors.WithLabelValues("INSERT", "reviews"))

		RecordDBQuery("INSERT", "reviews", 5*time.Millisecond, errors.New("constraint violation"))

		after := getCounterValue(DBQueryErrors.WithLabelValues("INSERT", "reviews"))
		if after != before+1 {
			t.Errorf("expected error counter to increase by 1, got %v -> %v", before, after)
		}
	})
}

func TestCacheMetricsConcurrent(t *testing.T) {
	before := getCounterValue(CacheHits.WithLabelValues("sentiment"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				CacheHits.WithLabelValues("sentiment").Inc()
			}
		}()
	}
	wg.Wait()

	after := getCounterValue(CacheHits.WithLabelValues("sentiment"))
	if after != before+1000 {
		t.Errorf("expected 1000 increments, got %v", after-before)
	}
}

func TestCircuitBreakerGauges(t *testing.T) {
	CircuitBreakerState.WithLabelValues("test-breaker").Set(1)
	if got := getGaugeValue(CircuitBreakerState.WithLabelValues("test-breaker")); got != 1 {
		t.Errorf("expected state gauge 1, got %v", got)
	}

	CircuitBreakerFailureWeight.WithLabelValues("test-breaker").Set(1.5)
	if got := getGaugeValue(CircuitBreakerFailureWeight.WithLabelValues("test-breaker")); got != 1.5 {
		t.Errorf("expected weight gauge 1.5, got %v", got)
	}
}

func TestTrackUptime(t *testing.T) {
	stop := TrackUptime("test", "go1.24")
	defer stop()

	if got := getGaugeValue(AppInfo.WithLabelValues("test", "go1.24")); got != 1 {
		t.Errorf("expected app info gauge 1, got %v", got)
	}
}
