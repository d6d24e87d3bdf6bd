// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestPrometheusMetrics_PassesThroughStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"ok", http.StatusOK},
		{"created", http.StatusCreated},
		{"bad request", http.StatusBadRequest},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestPrometheusMetrics_DefaultsTo200(t *testing.T) {
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("hello")); err != nil {
			t.Errorf("Write() error = %v", err)
		}
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "hello" {
		t.Errorf("body = %q, want hello", rec.Body.String())
	}
}

func TestRoutePattern_UsesChiPattern(t *testing.T) {
	var got string
	router := chi.NewRouter()
	router.Get("/api/v1/analysis/jobs/{jobID}", func(w http.ResponseWriter, r *http.Request) {
		got = routePattern(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/jobs/abc-123", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if got != "/api/v1/analysis/jobs/{jobID}" {
		t.Errorf("routePattern() = %q, want /api/v1/analysis/jobs/{jobID}", got)
	}
}

func TestRoutePattern_FallsBackToPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/plain/path", nil)
	if got := routePattern(req); got != "/plain/path" {
		t.Errorf("routePattern() = %q, want /plain/path", got)
	}
}

func TestMetricsResponseWriter_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapper := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	wrapper.WriteHeader(http.StatusNotFound)

	if wrapper.statusCode != http.StatusNotFound {
		t.Errorf("captured status = %d, want %d", wrapper.statusCode, http.StatusNotFound)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("underlying status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func BenchmarkPrometheusMetrics(b *testing.B) {
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler(httptest.NewRecorder(), req)
	}
}
