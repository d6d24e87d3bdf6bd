// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"net/http"
	"time"
)

// serviceVersion is reported by the health endpoint.
const serviceVersion = "1.0.0"

// Inference modes reported by the health endpoint.
const (
	inferenceModeReady     = "ready"      // remote configured and accepting calls
	inferenceModeDegraded  = "degraded"   // remote configured but circuit open or rate limited
	inferenceModeLocalOnly = "local_only" // no remote configured, lexicon scoring only
)

// Health handles full health check requests
//
// @Summary Get system health
// @Description Returns overall health with database connectivity, the current inference mode, active job and websocket counts, and uptime. Remote inference being down does not make the service unhealthy; local scoring keeps it usable.
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} models.APIResponse{data=HealthStatus} "Health report"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	mode := inferenceModeLocalOnly
	if cs := h.inference.Status(); cs.RemoteConfigured {
		mode = inferenceModeReady
		if cs.CircuitOpen || cs.RateLimited {
			mode = inferenceModeDegraded
		}
	}

	clients := 0
	if h.hub != nil {
		clients = h.hub.GetClientCount()
	}

	respondJSON(w, http.StatusOK, HealthStatus{
		Status:            status,
		Version:           serviceVersion,
		DatabaseConnected: dbConnected,
		InferenceMode:     mode,
		ActiveJobs:        h.jobs.Active(),
		WebsocketClients:  clients,
		UptimeSeconds:     time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthLive handles liveness probe requests
//
// @Summary Liveness probe
// @Description Returns 200 whenever the process is up, regardless of dependencies. Wire this to Kubernetes livenessProbe.
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} models.APIResponse "Process is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"}, start)
}

// HealthReady handles readiness probe requests
//
// @Summary Readiness probe
// @Description Returns 200 once the database answers a ping, 503 before that. Wire this to Kubernetes readinessProbe.
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} models.APIResponse "Ready to serve"
// @Failure 503 {object} models.APIResponse "Database not reachable"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.store == nil || h.store.Ping(r.Context()) != nil {
		respondError(w, http.StatusServiceUnavailable, codeDatabase, "database not ready", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"}, start)
}

// SystemPerformance handles latency report requests
//
// @Summary Get request latency statistics
// @Description Returns per-endpoint latency percentiles over the recent sample window, plus the newest raw samples. Complements the Prometheus histograms with an ad-hoc JSON view.
// @Tags System
// @Accept json
// @Produce json
// @Param recent query int false "Raw samples to include (default 20)"
// @Success 200 {object} models.APIResponse{data=PerformanceReport} "Latency report"
// @Router /system/performance [get]
func (h *Handler) SystemPerformance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	recent := getIntParam(r, "recent", 20)
	respondJSON(w, http.StatusOK, PerformanceReport{
		Endpoints: h.perf.Stats(),
		Recent:    h.perf.Recent(recent),
	}, start)
}
