// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"context"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/auth"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/config"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/inference"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/middleware"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/store"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/websocket"
)

// performanceWindow is how many recent request samples the in-memory
// performance monitor keeps for GET /api/v1/system/performance.
const performanceWindow = 1000

// Handler carries the dependencies of every HTTP endpoint.
type Handler struct {
	cfg       *config.Config
	store     *store.Store
	inference *inference.Client
	hub       *websocket.Hub
	auth      *auth.Manager
	jobs      *JobRegistry
	perf      *middleware.PerformanceMonitor
	startTime time.Time

	// jobsCtx scopes asynchronous insight jobs. It defaults to
	// context.Background(); BindJobContext replaces it with the server's
	// run context so shutdown cancels jobs between batches.
	jobsCtx context.Context
}

// NewHandler wires the HTTP layer. hub may be nil in CLI-style setups;
// the websocket endpoint then answers 503 and job notifications are
// skipped.
func NewHandler(
	cfg *config.Config,
	st *store.Store,
	client *inference.Client,
	hub *websocket.Hub,
	authManager *auth.Manager,
	jobs *JobRegistry,
) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     st,
		inference: client,
		hub:       hub,
		auth:      authManager,
		jobs:      jobs,
		perf:      middleware.NewPerformanceMonitor(performanceWindow),
		startTime: time.Now(),
		jobsCtx:   context.Background(),
	}
}

// BindJobContext ties asynchronous insight jobs to ctx. Call it once
// before serving; typically with the context that also supervises the
// websocket hub, so jobs stop when the server does.
func (h *Handler) BindJobContext(ctx context.Context) {
	h.jobsCtx = ctx
}

// Performance exposes the monitor for router wiring.
func (h *Handler) Performance() *middleware.PerformanceMonitor {
	return h.perf
}
