// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	ws "github.com/GreenHacker420/propacity-proj-sub000/internal/websocket"
)

// WebSocket handles live progress stream connections
//
// @Summary Open the progress websocket
// @Description Upgrades to a websocket that streams batch progress and job lifecycle events. Pass job_id to subscribe immediately; otherwise send a subscribe message after connecting.
// @Tags System
// @Param job_id query string false "Job to subscribe to on connect"
// @Success 101 "Switching protocols"
// @Failure 503 {object} models.APIResponse "Websocket hub not running"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not running")
		respondError(w, http.StatusServiceUnavailable, codeAnalysis, "websocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, r.URL.Query().Get("job_id"))
	h.hub.Register <- client
	client.Start()
}

// getUpgrader builds the upgrader with origin checking and a handshake
// timeout against slow-client attacks.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates the Origin header against the configured
// CORS origins. Browsers always send Origin; an absent header means a
// non-browser client bypassing CORS, which is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// No config means a test harness; fail open there.
	if h.cfg == nil {
		return true
	}

	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
