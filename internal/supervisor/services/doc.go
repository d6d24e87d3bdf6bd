// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

/*
Package services provides suture.Service wrappers for Propacity components.

This package adapts existing application components to the suture v4 supervision
model, translating various lifecycle patterns (Run, ListenAndServe, periodic
sweeps) into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation (blocking loops to Serve pattern)
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

WebSocket Hub (WebSocketHubService):
  - Wraps websocket.Hub with context support
  - Fans job progress out to subscribed clients
  - Handles client connection cleanup on shutdown

Job Tracker (JobTrackerService):
  - Wraps the analysis job registry's progress consumer
  - Applies progress events to job records served by the API
  - Restarted by the supervisor if the consumer crashes

Maintenance (MaintenanceService):
  - Owns the periodic snapshot retention sweep
  - Prunes insight snapshots older than the configured window
  - Completes without restart when retention is disabled

# Usage Example

Creating and registering services:

	import (
	    "net/http"
	    "time"

	    "github.com/GreenHacker420/propacity-proj-sub000/internal/supervisor"
	    "github.com/GreenHacker420/propacity-proj-sub000/internal/supervisor/services"
	)

	func setupSupervisor(server *http.Server, hub *websocket.Hub, registry *api.JobRegistry) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    // HTTP server with 30s shutdown timeout
	    httpSvc := services.NewHTTPServerService(server, 30*time.Second)
	    tree.AddAPIService(httpSvc)

	    // WebSocket hub
	    wsSvc := services.NewWebSocketHubService(hub)
	    tree.AddMessagingService(wsSvc)

	    // Job tracker
	    jobSvc := services.NewJobTrackerService(registry)
	    tree.AddMessagingService(jobSvc)

	    // Start supervision
	    tree.Serve(ctx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

The MaintenanceService additionally returns suture.ErrDoNotRestart when
retention is disabled, so a misconfigured deployment does not spin in a
start/exit loop.

# Service Identification

All services implement fmt.Stringer for logging:

	func (s *HTTPServerService) String() string {
	    return "http-server"
	}

Suture uses this for log messages:

	INFO http-server: starting
	INFO http-server: stopped
	ERROR http-server: restarting after failure

# Testing

Services can be tested with mock components:

	type MockServer struct {
	    started  bool
	    shutdown bool
	}

	func (m *MockServer) ListenAndServe() error {
	    m.started = true
	    <-time.After(time.Hour) // Block until shutdown
	    return nil
	}

	func (m *MockServer) Shutdown(ctx context.Context) error {
	    m.shutdown = true
	    return nil
	}

	func TestHTTPService(t *testing.T) {
	    mock := &MockServer{}
	    svc := services.NewHTTPServerService(mock, time.Second)

	    ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	    defer cancel()

	    svc.Serve(ctx)

	    if !mock.started { t.Error("server not started") }
	    if !mock.shutdown { t.Error("server not shutdown") }
	}

# Thread Safety

All service wrappers are safe for concurrent use:
  - State is protected by mutexes where needed
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/websocket: WebSocket hub implementation
  - internal/api: Job registry implementation
*/
package services
