// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

/*
Package websocket streams analysis job progress to connected clients.

The hub consumes the in-process progress bus and forwards each event only
to the clients subscribed to that event's job ID. There is no broadcast
path: a client that has not subscribed to a job receives nothing for it.
This keeps one user's analysis run invisible to every other connection.

Key Components:

  - Hub: consumes the progress bus and routes events per job ID
  - Client: one WebSocket connection with read/write goroutines
  - Message: typed envelope for every frame on the wire

Architecture:

	┌──────────────┐      ┌──────────┐
	│ progress.Bus │─────▶│   Hub    │ ← routes by job ID
	└──────────────┘      └────┬─────┘
	                           │
	              ┌────────────┼────────────┐
	              │            │            │
	         Client(job-a) Client(job-a) Client(job-b)

Each client has two goroutines:
  - readPump: reads subscribe and ping frames from the connection
  - writePump: writes queued frames, sends protocol-level pings

Message Types:

  - progress: one batch finished (index, totals, throughput, ETA)
  - job_status: terminal job transition (completed, failed)
  - subscribe: client request to follow a job ({"job_id": "..."})
  - subscribed: acknowledgment of a subscribe request
  - ping / pong: application-level liveness frames

Connection Lifecycle:

 1. Client connects via HTTP upgrade (internal/api), optionally carrying
    a job_id query parameter as its initial subscription
 2. Hub registers the client
 3. Client may re-point its subscription with a subscribe frame
 4. Hub forwards matching progress and job_status frames
 5. Client disconnects; hub unregisters and cleans up

Thread Safety:

The hub guards its client set with a mutex and serializes bus consumption
in RunWithContext. Each client serializes writes through its send channel;
the subscription field has its own lock because the read pump changes it
while the hub routes against it.

A client whose send buffer fills is disconnected rather than waited on,
so one stalled reader cannot back up delivery to the rest.

See Also:

  - internal/progress: the bus and event shape this package consumes
  - internal/api: the upgrade endpoint that creates clients
*/
package websocket
