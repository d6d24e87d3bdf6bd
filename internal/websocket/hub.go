// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package websocket

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/progress"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"

	// ShutdownReasonBusClosed indicates the progress bus closed underneath the
	// hub. The supervisor restarts the hub, which resubscribes.
	ShutdownReasonBusClosed ShutdownReason = "bus_closed"
)

// Message types for frames exchanged with clients.
const (
	MessageTypeProgress   = "progress"
	MessageTypeJobStatus  = "job_status"
	MessageTypeSubscribe  = "subscribe"
	MessageTypeSubscribed = "subscribed"
	MessageTypePing       = "ping"
	MessageTypePong       = "pong"
)

// ErrBusClosed is returned by RunWithContext when the progress bus closes
// while the hub is still supposed to be running.
var ErrBusClosed = errors.New("progress bus closed")

// Message is the envelope for every WebSocket frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// JobStatusData is the payload of a job_status frame.
type JobStatusData struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// SubscriptionData acknowledges a subscribe request.
type SubscriptionData struct {
	JobID string `json:"job_id"`
}

// Hub routes progress events from the bus to the clients subscribed to the
// matching job ID.
type Hub struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	bus        *progress.Bus
	mu         sync.RWMutex
}

// NewHub creates a hub consuming the given progress bus. The hub does not
// start consuming until RunWithContext is called.
func NewHub(bus *progress.Bus) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		bus:        bus,
	}
}

// RunWithContext subscribes to the progress bus and serves until the context
// ends. Designed for suture supervision: it returns ctx.Err() on graceful
// shutdown and ErrBusClosed if the bus closes early, and a restart
// resubscribes from scratch.
//
// DETERMINISM: Uses priority-based selection so behavior is predictable when
// multiple channels are ready:
//   - Priority 1: Context cancellation (shutdown)
//   - Priority 2: Client lifecycle events (Register/Unregister)
//   - Priority 3: Bus messages
//
// Handling lifecycle ahead of delivery means a client registering at the
// same instant as an event for its job cannot lose that event to ordering.
func (h *Hub) RunWithContext(ctx context.Context) error {
	msgs, err := h.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe progress bus: %w", err)
	}

	for {
		// Priority 1: shutdown (non-blocking check)
		select {
		case <-ctx.Done():
			h.shutdown(shutdownReason(ctx))
			return ctx.Err()
		default:
		}

		// Priority 2: client lifecycle (non-blocking check)
		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.dropClient(client)
			continue
		default:
		}

		// Priority 3: wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.shutdown(shutdownReason(ctx))
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.dropClient(client)

		case msg, ok := <-msgs:
			if !ok {
				if err := ctx.Err(); err != nil {
					h.shutdown(shutdownReason(ctx))
					return err
				}
				h.shutdown(ShutdownReasonBusClosed)
				return ErrBusClosed
			}
			h.handleBusMessage(msg)
		}
	}
}

// handleBusMessage decodes one bus message and routes it. Messages are acked
// unconditionally: an undecodable event is logged and dropped, never redelivered.
func (h *Hub) handleBusMessage(msg *message.Message) {
	ev, err := progress.Decode(msg)
	msg.Ack()
	if err != nil {
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable progress message")
		return
	}

	h.deliver(ev.JobID, Message{Type: MessageTypeProgress, Data: ev})
}

// NotifyJobStatus pushes a job state transition to that job's subscribers.
// Safe to call from any goroutine.
func (h *Hub) NotifyJobStatus(jobID, status, detail string) {
	h.deliver(jobID, Message{
		Type: MessageTypeJobStatus,
		Data: JobStatusData{
			JobID:     jobID,
			Status:    status,
			Detail:    detail,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// deliver sends msg to every client subscribed to job. Clients with no
// subscription never receive anything. A client whose send buffer is full
// is disconnected on the spot.
//
// DETERMINISM: Clients are visited in ID order so multi-client delivery is
// reproducible.
func (h *Hub) deliver(job string, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	targets := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if sub := client.JobID(); sub != "" && sub == job {
			targets = append(targets, client)
		}
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].id < targets[j].id
	})

	var toRemove []*Client
	for _, client := range targets {
		select {
		case client.send <- msg:
			metrics.WSMessagesSent.Inc()
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		h.removeClientLocked(client)
		logging.Warn().
			Uint64("client_id", client.id).
			Str("job_id", job).
			Msg("disconnecting stalled websocket client")
	}
}

// addClient registers a client with the hub.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.refreshGaugesLocked()
	total := len(h.clients)
	h.mu.Unlock()

	logging.Info().
		Uint64("client_id", client.id).
		Str("job_id", client.JobID()).
		Int("total_clients", total).
		Msg("websocket client connected")
}

// dropClient removes a client if it is still registered.
func (h *Hub) dropClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		h.removeClientLocked(client)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		logging.Info().
			Uint64("client_id", client.id).
			Int("total_clients", total).
			Msg("websocket client disconnected")
	}
}

// removeClientLocked closes and forgets a client. Callers hold h.mu; the
// membership check in every caller is what makes the close single-shot.
func (h *Hub) removeClientLocked(client *Client) {
	close(client.send)
	delete(h.clients, client)
	h.refreshGaugesLocked()
}

// refreshGaugesLocked recomputes the connection and subscription gauges.
// Read-only on the client set; callers hold h.mu in either mode.
func (h *Hub) refreshGaugesLocked() {
	subscribed := 0
	for client := range h.clients {
		if client.JobID() != "" {
			subscribed++
		}
	}
	metrics.WSConnections.Set(float64(len(h.clients)))
	metrics.WSSubscriptions.Set(float64(subscribed))
}

// refreshGauges is the unlocked entry point for clients whose subscription
// changed.
func (h *Hub) refreshGauges() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.refreshGaugesLocked()
}

// shutdown closes every client and logs the stop with structured fields.
// ctx.Err() is not logged as an error because cancellation is the expected
// shutdown path.
func (h *Hub) shutdown(reason ShutdownReason) {
	h.mu.Lock()
	closed := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.refreshGaugesLocked()
	h.mu.Unlock()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

// shutdownReason maps a context error to its ShutdownReason.
func shutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscriberCount returns how many clients follow the given job.
func (h *Hub) SubscriberCount(jobID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for client := range h.clients {
		if client.JobID() == jobID {
			n++
		}
	}
	return n
}
