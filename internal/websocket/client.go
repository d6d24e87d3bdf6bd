// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package websocket

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames. Clients only ever send subscribe
	// and ping frames, both tiny.
	maxMessageSize = 4096

	// sendBuffer sizes the per-client outbound queue. Progress events arrive
	// at batch pace, so a client this far behind has stopped reading.
	sendBuffer = 64
)

// clientIDCounter generates unique, monotonically increasing IDs for clients.
// DETERMINISM: IDs give the hub a stable delivery order across clients.
var clientIDCounter atomic.Uint64

// Client is the middleman between one WebSocket connection and the hub.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	// jobID is the subscription. The read pump rewrites it on subscribe
	// frames while the hub reads it during delivery, hence the lock.
	mu    sync.RWMutex
	jobID string
}

// NewClient wraps conn for the hub. jobID is the initial subscription and
// may be empty; an unsubscribed client receives nothing until it sends a
// subscribe frame.
func NewClient(hub *Hub, conn *websocket.Conn, jobID string) *Client {
	return &Client{
		id:    clientIDCounter.Add(1),
		hub:   hub,
		conn:  conn,
		send:  make(chan Message, sendBuffer),
		jobID: strings.TrimSpace(jobID),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// JobID returns the job this client is subscribed to, empty for none.
func (c *Client) JobID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jobID
}

// SetJob re-points the client's subscription. The hub lock is taken after
// the client lock is released, matching the hub's lock order.
func (c *Client) SetJob(jobID string) {
	c.mu.Lock()
	c.jobID = jobID
	c.mu.Unlock()

	c.hub.refreshGauges()
}

// readPump pumps inbound frames from the connection and unregisters the
// client when the connection dies.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		c.handleInbound(msg)
	}
}

// handleInbound dispatches one frame from the client. Unknown frame types
// are ignored.
func (c *Client) handleInbound(msg Message) {
	switch msg.Type {
	case MessageTypePing:
		c.reply(Message{Type: MessageTypePong})

	case MessageTypeSubscribe:
		jobID := subscribeJobID(msg.Data)
		if jobID == "" {
			logging.Debug().Uint64("client_id", c.id).Msg("subscribe frame without job_id ignored")
			return
		}
		c.SetJob(jobID)
		c.reply(Message{Type: MessageTypeSubscribed, Data: SubscriptionData{JobID: jobID}})
	}
}

// reply queues a frame without ever blocking the read loop.
func (c *Client) reply(msg Message) {
	select {
	case c.send <- msg:
	default:
	}
}

// subscribeJobID extracts the job_id field from a subscribe payload.
func subscribeJobID(data interface{}) string {
	fields, ok := data.(map[string]interface{})
	if !ok {
		return ""
	}
	jobID, _ := fields["job_id"].(string)
	return strings.TrimSpace(jobID)
}

// writePump pumps frames from the hub to the connection and keeps the
// connection alive with protocol pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				logging.Error().Err(err).Msg("failed to write JSON message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
