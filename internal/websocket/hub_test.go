// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/progress"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// setupHub starts a hub on a fresh bus; both stop with the test.
func setupHub(t *testing.T) (*Hub, *progress.Bus) {
	t.Helper()

	bus := progress.NewBus()
	hub := NewHub(bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("hub did not stop after context cancel")
		}
		if err := bus.Close(); err != nil {
			t.Errorf("failed to close bus: %v", err)
		}
	})

	time.Sleep(10 * time.Millisecond)
	return hub, bus
}

// createTestClient creates an offline client for hub-level tests
func createTestClient(hub *Hub, jobID string) *Client {
	return &Client{
		id:    clientIDCounter.Add(1),
		hub:   hub,
		conn:  nil,
		send:  make(chan Message, sendBuffer),
		jobID: jobID,
	}
}

// registerClient registers a client and waits for registration to complete
func registerClient(hub *Hub, client *Client) {
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
}

// testEvent creates a progress event for the given job
func testEvent(jobID string, index, total int) progress.Event {
	return progress.Event{
		JobID:          jobID,
		BatchIndex:     index,
		TotalBatches:   total,
		ItemsProcessed: index * 120,
		TotalItems:     total * 120,
		BatchDuration:  0.5,
		Throughput:     240,
		ETASeconds:     float64(total-index) * 0.5,
		Timestamp:      time.Now().UTC(),
	}
}

// receiveMessage reads one message from a client's send queue with a timeout
func receiveMessage(t *testing.T, client *Client, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-client.send:
		return msg
	case <-time.After(timeout):
		t.Fatalf("no message received within %v", timeout)
		return Message{}
	}
}

func TestNewHub(t *testing.T) {
	bus := progress.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			t.Errorf("failed to close bus: %v", err)
		}
	}()

	hub := NewHub(bus)
	if hub == nil {
		t.Fatal("NewHub returned nil")
	}

	checks := []struct {
		name   string
		check  bool
		errMsg string
	}{
		{"clients map", hub.clients != nil, "clients map not initialized"},
		{"Register channel", hub.Register != nil, "Register channel not initialized"},
		{"Unregister channel", hub.Unregister != nil, "Unregister channel not initialized"},
		{"bus", hub.bus == bus, "bus not wired"},
		{"empty clients", len(hub.clients) == 0, "clients map should be empty"},
	}

	for _, c := range checks {
		if !c.check {
			t.Error(c.errMsg)
		}
	}
}

func TestHub_ClientLifecycle(t *testing.T) {
	hub, _ := setupHub(t)
	client := createTestClient(hub, "job-a")
	registerClient(hub, client)

	if hub.GetClientCount() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.GetClientCount())
	}

	hub.mu.RLock()
	if !hub.clients[client] {
		t.Error("Client should be registered")
	}
	hub.mu.RUnlock()

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients after unregister, got %d", hub.GetClientCount())
	}

	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after unregister")
	}
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	hub, _ := setupHub(t)
	client := createTestClient(hub, "job-a")

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.GetClientCount())
	}
}

func TestHub_DeliversOnlyToMatchingJob(t *testing.T) {
	hub, bus := setupHub(t)

	clientA := createTestClient(hub, "job-a")
	clientB := createTestClient(hub, "job-b")
	registerClient(hub, clientA)
	registerClient(hub, clientB)

	if err := bus.Publish(testEvent("job-a", 1, 4)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	msg := receiveMessage(t, clientA, time.Second)
	if msg.Type != MessageTypeProgress {
		t.Errorf("Expected message type %q, got %q", MessageTypeProgress, msg.Type)
	}

	ev, ok := msg.Data.(progress.Event)
	if !ok {
		t.Fatalf("Expected progress.Event payload, got %T", msg.Data)
	}
	if ev.JobID != "job-a" {
		t.Errorf("Expected job-a event, got %q", ev.JobID)
	}
	if ev.BatchIndex != 1 || ev.TotalBatches != 4 {
		t.Errorf("Expected batch 1/4, got %d/%d", ev.BatchIndex, ev.TotalBatches)
	}

	// Delivery for an event happens in a single pass, so once A has its
	// message B's queue is final.
	select {
	case stray := <-clientB.send:
		t.Errorf("client subscribed to job-b received %q for job-a", stray.Type)
	default:
	}
}

func TestHub_UnsubscribedClientReceivesNothing(t *testing.T) {
	hub, bus := setupHub(t)

	watcher := createTestClient(hub, "job-a")
	idle := createTestClient(hub, "")
	registerClient(hub, watcher)
	registerClient(hub, idle)

	if err := bus.Publish(testEvent("job-a", 2, 2)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	receiveMessage(t, watcher, time.Second)

	select {
	case stray := <-idle.send:
		t.Errorf("unsubscribed client received %q", stray.Type)
	default:
	}
}

func TestHub_DeliversEventsInOrder(t *testing.T) {
	hub, bus := setupHub(t)

	client := createTestClient(hub, "job-a")
	registerClient(hub, client)

	for i := 1; i <= 3; i++ {
		if err := bus.Publish(testEvent("job-a", i, 3)); err != nil {
			t.Fatalf("publish %d failed: %v", i, err)
		}
	}

	for want := 1; want <= 3; want++ {
		msg := receiveMessage(t, client, time.Second)
		ev, ok := msg.Data.(progress.Event)
		if !ok {
			t.Fatalf("Expected progress.Event payload, got %T", msg.Data)
		}
		if ev.BatchIndex != want {
			t.Errorf("Expected batch index %d, got %d", want, ev.BatchIndex)
		}
	}
}

func TestHub_NotifyJobStatus(t *testing.T) {
	hub, _ := setupHub(t)

	client := createTestClient(hub, "job-a")
	other := createTestClient(hub, "job-b")
	registerClient(hub, client)
	registerClient(hub, other)

	hub.NotifyJobStatus("job-a", "completed", "")

	msg := receiveMessage(t, client, time.Second)
	if msg.Type != MessageTypeJobStatus {
		t.Errorf("Expected message type %q, got %q", MessageTypeJobStatus, msg.Type)
	}

	data, ok := msg.Data.(JobStatusData)
	if !ok {
		t.Fatalf("Expected JobStatusData payload, got %T", msg.Data)
	}
	if data.JobID != "job-a" {
		t.Errorf("Expected job-a, got %q", data.JobID)
	}
	if data.Status != "completed" {
		t.Errorf("Expected status completed, got %q", data.Status)
	}
	if data.Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}

	select {
	case stray := <-other.send:
		t.Errorf("client subscribed to job-b received %q", stray.Type)
	default:
	}
}

func TestHub_ResubscribedClientFollowsNewJob(t *testing.T) {
	hub, _ := setupHub(t)

	client := createTestClient(hub, "job-a")
	registerClient(hub, client)

	client.SetJob("job-b")

	hub.NotifyJobStatus("job-a", "completed", "")
	select {
	case stray := <-client.send:
		t.Errorf("received %q for abandoned job", stray.Type)
	default:
	}

	hub.NotifyJobStatus("job-b", "running", "")
	msg := receiveMessage(t, client, time.Second)
	data, ok := msg.Data.(JobStatusData)
	if !ok {
		t.Fatalf("Expected JobStatusData payload, got %T", msg.Data)
	}
	if data.JobID != "job-b" {
		t.Errorf("Expected job-b, got %q", data.JobID)
	}
}

func TestHub_RemovesStalledClient(t *testing.T) {
	hub, _ := setupHub(t)

	// Unbuffered send channel with no reader: the first delivery stalls.
	stalled := &Client{
		id:    clientIDCounter.Add(1),
		hub:   hub,
		send:  make(chan Message),
		jobID: "job-a",
	}
	registerClient(hub, stalled)

	if hub.GetClientCount() != 1 {
		t.Fatalf("Expected 1 client, got %d", hub.GetClientCount())
	}

	hub.NotifyJobStatus("job-a", "completed", "")

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected stalled client removed, got %d clients", hub.GetClientCount())
	}
	if _, ok := <-stalled.send; ok {
		t.Error("send channel should be closed after removal")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	bus := progress.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			t.Errorf("failed to close bus: %v", err)
		}
	}()

	hub := NewHub(bus)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	time.Sleep(10 * time.Millisecond)

	client := createTestClient(hub, "job-a")
	registerClient(hub, client)

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after cancel")
	}

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients after shutdown, got %d", hub.GetClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after shutdown")
	}
}

func TestHub_StopsWhenBusCloses(t *testing.T) {
	bus := progress.NewBus()
	hub := NewHub(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	time.Sleep(10 * time.Millisecond)

	if err := bus.Close(); err != nil {
		t.Fatalf("failed to close bus: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrBusClosed) {
			t.Errorf("Expected ErrBusClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after bus close")
	}
}

func TestHub_SubscriberCount(t *testing.T) {
	hub, _ := setupHub(t)

	registerClient(hub, createTestClient(hub, "job-a"))
	registerClient(hub, createTestClient(hub, "job-a"))
	registerClient(hub, createTestClient(hub, "job-b"))

	if got := hub.SubscriberCount("job-a"); got != 2 {
		t.Errorf("SubscriberCount(job-a) = %d, want 2", got)
	}
	if got := hub.SubscriberCount("job-b"); got != 1 {
		t.Errorf("SubscriberCount(job-b) = %d, want 1", got)
	}
	if got := hub.SubscriberCount("job-z"); got != 0 {
		t.Errorf("SubscriberCount(job-z) = %d, want 0", got)
	}
}

func TestShutdownReason(t *testing.T) {
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if got := shutdownReason(ctx); got != ShutdownReasonContextCanceled {
			t.Errorf("Expected %q, got %q", ShutdownReasonContextCanceled, got)
		}
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		<-ctx.Done()
		if got := shutdownReason(ctx); got != ShutdownReasonContextDeadline {
			t.Errorf("Expected %q, got %q", ShutdownReasonContextDeadline, got)
		}
	})
}
