// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package progress

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

func receiveEvent(t *testing.T, msgs <-chan *message.Message, timeout time.Duration) Event {
	t.Helper()

	select {
	case msg, ok := <-msgs:
		if !ok {
			t.Fatal("Subscription channel closed unexpectedly")
		}
		ev, err := Decode(msg)
		if err != nil {
			t.Fatalf("Failed to decode event: %v", err)
		}
		msg.Ack()
		return ev
	case <-time.After(timeout):
		t.Fatal("Timed out waiting for progress event")
	}
	return Event{}
}

func TestBusPublishSubscribeRoundTrip(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	ts := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	want := Event{
		JobID:          "job-42",
		BatchIndex:     3,
		TotalBatches:   7,
		ItemsProcessed: 750,
		TotalItems:     1750,
		BatchDuration:  1.5,
		Throughput:     166.7,
		ETASeconds:     6.0,
		Timestamp:      ts,
	}
	if err := bus.Publish(want); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got := receiveEvent(t, msgs, 2*time.Second)
	if got.JobID != want.JobID {
		t.Errorf("JobID = %q, want %q", got.JobID, want.JobID)
	}
	if got.BatchIndex != want.BatchIndex || got.TotalBatches != want.TotalBatches {
		t.Errorf("Batch counters = %d/%d, want %d/%d",
			got.BatchIndex, got.TotalBatches, want.BatchIndex, want.TotalBatches)
	}
	if got.ItemsProcessed != want.ItemsProcessed || got.TotalItems != want.TotalItems {
		t.Errorf("Item counters = %d/%d, want %d/%d",
			got.ItemsProcessed, got.TotalItems, want.ItemsProcessed, want.TotalItems)
	}
	if got.Throughput != want.Throughput || got.ETASeconds != want.ETASeconds {
		t.Errorf("Rates = %v/%v, want %v/%v",
			got.Throughput, got.ETASeconds, want.Throughput, want.ETASeconds)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
}

func TestBusMessageCarriesJobIDMetadata(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := bus.Publish(Event{JobID: "job-meta"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-msgs:
		if got := msg.Metadata.Get(MetadataJobID); got != "job-meta" {
			t.Errorf("Metadata job_id = %q, want %q", got, "job-meta")
		}
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for message")
	}
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	// No subscribers: the event is discarded, not an error
	if err := bus.Publish(Event{JobID: "nobody-listening"}); err != nil {
		t.Errorf("Publish without subscribers failed: %v", err)
	}
}

func TestBusSubscribeClosesOnContextCancel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-msgs:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("Subscription channel did not close after context cancel")
		}
	}
}

func TestPublisherDeliversToBus(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	pub := NewPublisher(bus)
	defer pub.Close()

	pub.Notify(Event{JobID: "job-pub", BatchIndex: 1, TotalBatches: 1})

	got := receiveEvent(t, msgs, 2*time.Second)
	if got.JobID != "job-pub" {
		t.Errorf("JobID = %q, want %q", got.JobID, "job-pub")
	}
}

func TestPublisherDrainsOnClose(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	pub := NewPublisher(bus)

	const n = 10
	for i := 1; i <= n; i++ {
		pub.Notify(Event{JobID: "job-drain", BatchIndex: i, TotalBatches: n})
	}

	// Close returns only after the queue is drained onto the bus
	pub.Close()

	seen := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		ev := receiveEvent(t, msgs, 2*time.Second)
		seen[ev.BatchIndex] = true
	}
	for i := 1; i <= n; i++ {
		if !seen[i] {
			t.Errorf("Missing event for batch %d", i)
		}
	}
}

func TestPublisherNotifyNeverBlocks(t *testing.T) {
	// No forwarding goroutine: the queue fills and overflow must drop
	p := &Publisher{
		bus:   NewBus(),
		queue: make(chan Event, 2),
		done:  make(chan struct{}),
	}

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			p.Notify(Event{BatchIndex: i})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	if len(p.queue) != 2 {
		t.Errorf("Expected 2 queued events, got %d", len(p.queue))
	}
}

func TestPublisherCloseIdempotent(t *testing.T) {
	pub := NewPublisher(NewBus())

	pub.Close()
	pub.Close()

	// Notify after close drops silently
	pub.Notify(Event{JobID: "late"})
}

func TestDecodeInvalidPayload(t *testing.T) {
	msg := message.NewMessage("test", []byte("{not json"))
	if _, err := Decode(msg); err == nil {
		t.Error("Expected error decoding invalid payload")
	}
}
