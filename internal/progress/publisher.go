// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package progress

import (
	"sync"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
)

// queueSize bounds the hand-off queue between Notify and the forwarding
// goroutine. A full queue drops events rather than stalling the scheduler.
const queueSize = 64

// Publisher is the Sink implementation batch runners use. Notify hands the
// event to a forwarding goroutine and returns immediately; the goroutine
// publishes to the bus and absorbs publish failures.
type Publisher struct {
	bus   *Bus
	queue chan Event
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewPublisher creates a publisher forwarding onto bus and starts its
// forwarding goroutine. Callers own the publisher lifecycle and must Close
// it before closing the bus.
func NewPublisher(bus *Bus) *Publisher {
	p := &Publisher{
		bus:   bus,
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}
	go p.forward()
	return p
}

// Notify queues ev for delivery. It never blocks: with the queue full or
// the publisher closed, the event is dropped and counted.
func (p *Publisher) Notify(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		metrics.ProgressEventsDropped.Inc()
		return
	}

	select {
	case p.queue <- ev:
	default:
		metrics.ProgressEventsDropped.Inc()
		logging.Debug().
			Str("job_id", ev.JobID).
			Int("batch_index", ev.BatchIndex).
			Msg("Progress event dropped: queue full")
	}
}

// Close drains queued events onto the bus and stops the forwarding
// goroutine. Notify calls after Close drop their events. Safe to call
// more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
}

func (p *Publisher) forward() {
	defer close(p.done)

	for ev := range p.queue {
		if err := p.bus.Publish(ev); err != nil {
			metrics.ProgressEventsDropped.Inc()
			logging.Err(err).
				Str("job_id", ev.JobID).
				Int("batch_index", ev.BatchIndex).
				Msg("Failed to publish progress event")
		}
	}
}
