// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package progress carries batch progress events from the inference batch
// runner to interested consumers (websocket hub, CLI) over an in-process
// Watermill bus.
//
// Delivery is fire-and-forget: the batch runner must never stall on a slow
// or absent consumer, so every hand-off point in this package drops rather
// than blocks and counts what it dropped.
package progress

import "time"

// Event is one per-batch progress notification emitted after a batch
// completes. Throughput and ETA are computed from cumulative figures, so
// they smooth out batch-to-batch variance.
type Event struct {
	JobID          string    `json:"job_id"`
	BatchIndex     int       `json:"batch_index"` // 1-based
	TotalBatches   int       `json:"total_batches"`
	ItemsProcessed int       `json:"items_processed"`
	TotalItems     int       `json:"total_items"`
	BatchDuration  float64   `json:"batch_duration_seconds"`
	Throughput     float64   `json:"throughput"` // items per second
	ETASeconds     float64   `json:"eta_seconds"`
	Timestamp      time.Time `json:"timestamp"`
}

// Sink accepts progress events from a batch runner.
//
// Notify is called synchronously between batches and must return promptly.
// Implementations drop events rather than block; a lost progress event is
// cosmetic, a stalled batch run is not.
type Sink interface {
	Notify(Event)
}

// Discard is a Sink that ignores every event. Useful as a default when no
// consumer cares about progress.
type Discard struct{}

// Notify implements Sink.
func (Discard) Notify(Event) {}
