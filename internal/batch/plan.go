// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package batch splits large text workloads into adaptively sized batches
// and drives their strictly ordered execution with per-batch progress
// events.
//
// Batch size follows average item length: short items amortize per-call
// remote overhead across large batches, long items get small batches to
// bound prompt size and latency. Batches never run concurrently with each
// other so that circuit and throttle state changes from one batch are
// visible to the next.
package batch

import (
	"github.com/google/uuid"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
)

// Batch size bounds and the length bands that pick a size within them.
const (
	MinBatchSize = 50
	MaxBatchSize = 500

	shortItemLen = 100 // avg chars; below this, per-call overhead dominates
	longItemLen  = 500

	shortItemBatch  = 500
	mediumItemBatch = 250
	longItemBatch   = 120
)

// Plan describes how one workload splits into equally sized batches.
// The final batch may be short.
type Plan struct {
	JobID        string
	Items        []string
	BatchSize    int
	TotalBatches int
	AvgItemLen   int
}

// NewPlan sizes batches for items from their average length. An empty
// jobID gets a generated UUID so progress events are always routable.
func NewPlan(jobID string, items []string) Plan {
	if jobID == "" {
		jobID = uuid.NewString()
	}

	avg := avgLength(items)
	size := sizeForAvgLength(avg)

	total := 0
	if len(items) > 0 {
		total = (len(items) + size - 1) / size
	}

	metrics.BatchSize.Observe(float64(size))

	return Plan{
		JobID:        jobID,
		Items:        items,
		BatchSize:    size,
		TotalBatches: total,
		AvgItemLen:   avg,
	}
}

// Batch returns the items of batch i. Out-of-range indexes return nil.
func (p Plan) Batch(i int) []string {
	start := i * p.BatchSize
	if i < 0 || start >= len(p.Items) {
		return nil
	}

	end := start + p.BatchSize
	if end > len(p.Items) {
		end = len(p.Items)
	}
	return p.Items[start:end]
}

func avgLength(items []string) int {
	if len(items) == 0 {
		return 0
	}
	total := 0
	for _, item := range items {
		total += len(item)
	}
	return total / len(items)
}

func sizeForAvgLength(avg int) int {
	var size int
	switch {
	case avg < shortItemLen:
		size = shortItemBatch
	case avg <= longItemLen:
		size = mediumItemBatch
	default:
		size = longItemBatch
	}

	if size < MinBatchSize {
		size = MinBatchSize
	}
	if size > MaxBatchSize {
		size = MaxBatchSize
	}
	return size
}
