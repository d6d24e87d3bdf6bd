// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/progress"
)

// gcHintEvery is the batch interval between runtime memory-reclaim hints.
// Long multi-batch runs hold large intermediate slices; without the hint,
// working-set size only ever grows until the run finishes.
const gcHintEvery = 5

// Fn processes one batch of items, returning zero or more results to
// aggregate. A sentiment batch returns one result per item, an insight
// batch returns a single bundle.
type Fn[R any] func(ctx context.Context, items []string) ([]R, error)

// Run executes fn once per batch of plan, strictly in order, and returns
// the concatenated results.
//
// One progress event goes to sink after each batch, carrying per-batch
// duration plus cumulative throughput and the ETA derived from it. Sinks
// follow the progress.Sink contract and never block the runner.
//
// Cancellation is honored between batches, never mid-call: a cancelled ctx
// stops the run before the next batch and returns the results aggregated
// so far together with a non-nil error, so partial output is always
// explicit. An fn error stops the run the same way.
func Run[R any](ctx context.Context, plan Plan, sink progress.Sink, fn Fn[R]) ([]R, error) {
	if sink == nil {
		sink = progress.Discard{}
	}
	if plan.TotalBatches == 0 {
		return nil, nil
	}

	metrics.BatchJobsActive.Inc()
	defer metrics.BatchJobsActive.Dec()

	logging.Info().
		Str("job_id", plan.JobID).
		Int("total_items", len(plan.Items)).
		Int("batch_size", plan.BatchSize).
		Int("total_batches", plan.TotalBatches).
		Msg("Starting batch run")

	results := make([]R, 0, len(plan.Items))
	runStart := time.Now()

	for i := 0; i < plan.TotalBatches; i++ {
		if err := ctx.Err(); err != nil {
			logging.Warn().
				Str("job_id", plan.JobID).
				Int("completed_batches", i).
				Int("total_batches", plan.TotalBatches).
				Msg("Batch run cancelled")
			return results, fmt.Errorf("batch run cancelled after %d/%d batches: %w", i, plan.TotalBatches, err)
		}

		items := plan.Batch(i)
		batchStart := time.Now()

		out, err := fn(ctx, items)
		if err != nil {
			return results, fmt.Errorf("batch %d/%d: %w", i+1, plan.TotalBatches, err)
		}
		results = append(results, out...)

		batchElapsed := time.Since(batchStart)
		metrics.BatchDuration.Observe(batchElapsed.Seconds())

		processed := (i + 1) * plan.BatchSize
		if processed > len(plan.Items) {
			processed = len(plan.Items)
		}

		throughput := 0.0
		if elapsed := time.Since(runStart).Seconds(); elapsed > 0 {
			throughput = float64(processed) / elapsed
		}
		eta := 0.0
		if throughput > 0 {
			eta = float64(len(plan.Items)-processed) / throughput
		}

		sink.Notify(progress.Event{
			JobID:          plan.JobID,
			BatchIndex:     i + 1,
			TotalBatches:   plan.TotalBatches,
			ItemsProcessed: processed,
			TotalItems:     len(plan.Items),
			BatchDuration:  batchElapsed.Seconds(),
			Throughput:     throughput,
			ETASeconds:     eta,
			Timestamp:      time.Now().UTC(),
		})

		logging.Debug().
			Str("job_id", plan.JobID).
			Int("batch_index", i+1).
			Dur("batch_duration", batchElapsed).
			Float64("throughput", throughput).
			Msg("Batch completed")

		if (i+1)%gcHintEvery == 0 && i+1 < plan.TotalBatches {
			runtime.GC()
		}
	}

	logging.Info().
		Str("job_id", plan.JobID).
		Int("total_batches", plan.TotalBatches).
		Dur("duration", time.Since(runStart)).
		Msg("Batch run completed")

	return results, nil
}
