// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/progress"
)

// maxTrackedJobs bounds registry memory. Past the bound the oldest
// terminal job is evicted first; running jobs are only evicted when
// nothing terminal remains.
const maxTrackedJobs = 256

// errJobBusClosed signals the registry's bus consumer stopped because the
// progress bus shut down underneath it.
var errJobBusClosed = errors.New("progress bus closed")

// JobRegistry tracks asynchronous insight jobs in memory. Lifecycle
// transitions come from the HTTP layer; batch progress arrives through
// the progress bus, so the REST job view advances even when no websocket
// client is connected.
type JobRegistry struct {
	bus *progress.Bus

	mu    sync.RWMutex
	jobs  map[string]*models.AnalysisJob
	order []string // creation order, oldest first
}

// NewJobRegistry creates an empty registry reading progress from bus.
func NewJobRegistry(bus *progress.Bus) *JobRegistry {
	return &JobRegistry{
		bus:  bus,
		jobs: make(map[string]*models.AnalysisJob),
	}
}

// Create registers a new pending job covering totalTexts texts and
// returns a copy of it.
func (reg *JobRegistry) Create(totalTexts int) models.AnalysisJob {
	job := &models.AnalysisJob{
		ID:         uuid.New().String(),
		Status:     models.JobPending,
		TotalTexts: totalTexts,
		CreatedAt:  time.Now().UTC(),
	}

	reg.mu.Lock()
	reg.jobs[job.ID] = job
	reg.order = append(reg.order, job.ID)
	reg.evictLocked()
	snapshot := *job
	reg.mu.Unlock()

	return snapshot
}

// Get returns a copy of the tracked job.
func (reg *JobRegistry) Get(id string) (models.AnalysisJob, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	job, ok := reg.jobs[id]
	if !ok {
		return models.AnalysisJob{}, false
	}
	return *job, true
}

// Active returns the number of jobs that have not reached a final state.
func (reg *JobRegistry) Active() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	active := 0
	for _, job := range reg.jobs {
		if !job.Status.Terminal() {
			active++
		}
	}
	return active
}

// markRunning transitions a pending job to running.
func (reg *JobRegistry) markRunning(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	job, ok := reg.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	now := time.Now().UTC()
	job.Status = models.JobRunning
	job.StartedAt = &now
}

// complete stores the final bundle and marks the job completed.
func (reg *JobRegistry) complete(id string, bundle models.InsightBundle) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	job, ok := reg.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	now := time.Now().UTC()
	job.Status = models.JobCompleted
	job.FinishedAt = &now
	job.Result = &bundle
	if job.TotalBatches > 0 {
		job.CompletedBatches = job.TotalBatches
	}
}

// fail marks the job failed with a client-safe message.
func (reg *JobRegistry) fail(id, message string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	job, ok := reg.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	now := time.Now().UTC()
	job.Status = models.JobFailed
	job.FinishedAt = &now
	job.Error = message
}

// cancel marks the job canceled. Used when the job context is canceled
// between batches, typically during server shutdown.
func (reg *JobRegistry) cancel(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	job, ok := reg.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	now := time.Now().UTC()
	job.Status = models.JobCanceled
	job.FinishedAt = &now
}

// recordProgress mirrors one batch completion into the job. Events for
// unknown jobs are dropped: the same bus also carries CLI analysis runs
// that nothing tracks.
func (reg *JobRegistry) recordProgress(ev progress.Event) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	job, ok := reg.jobs[ev.JobID]
	if !ok || job.Status.Terminal() {
		return
	}
	job.TotalBatches = ev.TotalBatches
	// Progress events can arrive out of order; the watermark never moves
	// backwards.
	if ev.BatchIndex > job.CompletedBatches {
		job.CompletedBatches = ev.BatchIndex
	}
}

// RunWithContext consumes the progress bus until ctx is canceled or the
// bus closes. Run it under the supervision tree next to the websocket hub;
// both are independent subscribers of the same topic.
func (reg *JobRegistry) RunWithContext(ctx context.Context) error {
	msgs, err := reg.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe progress bus: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return errJobBusClosed
			}
			ev, err := progress.Decode(msg)
			msg.Ack()
			if err != nil {
				logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable progress message")
				continue
			}
			reg.recordProgress(ev)
		}
	}
}

// evictLocked trims the registry to maxTrackedJobs. Callers hold reg.mu.
func (reg *JobRegistry) evictLocked() {
	for len(reg.order) > maxTrackedJobs {
		victim := -1
		for i, id := range reg.order {
			if job, ok := reg.jobs[id]; ok && job.Status.Terminal() {
				victim = i
				break
			}
		}
		if victim < 0 {
			victim = 0
		}
		evictedID := reg.order[victim]
		delete(reg.jobs, evictedID)
		reg.order = append(reg.order[:victim], reg.order[victim+1:]...)
		logging.Debug().Str("job_id", evictedID).Msg("evicted tracked job")
	}
}
