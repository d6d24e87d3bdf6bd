// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package services

import (
	"context"
)

// JobTracker interface matches the job registry's RunWithContext method.
//
// This interface allows the JobTrackerService to work with the registry
// without importing the api package, avoiding circular dependencies.
//
// Satisfied by *api.JobRegistry from internal/api/jobs.go.
type JobTracker interface {
	// RunWithContext consumes job progress events and updates job records.
	// It returns when the context is canceled.
	RunWithContext(ctx context.Context) error
}

// JobTrackerService wraps the analysis job registry as a supervised service.
//
// The registry's background loop consumes progress events published by
// running insight jobs and folds them into the job records served by the
// API. The supervisor will restart the service if it crashes.
//
// Example usage:
//
//	registry := api.NewJobRegistry(bus)
//	svc := services.NewJobTrackerService(registry)
//	tree.AddMessagingService(svc)
type JobTrackerService struct {
	tracker JobTracker
	name    string
}

// NewJobTrackerService creates a new job tracker service wrapper.
func NewJobTrackerService(tracker JobTracker) *JobTrackerService {
	return &JobTrackerService{
		tracker: tracker,
		name:    "job-tracker",
	}
}

// Serve implements suture.Service.
//
// This method delegates to tracker.RunWithContext which:
//  1. Subscribes to the job progress bus
//  2. Applies progress, completion, and failure events to job records
//  3. Returns when the context is canceled or the bus closes
//
// The method returns ctx.Err() on normal shutdown.
func (j *JobTrackerService) Serve(ctx context.Context) error {
	return j.tracker.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (j *JobTrackerService) String() string {
	return j.name
}
