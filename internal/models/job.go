// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package models

import "time"

// JobStatus is the lifecycle state of an asynchronous analysis job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCanceled  JobStatus = "canceled"
)

// AnalysisJob tracks one asynchronous insight extraction run.
// Progress fields are updated per batch; Result is set on completion.
type AnalysisJob struct {
	ID               string         `json:"id"`
	Status           JobStatus      `json:"status"`
	TotalTexts       int            `json:"total_texts"`
	TotalBatches     int            `json:"total_batches"`
	CompletedBatches int            `json:"completed_batches"`
	CreatedAt        time.Time      `json:"created_at"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	FinishedAt       *time.Time     `json:"finished_at,omitempty"`
	Result           *InsightBundle `json:"result,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// Terminal reports whether the job has reached a final state.
func (j JobStatus) Terminal() bool {
	switch j {
	case JobCompleted, JobFailed, JobCanceled:
		return true
	default:
		return false
	}
}
