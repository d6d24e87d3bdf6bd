// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/middleware"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
)

// LoginResponse carries the issued session token. The same token is also
// set as an HTTP-only cookie, so browser clients can ignore the body.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// IngestResult summarizes one JSON batch insert.
type IngestResult struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
}

// ImportResult summarizes one CSV upload: file-level parse counters plus
// the database outcome for the rows that parsed.
type ImportResult struct {
	TotalRows  int `json:"total_rows"`
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// ReviewPage is one page of the review listing.
type ReviewPage struct {
	Total   int64           `json:"total"`
	Count   int             `json:"count"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	Reviews []models.Review `json:"reviews"`
}

// JobAccepted is returned by the async insights endpoint before the job
// has produced anything.
type JobAccepted struct {
	JobID      string           `json:"job_id"`
	Status     models.JobStatus `json:"status"`
	TotalTexts int              `json:"total_texts"`
}

// HealthStatus is the full health report. Status is "healthy" when the
// database answers; remote inference being down only degrades the
// inference mode, never overall health, because local scoring keeps the
// service usable.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	InferenceMode     string  `json:"inference_mode"`
	ActiveJobs        int     `json:"active_jobs"`
	WebsocketClients  int     `json:"websocket_clients"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// PerformanceReport combines per-endpoint latency aggregates with the
// most recent raw samples.
type PerformanceReport struct {
	Endpoints []middleware.EndpointStats `json:"endpoints"`
	Recent    []middleware.RequestSample `json:"recent"`
}
