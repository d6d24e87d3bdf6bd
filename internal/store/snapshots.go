// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
)

// SnapshotSummary is one row of the snapshot listing, without the bundle body.
type SnapshotSummary struct {
	JobID      string    `json:"job_id"`
	SampleSize int       `json:"sample_size"`
	Degraded   bool      `json:"degraded"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaveSnapshot persists the result of a completed insight job. Saving the
// same job ID again replaces the stored bundle.
func (s *Store) SaveSnapshot(ctx context.Context, jobID string, bundle models.InsightBundle) error {
	if jobID == "" {
		return fmt.Errorf("job ID cannot be empty")
	}

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	body, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to marshal insight bundle: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO analysis_snapshots (job_id, sample_size, degraded, bundle, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		jobID, bundle.SampleSize, bundle.Degraded, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save analysis snapshot: %w", err)
	}

	return nil
}

// GetSnapshot returns the stored bundle for a job, or (nil, nil) when the
// job has no persisted snapshot.
func (s *Store) GetSnapshot(ctx context.Context, jobID string) (*models.InsightBundle, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	var body string
	err := s.conn.QueryRowContext(ctx,
		"SELECT bundle FROM analysis_snapshots WHERE job_id = ?", jobID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis snapshot: %w", err)
	}

	return unmarshalBundle(body)
}

// LatestSnapshot returns the most recently stored bundle, or (nil, nil) when
// no snapshot exists yet.
func (s *Store) LatestSnapshot(ctx context.Context) (*models.InsightBundle, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	var body string
	err := s.conn.QueryRowContext(ctx,
		"SELECT bundle FROM analysis_snapshots ORDER BY created_at DESC, job_id LIMIT 1").Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return unmarshalBundle(body)
}

// ListSnapshots returns snapshot summaries, newest first.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]SnapshotSummary, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT job_id, sample_size, degraded, created_at
		FROM analysis_snapshots
		ORDER BY created_at DESC, job_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	summaries := []SnapshotSummary{}
	for rows.Next() {
		var sum SnapshotSummary
		if err := rows.Scan(&sum.JobID, &sum.SampleSize, &sum.Degraded, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return summaries, nil
}

// PruneSnapshots removes snapshots older than the given time and returns how
// many were deleted. The newest snapshot is always kept, even when it is
// older than the cutoff, so LatestSnapshot stays populated after long idle
// periods.
func (s *Store) PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	result, err := s.conn.ExecContext(ctx, `
		DELETE FROM analysis_snapshots
		WHERE created_at < ?
		  AND job_id NOT IN (
			SELECT job_id FROM analysis_snapshots
			ORDER BY created_at DESC, job_id
			LIMIT 1
		  )`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get pruned count: %w", err)
	}
	return count, nil
}

// unmarshalBundle decodes a stored bundle body.
func unmarshalBundle(body string) (*models.InsightBundle, error) {
	var bundle models.InsightBundle
	if err := json.Unmarshal([]byte(body), &bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal insight bundle: %w", err)
	}
	return &bundle, nil
}
