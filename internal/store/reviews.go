// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500

	// maxAnalysisTexts bounds how many stored texts one insight job can pull.
	maxAnalysisTexts = 10000
)

// ReviewFilter narrows listing and text queries. A zero filter returns the
// most recent reviews with the default page size.
type ReviewFilter struct {
	Source string
	Limit  int
	Offset int
}

// limit returns the effective page size, clamped to [1, maxListLimit].
func (f ReviewFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultListLimit
	case f.Limit > maxListLimit:
		return maxListLimit
	default:
		return f.Limit
	}
}

// InsertReviews atomically inserts a batch of reviews. Reviews without an ID
// get a generated UUID; duplicates (same ID) are skipped, not overwritten.
//
// Returns the number of rows inserted and the number skipped as duplicates.
// On error the whole batch is rolled back.
func (s *Store) InsertReviews(ctx context.Context, reviews []models.Review) (inserted int, duplicates int, err error) {
	if len(reviews) == 0 {
		return 0, 0, nil
	}

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reviews (id, source, text, rating, username, created_at, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer closeQuietly(stmt)

	now := time.Now().UTC()
	for i := range reviews {
		r := &reviews[i]
		r.Normalize(now)
		if r.ID == "" {
			r.ID = uuid.NewString()
		}

		result, execErr := stmt.ExecContext(ctx,
			r.ID, r.Source, r.Text, r.Rating, r.Username, r.CreatedAt, r.IngestedAt)
		if execErr != nil {
			err = fmt.Errorf("failed to insert review %d: %w", i, execErr)
			return 0, 0, err
		}

		affected, raErr := result.RowsAffected()
		if raErr == nil && affected == 0 {
			duplicates++
			continue
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Debug().
		Int("inserted", inserted).
		Int("duplicates", duplicates).
		Msg("Review batch stored")

	return inserted, duplicates, nil
}

// ListReviews returns reviews matching the filter, newest first.
func (s *Store) ListReviews(ctx context.Context, filter ReviewFilter) ([]models.Review, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	query := `
	SELECT id, source, text, rating, username, created_at, ingested_at
	FROM reviews`

	var args []interface{}
	if filter.Source != "" {
		query += " WHERE source = ?"
		args = append(args, strings.ToLower(filter.Source))
	}

	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, filter.limit())
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	// Empty slice instead of nil for consistent JSON serialization.
	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.Source, &r.Text, &r.Rating, &r.Username, &r.CreatedAt, &r.IngestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// CountReviews returns the total number of stored reviews.
func (s *Store) CountReviews(ctx context.Context) (int64, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	var count int64
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

// CountsBySource returns per-source review counts.
func (s *Store) CountsBySource(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, "SELECT source, COUNT(*) FROM reviews GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("failed to get source counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source counts: %w", err)
	}

	return counts, nil
}

// Texts returns the review texts matching the filter, newest first. Analysis
// jobs use this to run insight extraction over stored feedback, so the limit
// semantics differ from listing: zero means "everything", capped at
// maxAnalysisTexts.
func (s *Store) Texts(ctx context.Context, filter ReviewFilter) ([]string, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	limit := filter.Limit
	if limit <= 0 || limit > maxAnalysisTexts {
		limit = maxAnalysisTexts
	}

	query := "SELECT text FROM reviews"
	var args []interface{}
	if filter.Source != "" {
		query += " WHERE source = ?"
		args = append(args, strings.ToLower(filter.Source))
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan review text: %w", err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review texts: %w", err)
	}

	return texts, nil
}
