// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
)

// seedReviews builds count reviews with strictly increasing creation times so
// newest-first ordering is deterministic.
func seedReviews(count int, source string) []models.Review {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reviews := make([]models.Review, count)
	for i := range reviews {
		reviews[i] = models.Review{
			Source:    source,
			Text:      fmt.Sprintf("review number %d", i),
			Rating:    float64(i%5) + 1,
			Username:  fmt.Sprintf("user%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return reviews
}

func TestInsertReviewsGeneratesIDs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	reviews := seedReviews(3, models.SourceCSV)
	inserted, duplicates, err := s.InsertReviews(ctx, reviews)
	if err != nil {
		t.Fatalf("InsertReviews() error = %v", err)
	}
	if inserted != 3 || duplicates != 0 {
		t.Errorf("InsertReviews() = (%d, %d), want (3, 0)", inserted, duplicates)
	}
	for i, r := range reviews {
		if r.ID == "" {
			t.Errorf("review %d has no generated ID", i)
		}
	}

	count, err := s.CountReviews(ctx)
	if err != nil {
		t.Fatalf("CountReviews() error = %v", err)
	}
	if count != 3 {
		t.Errorf("CountReviews() = %d, want 3", count)
	}
}

func TestInsertReviewsEmpty(t *testing.T) {
	s := setupTestStore(t)

	inserted, duplicates, err := s.InsertReviews(context.Background(), nil)
	if err != nil {
		t.Fatalf("InsertReviews(nil) error = %v", err)
	}
	if inserted != 0 || duplicates != 0 {
		t.Errorf("InsertReviews(nil) = (%d, %d), want (0, 0)", inserted, duplicates)
	}
}

func TestInsertReviewsSkipsDuplicates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := []models.Review{{
		ID:        "fixed-id",
		Source:    models.SourcePlayStore,
		Text:      "the original text",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
	if _, _, err := s.InsertReviews(ctx, first); err != nil {
		t.Fatalf("first InsertReviews() error = %v", err)
	}

	second := []models.Review{
		{
			ID:        "fixed-id",
			Source:    models.SourcePlayStore,
			Text:      "a replacement that must be ignored",
			CreatedAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		},
		{
			Source:    models.SourcePlayStore,
			Text:      "a brand new review",
			CreatedAt: time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC),
		},
	}
	inserted, duplicates, err := s.InsertReviews(ctx, second)
	if err != nil {
		t.Fatalf("second InsertReviews() error = %v", err)
	}
	if inserted != 1 || duplicates != 1 {
		t.Errorf("InsertReviews() = (%d, %d), want (1, 1)", inserted, duplicates)
	}

	// The duplicate must not overwrite the original row.
	listed, err := s.ListReviews(ctx, ReviewFilter{})
	if err != nil {
		t.Fatalf("ListReviews() error = %v", err)
	}
	for _, r := range listed {
		if r.ID == "fixed-id" && r.Text != "the original text" {
			t.Errorf("duplicate insert overwrote text: %q", r.Text)
		}
	}
}

func TestInsertReviewsNormalizes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	reviews := []models.Review{{
		Source: "  PlayStore  ",
		Text:   "  padded text  ",
	}}
	if _, _, err := s.InsertReviews(ctx, reviews); err != nil {
		t.Fatalf("InsertReviews() error = %v", err)
	}

	listed, err := s.ListReviews(ctx, ReviewFilter{Source: "playstore"})
	if err != nil {
		t.Fatalf("ListReviews() error = %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("ListReviews(source=playstore) returned %d rows, want 1", len(listed))
	}
	if listed[0].Text != "padded text" {
		t.Errorf("stored text = %q, want trimmed", listed[0].Text)
	}
	if listed[0].CreatedAt.IsZero() || listed[0].IngestedAt.IsZero() {
		t.Error("timestamps were not defaulted on insert")
	}
}

func TestListReviewsNewestFirstWithPaging(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, _, err := s.InsertReviews(ctx, seedReviews(5, models.SourceTwitter)); err != nil {
		t.Fatalf("InsertReviews() error = %v", err)
	}

	page, err := s.ListReviews(ctx, ReviewFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListReviews() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("ListReviews(limit=2) returned %d rows, want 2", len(page))
	}
	if page[0].Text != "review number 4" || page[1].Text != "review number 3" {
		t.Errorf("first page = [%q, %q], want newest first", page[0].Text, page[1].Text)
	}

	next, err := s.ListReviews(ctx, ReviewFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListReviews(offset) error = %v", err)
	}
	if len(next) != 2 || next[0].Text != "review number 2" {
		t.Errorf("second page starts with %q, want %q", next[0].Text, "review number 2")
	}
}

func TestListReviewsSourceFilter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, _, err := s.InsertReviews(ctx, seedReviews(3, models.SourceTwitter)); err != nil {
		t.Fatalf("InsertReviews(twitter) error = %v", err)
	}
	if _, _, err := s.InsertReviews(ctx, seedReviews(2, models.SourceAppStore)); err != nil {
		t.Fatalf("InsertReviews(appstore) error = %v", err)
	}

	listed, err := s.ListReviews(ctx, ReviewFilter{Source: models.SourceAppStore})
	if err != nil {
		t.Fatalf("ListReviews() error = %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("ListReviews(source=appstore) returned %d rows, want 2", len(listed))
	}
	for _, r := range listed {
		if r.Source != models.SourceAppStore {
			t.Errorf("review %s has source %q, want %q", r.ID, r.Source, models.SourceAppStore)
		}
	}
}

func TestCountsBySource(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, _, err := s.InsertReviews(ctx, seedReviews(3, models.SourceTwitter)); err != nil {
		t.Fatalf("InsertReviews(twitter) error = %v", err)
	}
	if _, _, err := s.InsertReviews(ctx, seedReviews(1, models.SourceCSV)); err != nil {
		t.Fatalf("InsertReviews(csv) error = %v", err)
	}

	counts, err := s.CountsBySource(ctx)
	if err != nil {
		t.Fatalf("CountsBySource() error = %v", err)
	}
	if counts[models.SourceTwitter] != 3 {
		t.Errorf("counts[twitter] = %d, want 3", counts[models.SourceTwitter])
	}
	if counts[models.SourceCSV] != 1 {
		t.Errorf("counts[csv] = %d, want 1", counts[models.SourceCSV])
	}
}

func TestTextsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, _, err := s.InsertReviews(ctx, seedReviews(4, models.SourceInternal)); err != nil {
		t.Fatalf("InsertReviews() error = %v", err)
	}

	texts, err := s.Texts(ctx, ReviewFilter{})
	if err != nil {
		t.Fatalf("Texts() error = %v", err)
	}
	if len(texts) != 4 {
		t.Fatalf("Texts() returned %d rows, want 4", len(texts))
	}
	if texts[0] != "review number 3" {
		t.Errorf("Texts()[0] = %q, want the newest review", texts[0])
	}

	limited, err := s.Texts(ctx, ReviewFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Texts(limit) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Texts(limit=2) returned %d rows, want 2", len(limited))
	}
}

func TestReviewFilterLimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, defaultListLimit},
		{"negative uses default", -5, defaultListLimit},
		{"in range passes through", 100, 100},
		{"above cap clamps", 9999, maxListLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ReviewFilter{Limit: tt.limit}
			if got := f.limit(); got != tt.want {
				t.Errorf("limit() = %d, want %d", got, tt.want)
			}
		})
	}
}
