// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package store

import (
	"context"
	"testing"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
)

func testBundle(sampleSize int, summary string) models.InsightBundle {
	bundle := models.InsightBundle{
		Summary:    summary,
		KeyPoints:  []string{"stability", "pricing"},
		Pros:       []string{"fast sync"},
		Cons:       []string{"crashes on login"},
		SampleSize: sampleSize,
		SentimentDistribution: map[string]int{
			models.SentimentPositive: sampleSize - 1,
			models.SentimentNegative: 1,
		},
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	bundle.EnsureDefaults()
	return bundle
}

func TestSaveAndGetSnapshot(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	want := testBundle(10, "Mostly positive feedback.")
	if err := s.SaveSnapshot(ctx, "job-1", want); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := s.GetSnapshot(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetSnapshot() = nil, want stored bundle")
	}
	if got.Summary != want.Summary {
		t.Errorf("Summary = %q, want %q", got.Summary, want.Summary)
	}
	if got.SampleSize != want.SampleSize {
		t.Errorf("SampleSize = %d, want %d", got.SampleSize, want.SampleSize)
	}
	if got.SentimentDistribution[models.SentimentPositive] != 9 {
		t.Errorf("SentimentDistribution = %v, want 9 positive", got.SentimentDistribution)
	}
	if len(got.KeyPoints) != 2 || got.KeyPoints[0] != "stability" {
		t.Errorf("KeyPoints = %v, want %v", got.KeyPoints, want.KeyPoints)
	}

	missing, err := s.GetSnapshot(ctx, "no-such-job")
	if err != nil {
		t.Fatalf("GetSnapshot(missing) error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetSnapshot(missing) = %+v, want nil", missing)
	}
}

func TestSaveSnapshotReplaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveSnapshot(ctx, "job-1", testBundle(5, "First run.")); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := s.SaveSnapshot(ctx, "job-1", testBundle(8, "Second run.")); err != nil {
		t.Fatalf("second SaveSnapshot() error = %v", err)
	}

	got, err := s.GetSnapshot(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got.Summary != "Second run." || got.SampleSize != 8 {
		t.Errorf("snapshot = (%q, %d), want the replacement", got.Summary, got.SampleSize)
	}

	summaries, err := s.ListSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Errorf("ListSnapshots() returned %d rows, want 1 after replace", len(summaries))
	}
}

func TestSaveSnapshotRequiresJobID(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SaveSnapshot(context.Background(), "", testBundle(1, "x")); err == nil {
		t.Error("SaveSnapshot(\"\") error = nil, want non-nil")
	}
}

func TestLatestSnapshot(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveSnapshot(ctx, "job-old", testBundle(3, "Older run.")); err != nil {
		t.Fatalf("SaveSnapshot(old) error = %v", err)
	}
	// Distinct created_at values keep the newest-first ordering unambiguous.
	time.Sleep(5 * time.Millisecond)
	if err := s.SaveSnapshot(ctx, "job-new", testBundle(7, "Newer run.")); err != nil {
		t.Fatalf("SaveSnapshot(new) error = %v", err)
	}

	got, err := s.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot() error = %v", err)
	}
	if got == nil || got.Summary != "Newer run." {
		t.Errorf("LatestSnapshot() = %+v, want the newer bundle", got)
	}
}

func TestListSnapshotsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	jobs := []string{"job-a", "job-b", "job-c"}
	for i, id := range jobs {
		bundle := testBundle(i+1, "run "+id)
		bundle.Degraded = i == 2
		if err := s.SaveSnapshot(ctx, id, bundle); err != nil {
			t.Fatalf("SaveSnapshot(%s) error = %v", id, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	summaries, err := s.ListSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("ListSnapshots(limit=2) returned %d rows, want 2", len(summaries))
	}
	if summaries[0].JobID != "job-c" || summaries[1].JobID != "job-b" {
		t.Errorf("ListSnapshots() order = [%s, %s], want newest first", summaries[0].JobID, summaries[1].JobID)
	}
	if !summaries[0].Degraded {
		t.Error("newest summary Degraded = false, want true")
	}
	if summaries[0].SampleSize != 3 {
		t.Errorf("newest summary SampleSize = %d, want 3", summaries[0].SampleSize)
	}
}

func TestPruneSnapshots(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveSnapshot(ctx, "job-1", testBundle(2, "one")); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := s.SaveSnapshot(ctx, "job-2", testBundle(2, "two")); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := s.SaveSnapshot(ctx, "job-3", testBundle(2, "three")); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	// Cutoff in the past removes nothing.
	pruned, err := s.PruneSnapshots(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PruneSnapshots() error = %v", err)
	}
	if pruned != 0 {
		t.Errorf("PruneSnapshots(past cutoff) = %d, want 0", pruned)
	}

	// Cutoff in the future removes everything except the newest snapshot.
	pruned, err = s.PruneSnapshots(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("PruneSnapshots() error = %v", err)
	}
	if pruned != 2 {
		t.Errorf("PruneSnapshots() = %d, want 2", pruned)
	}

	latest, err := s.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot() after prune error = %v", err)
	}
	if latest == nil {
		t.Fatal("LatestSnapshot() after prune = nil, want the newest snapshot kept")
	}

	summaries, err := s.ListSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("ListSnapshots() after prune error = %v", err)
	}
	if len(summaries) != 1 {
		t.Errorf("ListSnapshots() after prune returned %d rows, want 1", len(summaries))
	}
}
