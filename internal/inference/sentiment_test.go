// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package inference

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/repair"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/sentiment"
)

func TestScoreSentimentBatchEmpty(t *testing.T) {
	c := newTestClient(t, Config{})
	results, err := c.ScoreSentimentBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("ScoreSentimentBatch(nil) error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
}

func TestScoreSentimentBatchOrderPreserved(t *testing.T) {
	c := newTestClient(t, Config{})
	texts := []string{"really good", "absolutely terrible", "the report covers March"}

	results, err := c.ScoreSentimentBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("ScoreSentimentBatch() error = %v", err)
	}
	if len(results) != len(texts) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(texts))
	}

	analyzer := sentiment.NewAnalyzer()
	for i, text := range texts {
		want := analyzer.Score(text)
		if results[i].Score != want.Score || results[i].Label != want.Label {
			t.Errorf("results[%d] = %+v, want %+v for %q", i, results[i], want, text)
		}
	}
	if results[0].Label != models.SentimentPositive || results[1].Label != models.SentimentNegative {
		t.Errorf("labels = [%s %s], want [POSITIVE NEGATIVE]",
			results[0].Label, results[1].Label)
	}
}

func TestScoreSentimentBatchReusesCache(t *testing.T) {
	c := newTestClient(t, Config{})

	warmed := c.ScoreSentiment(context.Background(), "really good")
	results, err := c.ScoreSentimentBatch(context.Background(),
		[]string{"really good", "quite bad", "neither here nor there"})
	if err != nil {
		t.Fatalf("ScoreSentimentBatch() error = %v", err)
	}
	if results[0].Score != warmed.Score || results[0].Label != warmed.Label {
		t.Errorf("cached position = %+v, want %+v", results[0], warmed)
	}

	status := c.Status()
	if status.CacheHits < 1 {
		t.Errorf("CacheHits = %d, want >= 1", status.CacheHits)
	}
	// One local invocation for the warmup, one for the batch of misses.
	if status.LocalCalls != 2 {
		t.Errorf("LocalCalls = %d, want 2", status.LocalCalls)
	}
}

func TestScoreSentimentBatchRemoteRoute(t *testing.T) {
	reply := `[
		{"index": 0, "score": 0.95, "label": "POSITIVE", "confidence": 0.9},
		{"index": 1, "score": 0.05, "label": "NEGATIVE", "confidence": 0.9},
		{"index": 2, "score": 0.5, "label": "NEUTRAL", "confidence": 0.4}
	]`
	remote := &fakeRemote{replies: []remoteReply{{text: reply}}}
	c := newTestClient(t, Config{Remote: remote, RemoteSentiment: true})

	texts := []string{"love it", "hate it", "it exists"}
	results, err := c.ScoreSentimentBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("ScoreSentimentBatch() error = %v", err)
	}
	if remote.calls() != 1 {
		t.Fatalf("remote calls = %d, want 1", remote.calls())
	}

	want := []models.SentimentResult{
		{Score: 0.95, Label: models.SentimentPositive, Confidence: 0.9},
		{Score: 0.05, Label: models.SentimentNegative, Confidence: 0.9},
		{Score: 0.5, Label: models.SentimentNeutral, Confidence: 0.4},
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %+v, want %+v", i, results[i], want[i])
		}
		if results[i].Degraded {
			t.Errorf("results[%d].Degraded = true, want false on the healthy remote route", i)
		}
	}

	// Every item is now cached; a second call must not reach the remote.
	again, err := c.ScoreSentimentBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("second ScoreSentimentBatch() error = %v", err)
	}
	if remote.calls() != 1 {
		t.Errorf("remote calls after cached batch = %d, want 1", remote.calls())
	}
	for i := range want {
		if again[i] != want[i] {
			t.Errorf("cached results[%d] = %+v, want %+v", i, again[i], want[i])
		}
	}
}

func TestScoreSentimentBatchRemotePartialResponse(t *testing.T) {
	// Index 7 is out of range and index 1 is missing entirely; both must
	// fall back to the local score instead of failing the batch.
	reply := `[
		{"index": 0, "score": 0.92, "label": "POSITIVE", "confidence": 0.8},
		{"index": 7, "score": 0.1, "label": "NEGATIVE", "confidence": 0.8}
	]`
	remote := &fakeRemote{replies: []remoteReply{{text: reply}}}
	c := newTestClient(t, Config{Remote: remote, RemoteSentiment: true})

	texts := []string{"wonderful", "awful"}
	results, err := c.ScoreSentimentBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("ScoreSentimentBatch() error = %v", err)
	}
	if results[0].Score != 0.92 {
		t.Errorf("results[0].Score = %v, want remote 0.92", results[0].Score)
	}
	want := sentiment.NewAnalyzer().Score("awful")
	if results[1].Score != want.Score || results[1].Label != want.Label {
		t.Errorf("results[1] = %+v, want local %+v", results[1], want)
	}
}

func TestScoreSentimentBatchRemoteMalformedSurfaces(t *testing.T) {
	remote := &fakeRemote{replies: []remoteReply{{text: "I refuse to answer that."}}}
	c := newTestClient(t, Config{Remote: remote, RemoteSentiment: true})

	results, err := c.ScoreSentimentBatch(context.Background(), []string{"one", "two"})
	if !errors.Is(err, repair.ErrMalformed) {
		t.Fatalf("ScoreSentimentBatch() error = %v, want ErrMalformed", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil on a surfaced failure", results)
	}
	// A formatting failure carries half weight; the circuit stays closed.
	if c.Status().CircuitOpen {
		t.Error("CircuitOpen = true, want false after one formatting failure")
	}
}

func TestScoreSentimentBatchRemoteTransportFallsLocal(t *testing.T) {
	remote := &fakeRemote{replies: []remoteReply{
		{err: fmt.Errorf("%w: connection reset", ErrRemoteUnavailable)},
	}}
	c := newTestClient(t, Config{Remote: remote, RemoteSentiment: true})

	texts := []string{"really good", "really bad"}
	results, err := c.ScoreSentimentBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("ScoreSentimentBatch() error = %v, want local fallback", err)
	}
	if remote.calls() != 1 {
		t.Errorf("remote calls = %d, want 1", remote.calls())
	}

	analyzer := sentiment.NewAnalyzer()
	for i, text := range texts {
		if !results[i].Degraded {
			t.Errorf("results[%d].Degraded = false, want true after remote failure", i)
		}
		if want := analyzer.Score(text); results[i].Score != want.Score {
			t.Errorf("results[%d].Score = %v, want local %v", i, results[i].Score, want.Score)
		}
	}
}

func TestScoreSentimentBatchCircuitOpenServesLocal(t *testing.T) {
	remote := &fakeRemote{}
	c := newTestClient(t, Config{Remote: remote, RemoteSentiment: true})
	c.breaker.RecordFailure(true)
	c.breaker.RecordFailure(true)

	results, err := c.ScoreSentimentBatch(context.Background(), []string{"neat", "meh"})
	if err != nil {
		t.Fatalf("ScoreSentimentBatch() error = %v", err)
	}
	if remote.calls() != 0 {
		t.Errorf("remote calls = %d, want 0 with the circuit open", remote.calls())
	}
	for i := range results {
		if !results[i].Degraded {
			t.Errorf("results[%d].Degraded = false, want true", i)
		}
	}
}

func TestLocalScoreBatchManyItems(t *testing.T) {
	c := newTestClient(t, Config{Workers: 4})
	items := make([]string, 100)
	for i := range items {
		if i%2 == 0 {
			items[i] = fmt.Sprintf("review %d is excellent", i)
		} else {
			items[i] = fmt.Sprintf("review %d is broken", i)
		}
	}

	results := c.localScoreBatch(items)
	if len(results) != len(items) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(items))
	}
	for i := range items {
		wantLabel := models.SentimentPositive
		if i%2 == 1 {
			wantLabel = models.SentimentNegative
		}
		if results[i].Label != wantLabel {
			t.Errorf("results[%d].Label = %q, want %q for %q", i, results[i].Label, wantLabel, items[i])
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		label string
		score float64
		want  string
	}{
		{"POSITIVE", 0.1, models.SentimentPositive},
		{" positive ", 0.1, models.SentimentPositive},
		{"negative", 0.9, models.SentimentNegative},
		{"Neutral", 0.9, models.SentimentNeutral},
		{"mostly happy", 0.9, models.SentimentPositive},
		{"", 0.2, models.SentimentNegative},
		{"", 2.5, models.SentimentPositive},
	}
	for _, tt := range tests {
		if got := normalizeLabel(tt.label, tt.score); got != tt.want {
			t.Errorf("normalizeLabel(%q, %v) = %q, want %q", tt.label, tt.score, got, tt.want)
		}
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.5, 0}, {0, 0}, {0.37, 0.37}, {1, 1}, {1.8, 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
