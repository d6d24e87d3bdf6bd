// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/progress"
)

type recordingSink struct {
	mu     sync.Mutex
	events []progress.Event
}

func (s *recordingSink) Notify(e progress.Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// longWorkload builds count texts whose average length lands in the
// smallest sizing band, so 121 texts split into two ordered batches.
func longWorkload(count int) []string {
	texts := make([]string, count)
	filler := strings.Repeat("x", 501)
	for i := range texts {
		texts[i] = fmt.Sprintf("%03d %s", i, filler)
	}
	return texts
}

func distSum(dist map[string]int) int {
	total := 0
	for _, n := range dist {
		total += n
	}
	return total
}

func TestExtractInsightsEmpty(t *testing.T) {
	c := newTestClient(t, Config{})
	bundle, err := c.ExtractInsights(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExtractInsights(nil) error = %v", err)
	}
	if bundle.SampleSize != 0 {
		t.Errorf("SampleSize = %d, want 0", bundle.SampleSize)
	}
	if bundle.Summary == "" {
		t.Error("Summary is empty, want the local analyzer's empty-workload text")
	}
}

func TestExtractInsightsLocalWhenUnconfigured(t *testing.T) {
	c := newTestClient(t, Config{})
	texts := []string{"really good", "absolutely terrible", "the report covers March"}

	bundle, err := c.ExtractInsights(context.Background(), texts)
	if err != nil {
		t.Fatalf("ExtractInsights() error = %v", err)
	}
	if !bundle.Degraded {
		t.Error("Degraded = false, want true without a remote endpoint")
	}
	if bundle.DegradedReason != ReasonUnconfigured {
		t.Errorf("DegradedReason = %q, want %q", bundle.DegradedReason, ReasonUnconfigured)
	}
	if got := distSum(bundle.SentimentDistribution); got != len(texts) {
		t.Errorf("sentiment distribution sums to %d, want %d", got, len(texts))
	}
	if bundle.Pros == nil || bundle.FeatureRequests == nil {
		t.Error("list fields must be non-nil after EnsureDefaults")
	}
}

func TestExtractInsightsSingleRemoteCall(t *testing.T) {
	reply := `{
		"summary": "Mixed feedback overall.",
		"key_points": ["service quality praised"],
		"pros": ["good service"],
		"cons": ["app stability"],
		"pain_points": ["app crashes"],
		"feature_requests": []
	}`
	remote := &fakeRemote{replies: []remoteReply{{text: reply}}}
	c := newTestClient(t, Config{Remote: remote})

	texts := []string{"really good service", "absolutely terrible app", "the report covers March"}
	bundle, err := c.ExtractInsights(context.Background(), texts)
	if err != nil {
		t.Fatalf("ExtractInsights() error = %v", err)
	}
	if remote.calls() != 1 {
		t.Fatalf("remote calls = %d, want 1 for a workload under the batch threshold", remote.calls())
	}
	if bundle.Summary != "Mixed feedback overall." {
		t.Errorf("Summary = %q, want the remote summary", bundle.Summary)
	}
	if len(bundle.Pros) != 1 || bundle.Pros[0] != "good service" {
		t.Errorf("Pros = %v, want [good service]", bundle.Pros)
	}
	if bundle.Degraded {
		t.Errorf("Degraded = true (reason %q), want false", bundle.DegradedReason)
	}
	if bundle.SampleSize != 3 {
		t.Errorf("SampleSize = %d, want 3", bundle.SampleSize)
	}

	// Distributions are recounted locally over every text, never taken
	// from the remote response.
	wantSentiment := map[string]int{
		models.SentimentPositive: 1,
		models.SentimentNegative: 1,
		models.SentimentNeutral:  1,
	}
	for label, want := range wantSentiment {
		if got := bundle.SentimentDistribution[label]; got != want {
			t.Errorf("SentimentDistribution[%s] = %d, want %d", label, got, want)
		}
	}
	if got := distSum(bundle.ClassificationDistribution); got != 3 {
		t.Errorf("classification distribution sums to %d, want 3", got)
	}

	// The bundle is cached; an identical workload must not call out again.
	cached, err := c.ExtractInsights(context.Background(), texts)
	if err != nil {
		t.Fatalf("second ExtractInsights() error = %v", err)
	}
	if remote.calls() != 1 {
		t.Errorf("remote calls after cached workload = %d, want 1", remote.calls())
	}
	if cached.Summary != bundle.Summary {
		t.Errorf("cached Summary = %q, want %q", cached.Summary, bundle.Summary)
	}
}

func TestExtractInsightsBatchedMergeAndCombine(t *testing.T) {
	remote := &fakeRemote{replies: []remoteReply{
		{text: `{"summary":"First part.","key_points":["stability"],"pros":["speed","price"],"cons":["bugs"],"pain_points":[],"feature_requests":["dark mode"]}`},
		{text: `{"summary":"Second part.","key_points":["stability","support"],"pros":["price","design"],"cons":[],"pain_points":[],"feature_requests":[]}`},
		{text: "Overall positive with stability concerns."},
	}}
	sink := &recordingSink{}
	c := newTestClient(t, Config{Remote: remote, Progress: sink})

	texts := longWorkload(121)
	bundle, err := c.ExtractInsights(context.Background(), texts)
	if err != nil {
		t.Fatalf("ExtractInsights() error = %v", err)
	}
	if remote.calls() != 3 {
		t.Fatalf("remote calls = %d, want 2 batches + 1 summary combine", remote.calls())
	}

	if bundle.Summary != "Overall positive with stability concerns." {
		t.Errorf("Summary = %q, want the combined summary", bundle.Summary)
	}
	if want := []string{"speed", "price", "design"}; !equalStrings(bundle.Pros, want) {
		t.Errorf("Pros = %v, want %v (deduplicated, first-seen order)", bundle.Pros, want)
	}
	if want := []string{"stability", "support"}; !equalStrings(bundle.KeyPoints, want) {
		t.Errorf("KeyPoints = %v, want %v", bundle.KeyPoints, want)
	}
	if bundle.Degraded {
		t.Errorf("Degraded = true (reason %q), want false", bundle.DegradedReason)
	}
	if got := distSum(bundle.SentimentDistribution); got != 121 {
		t.Errorf("sentiment distribution sums to %d, want 121", got)
	}
	if bundle.SentimentDistribution[models.SentimentNeutral] != 121 {
		t.Errorf("SentimentDistribution = %v, want all neutral filler", bundle.SentimentDistribution)
	}
	if sink.count() != 2 {
		t.Errorf("progress events = %d, want one per batch", sink.count())
	}
}

func TestExtractInsightsCombineFallsBackToConcat(t *testing.T) {
	remote := &fakeRemote{replies: []remoteReply{
		{text: `{"summary":"First part.","key_points":[],"pros":[],"cons":[],"pain_points":[],"feature_requests":[]}`},
		{text: `{"summary":"Second part.","key_points":[],"pros":[],"cons":[],"pain_points":[],"feature_requests":[]}`},
		// Third call (the combine) fails as a transport error.
	}}
	c := newTestClient(t, Config{Remote: remote})

	bundle, err := c.ExtractInsights(context.Background(), longWorkload(121))
	if err != nil {
		t.Fatalf("ExtractInsights() error = %v", err)
	}
	if bundle.Summary != "First part. Second part." {
		t.Errorf("Summary = %q, want plain concatenation fallback", bundle.Summary)
	}
	if bundle.Degraded {
		t.Error("Degraded = true, want false: a concatenated summary is not a degradation")
	}
	if remote.calls() != 3 {
		t.Errorf("remote calls = %d, want 3 (combine attempted once)", remote.calls())
	}
}

func TestExtractInsightsSynthesizesOnExhaustedObject(t *testing.T) {
	refusal := "Sorry, I cannot help with that."
	remote := &fakeRemote{replies: []remoteReply{{text: refusal}, {text: refusal}}}
	c := newTestClient(t, Config{Remote: remote})

	texts := []string{"some feedback", "more feedback"}
	bundle, err := c.ExtractInsights(context.Background(), texts)
	if err != nil {
		t.Fatalf("ExtractInsights() error = %v, want synthesized bundle", err)
	}
	if bundle.Summary != refusal {
		t.Errorf("Summary = %q, want the raw prefix %q", bundle.Summary, refusal)
	}
	if !bundle.Degraded || bundle.DegradedReason != ReasonMalformed {
		t.Errorf("degradation = (%v, %q), want (true, %q)", bundle.Degraded, bundle.DegradedReason, ReasonMalformed)
	}
	if len(bundle.Pros) != 0 || bundle.Pros == nil {
		t.Errorf("Pros = %#v, want empty non-nil list", bundle.Pros)
	}
	if got := distSum(bundle.SentimentDistribution); got != 2 {
		t.Errorf("sentiment distribution sums to %d, want 2", got)
	}

	// Synthesized bundles are not cached: the same workload tries again.
	if _, err := c.ExtractInsights(context.Background(), texts); err != nil {
		t.Fatalf("second ExtractInsights() error = %v", err)
	}
	if remote.calls() != 2 {
		t.Errorf("remote calls = %d, want 2 (degraded bundle must not be cached)", remote.calls())
	}
}

func TestExtractInsightsRemoteFailureFallsLocal(t *testing.T) {
	remote := &fakeRemote{replies: []remoteReply{
		{err: fmt.Errorf("%w: gateway timeout", ErrRemoteUnavailable)},
	}}
	c := newTestClient(t, Config{Remote: remote})

	bundle, err := c.ExtractInsights(context.Background(), []string{"really good", "really bad"})
	if err != nil {
		t.Fatalf("ExtractInsights() error = %v, want local fallback", err)
	}
	if !bundle.Degraded || bundle.DegradedReason != ReasonRemoteError {
		t.Errorf("degradation = (%v, %q), want (true, %q)", bundle.Degraded, bundle.DegradedReason, ReasonRemoteError)
	}
	if !strings.HasPrefix(bundle.Summary, "Local analysis of") {
		t.Errorf("Summary = %q, want the local analyzer's summary", bundle.Summary)
	}
}

func TestExtractInsightsCancelledBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	remote := &fakeRemote{
		replies: []remoteReply{
			{text: `{"summary":"First part.","key_points":[],"pros":[],"cons":[],"pain_points":[],"feature_requests":[]}`},
		},
	}
	remote.hook = func(call int) {
		if call == 0 {
			cancel()
		}
	}
	c := newTestClient(t, Config{Remote: remote})

	bundle, err := c.ExtractInsights(ctx, longWorkload(121))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ExtractInsights() error = %v, want context.Canceled", err)
	}
	if bundle.SampleSize != 0 {
		t.Errorf("bundle = %+v, want zero value on cancellation", bundle)
	}
	if remote.calls() != 1 {
		t.Errorf("remote calls = %d, want 1 (second batch never started)", remote.calls())
	}
}

func TestExtractInsightsShortTextsSingleBatch(t *testing.T) {
	reply := `{"summary":"Consistent short feedback.","key_points":[],"pros":[],"cons":[],"pain_points":[],"feature_requests":[]}`
	remote := &fakeRemote{replies: []remoteReply{{text: reply}}}
	sink := &recordingSink{}
	c := newTestClient(t, Config{Remote: remote, Progress: sink})

	texts := make([]string, 250)
	for i := range texts {
		texts[i] = fmt.Sprintf("feedback item %03d with a little extra padding", i)
	}

	bundle, err := c.ExtractInsights(context.Background(), texts)
	if err != nil {
		t.Fatalf("ExtractInsights() error = %v", err)
	}
	if remote.calls() != 1 {
		t.Errorf("remote calls = %d, want exactly 1 batch for 250 short texts", remote.calls())
	}
	if got := distSum(bundle.SentimentDistribution); got != 250 {
		t.Errorf("sentiment distribution sums to %d, want 250", got)
	}
	if sink.count() != 1 {
		t.Errorf("progress events = %d, want 1", sink.count())
	}
	if bundle.Summary != "Consistent short feedback." {
		t.Errorf("Summary = %q, want the single batch summary without a combine call", bundle.Summary)
	}
}

func TestMergeListDedupOrder(t *testing.T) {
	pieces := []insightPiece{
		{payload: insightPayload{Pros: []string{"a", "b"}}},
		{payload: insightPayload{Pros: []string{"b", "c"}}},
	}
	got := mergeList(pieces, func(p insightPayload) []string { return p.Pros })
	if want := []string{"a", "b", "c"}; !equalStrings(got, want) {
		t.Errorf("mergeList = %v, want %v", got, want)
	}

	pieces = []insightPiece{
		{payload: insightPayload{Pros: []string{"  spaced  ", "", "spaced"}}},
	}
	got = mergeList(pieces, func(p insightPayload) []string { return p.Pros })
	if want := []string{"spaced"}; !equalStrings(got, want) {
		t.Errorf("mergeList = %v, want trimmed dedup %v", got, want)
	}
}

func TestCombineSummaries(t *testing.T) {
	c := newTestClient(t, Config{})
	ctx := context.Background()

	if got := c.combineSummaries(ctx, nil); got != "" {
		t.Errorf("combineSummaries(nil) = %q, want empty", got)
	}
	if got := c.combineSummaries(ctx, []string{"only one"}); got != "only one" {
		t.Errorf("combineSummaries(single) = %q, want pass-through", got)
	}
	if got := c.combineSummaries(ctx, []string{"part one.", "part two."}); got != "part one. part two." {
		t.Errorf("combineSummaries = %q, want concatenation without a remote", got)
	}

	long := strings.Repeat("s", 600)
	got := c.combineSummaries(ctx, []string{long, long})
	if wantMax := combinedSummaryMaxLen + len("..."); len(got) > wantMax {
		t.Errorf("len(combineSummaries) = %d, want <= %d", len(got), wantMax)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("combineSummaries = %q, want truncation marker", got[len(got)-10:])
	}
}

func TestCountDistributionsSums(t *testing.T) {
	c := newTestClient(t, Config{})
	texts := []string{
		"really good", "absolutely terrible", "the report covers March",
		"love the design", "crashes constantly",
	}
	sentimentDist, classDist := c.countDistributions(texts)
	if got := distSum(sentimentDist); got != len(texts) {
		t.Errorf("sentiment distribution sums to %d, want %d", got, len(texts))
	}
	if got := distSum(classDist); got != len(texts) {
		t.Errorf("classification distribution sums to %d, want %d", got, len(texts))
	}
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
