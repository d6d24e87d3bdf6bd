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

	"golang.org/x/sync/errgroup"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/batch"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/cache"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/repair"
)

// insightPayload is the JSON shape requested from the remote model for one
// batch. Distributions are deliberately absent: they are recounted locally
// over every text so merged counts always sum to the sample size.
type insightPayload struct {
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"key_points"`
	Pros            []string `json:"pros"`
	Cons            []string `json:"cons"`
	PainPoints      []string `json:"pain_points"`
	FeatureRequests []string `json:"feature_requests"`
}

// EnsureDefaults fills absent collections so merging needs no nil checks.
func (p *insightPayload) EnsureDefaults() {
	if p.KeyPoints == nil {
		p.KeyPoints = []string{}
	}
	if p.Pros == nil {
		p.Pros = []string{}
	}
	if p.Cons == nil {
		p.Cons = []string{}
	}
	if p.PainPoints == nil {
		p.PainPoints = []string{}
	}
	if p.FeatureRequests == nil {
		p.FeatureRequests = []string{}
	}
}

// insightPiece is one batch's contribution plus how it was produced.
type insightPiece struct {
	payload  insightPayload
	degraded bool
	reason   string
}

// ExtractInsights analyzes texts into a single InsightBundle. Workloads
// above the configured threshold are split into adaptive batches with one
// remote call each, executed strictly in order; smaller workloads take one
// remote call. Every remote failure degrades to the local analyzer, so the
// returned error is non-nil only when ctx is cancelled mid-run, in which
// case partial work is discarded.
func (c *Client) ExtractInsights(ctx context.Context, texts []string) (models.InsightBundle, error) {
	if len(texts) == 0 {
		return c.local.Analyze(nil), nil
	}

	cacheKey := cache.Key(opInsights, texts)
	if v, ok := c.cache.Get(nsInsight, cacheKey); ok {
		if bundle, valid := v.(models.InsightBundle); valid {
			metrics.InferenceRequestsTotal.WithLabelValues(opInsights, pathCache, resultSuccess).Inc()
			return bundle, nil
		}
	}

	dec := c.decide(true)
	if !dec.useRemote {
		bundle := c.localInsights(texts, dec.reason)
		metrics.InferenceRequestsTotal.WithLabelValues(opInsights, pathLocal, resultDegraded).Inc()
		return bundle, nil
	}

	pieces, err := c.insightPieces(ctx, texts)
	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(opInsights, pathRemote, resultFailure).Inc()
		return models.InsightBundle{}, fmt.Errorf("extract insights: %w", err)
	}

	bundle := c.mergePieces(ctx, texts, pieces)
	if bundle.Degraded {
		metrics.InferenceRequestsTotal.WithLabelValues(opInsights, pathRemote, resultDegraded).Inc()
	} else {
		// Only fully remote-quality bundles are cached: a degraded bundle
		// served after recovery would misreport health until its TTL.
		c.cache.Put(nsInsight, cacheKey, bundle, c.insightTTL)
		metrics.InferenceRequestsTotal.WithLabelValues(opInsights, pathRemote, resultSuccess).Inc()
	}
	return bundle, nil
}

// localInsights runs the lexicon analyzer over the whole workload and
// annotates why the remote path was skipped.
func (c *Client) localInsights(texts []string, reason string) models.InsightBundle {
	c.countLocal()
	bundle := c.local.Analyze(texts)
	bundle.Degraded = true
	bundle.DegradedReason = reason
	return bundle
}

// insightPieces produces one payload per batch, strictly in order. Small
// workloads bypass the batch machinery with a single call.
func (c *Client) insightPieces(ctx context.Context, texts []string) ([]insightPiece, error) {
	if len(texts) <= c.insightThreshold {
		piece, err := c.insightBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		return []insightPiece{piece}, nil
	}

	plan := batch.NewPlan(logging.JobIDFromContext(ctx), texts)
	return batch.Run(ctx, plan, c.sink, func(ctx context.Context, items []string) ([]insightPiece, error) {
		piece, err := c.insightBatch(ctx, items)
		if err != nil {
			return nil, err
		}
		return []insightPiece{piece}, nil
	})
}

// insightBatch serves one batch of texts: remote when healthy, local
// otherwise. Only caller cancellation is returned as an error.
func (c *Client) insightBatch(ctx context.Context, items []string) (insightPiece, error) {
	dec := c.decide(true)
	if dec.useRemote {
		raw, err := c.generate(ctx, opInsights, insightPrompt(items))
		switch {
		case err == nil:
			return c.repairInsight(raw), nil
		case errors.Is(err, context.Canceled):
			return insightPiece{}, err
		default:
			// Transport or quota failure, already recorded.
			dec = decision{reason: ReasonRemoteError}
		}
	}

	c.countLocal()
	payload := localPayload(c.local.Analyze(items))
	return insightPiece{payload: payload, degraded: true, reason: dec.reason}, nil
}

// repairInsight parses a remote response, synthesizing a minimal payload
// when repair is exhausted. Synthesis counts as a formatting failure but
// never fails the caller.
func (c *Client) repairInsight(raw string) insightPiece {
	payload, err := repair.Object[insightPayload](raw)
	if err == nil {
		c.recordParsed(opInsights, nil)
		return insightPiece{payload: payload}
	}

	c.recordParsed(opInsights, err)
	metrics.RepairOutcomes.WithLabelValues("synthesized").Inc()

	synthesized := insightPayload{Summary: truncateText(strings.TrimSpace(raw), synthesizedSummaryLen)}
	synthesized.EnsureDefaults()
	return insightPiece{payload: synthesized, degraded: true, reason: ReasonMalformed}
}

// localPayload projects a locally computed bundle onto the remote payload
// shape so merging is uniform across routes.
func localPayload(b models.InsightBundle) insightPayload {
	return insightPayload{
		Summary:         b.Summary,
		KeyPoints:       b.KeyPoints,
		Pros:            b.Pros,
		Cons:            b.Cons,
		PainPoints:      b.PainPoints,
		FeatureRequests: b.FeatureRequests,
	}
}

// mergePieces folds batch payloads into the final bundle: list fields are
// concatenated preserving first-seen order with duplicates dropped,
// distributions are recounted over every text, and per-batch summaries are
// combined into one.
func (c *Client) mergePieces(ctx context.Context, texts []string, pieces []insightPiece) models.InsightBundle {
	bundle := models.InsightBundle{
		SampleSize:  len(texts),
		GeneratedAt: c.now().UTC(),
	}

	summaries := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if s := strings.TrimSpace(piece.payload.Summary); s != "" {
			summaries = append(summaries, s)
		}
		if piece.degraded {
			bundle.Degraded = true
			if bundle.DegradedReason == "" {
				bundle.DegradedReason = piece.reason
			}
		}
	}

	bundle.KeyPoints = mergeList(pieces, func(p insightPayload) []string { return p.KeyPoints })
	bundle.Pros = mergeList(pieces, func(p insightPayload) []string { return p.Pros })
	bundle.Cons = mergeList(pieces, func(p insightPayload) []string { return p.Cons })
	bundle.PainPoints = mergeList(pieces, func(p insightPayload) []string { return p.PainPoints })
	bundle.FeatureRequests = mergeList(pieces, func(p insightPayload) []string { return p.FeatureRequests })
	bundle.SentimentDistribution, bundle.ClassificationDistribution = c.countDistributions(texts)
	bundle.Summary = c.combineSummaries(ctx, summaries)
	bundle.EnsureDefaults()
	return bundle
}

// mergeList concatenates one list field across pieces, dropping duplicates
// while preserving first-seen order.
func mergeList(pieces []insightPiece, field func(insightPayload) []string) []string {
	merged := []string{}
	seen := make(map[string]struct{})
	for _, piece := range pieces {
		for _, item := range field(piece.payload) {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged
}

// countDistributions recounts sentiment and classification over every text
// on the local analyzer, fanning out across the bounded worker pool.
func (c *Client) countDistributions(texts []string) (map[string]int, map[string]int) {
	sentimentDist := make(map[string]int)
	classDist := make(map[string]int)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(c.workers)
	for _, text := range texts {
		g.Go(func() error {
			label := c.local.Score(text).Label
			category := c.local.Classify(text)
			mu.Lock()
			sentimentDist[label]++
			classDist[category]++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return sentimentDist, classDist
}

// combineSummaries folds per-batch summaries into one. A single summary
// passes through; several are combined by a budget-gated remote call that
// is cached like any other, falling back to capped concatenation.
func (c *Client) combineSummaries(ctx context.Context, summaries []string) string {
	if len(summaries) == 0 {
		return ""
	}
	if len(summaries) == 1 {
		return summaries[0]
	}

	joined := truncateText(strings.Join(summaries, " "), combinedSummaryMaxLen)

	dec := c.decide(true)
	if !dec.useRemote {
		return joined
	}

	key := cache.Key(opSummaryCombine, summaries)
	if v, ok := c.cache.Get(nsSummary, key); ok {
		if cached, valid := v.(string); valid {
			metrics.InferenceRequestsTotal.WithLabelValues(opSummaryCombine, pathCache, resultSuccess).Inc()
			return cached
		}
	}

	raw, err := c.generate(ctx, opSummaryCombine, combinePrompt(summaries))
	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(opSummaryCombine, pathLocal, resultDegraded).Inc()
		return joined
	}
	combined := strings.TrimSpace(raw)
	c.recordParsed(opSummaryCombine, nil)
	if combined == "" {
		return joined
	}

	c.cache.Put(nsSummary, key, combined, c.insightTTL)
	metrics.InferenceRequestsTotal.WithLabelValues(opSummaryCombine, pathRemote, resultSuccess).Inc()
	return combined
}
