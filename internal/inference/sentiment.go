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

	"golang.org/x/sync/errgroup"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/batch"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/repair"
)

// scoredItem is one element of the remote batch-scoring response.
type scoredItem struct {
	Index      int     `json:"index"`
	Score      float64 `json:"score"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ScoreSentiment scores one text. The operation is always served from the
// cache or the local analyzer; remote quota is reserved for the insight
// path. It never fails: the worst case is a neutral result.
func (c *Client) ScoreSentiment(ctx context.Context, text string) models.SentimentResult {
	dec := c.decide(false)

	if v, ok := c.cache.Get(nsSentiment, text); ok {
		if res, valid := v.(models.SentimentResult); valid {
			res.Degraded = dec.degraded()
			metrics.InferenceRequestsTotal.WithLabelValues(opSentiment, pathCache, resultLabel(dec)).Inc()
			return res
		}
	}

	res := c.local.Score(text)
	c.cache.Put(nsSentiment, text, res, c.sentimentTTL)
	c.countLocal()

	res.Degraded = dec.degraded()
	metrics.InferenceRequestsTotal.WithLabelValues(opSentiment, pathLocal, resultLabel(dec)).Inc()
	return res
}

// ScoreSentimentBatch scores texts preserving input order. Every text is
// cache-checked first and only the misses are scheduled, in adaptive
// batches executed strictly in order.
//
// The error is non-nil only when ctx is cancelled mid-run or a remote
// batch response is unrepairable; partial work is then discarded (the
// per-item cache keeps what individual batches already computed).
func (c *Client) ScoreSentimentBatch(ctx context.Context, texts []string) ([]models.SentimentResult, error) {
	if len(texts) == 0 {
		return []models.SentimentResult{}, nil
	}

	dec := c.decide(c.remoteSentiment)
	results := make([]models.SentimentResult, len(texts))
	missing := make([]string, 0, len(texts))
	missingIdx := make([]int, 0, len(texts))
	for i, text := range texts {
		if v, ok := c.cache.Get(nsSentiment, text); ok {
			if res, valid := v.(models.SentimentResult); valid {
				res.Degraded = dec.degraded()
				results[i] = res
				continue
			}
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if hits := len(texts) - len(missing); hits > 0 {
		metrics.InferenceRequestsTotal.WithLabelValues(opSentimentBatch, pathCache, resultLabel(dec)).Add(float64(hits))
	}
	if len(missing) == 0 {
		return results, nil
	}

	plan := batch.NewPlan(logging.JobIDFromContext(ctx), missing)
	scored, err := batch.Run(ctx, plan, c.sink, c.scoreBatch)
	if err != nil {
		return nil, fmt.Errorf("score sentiment batch: %w", err)
	}
	for i, res := range scored {
		results[missingIdx[i]] = res
	}
	return results, nil
}

// scoreBatch serves one scheduled batch. The route is re-decided per batch
// so a circuit opened by an earlier batch bypasses the remote immediately.
func (c *Client) scoreBatch(ctx context.Context, items []string) ([]models.SentimentResult, error) {
	dec := c.decide(c.remoteSentiment)
	if dec.useRemote {
		res, err := c.remoteScoreBatch(ctx, items)
		switch {
		case err == nil:
			metrics.InferenceRequestsTotal.WithLabelValues(opSentimentBatch, pathRemote, resultSuccess).Inc()
			return res, nil
		case errors.Is(err, repair.ErrMalformed):
			metrics.InferenceRequestsTotal.WithLabelValues(opSentimentBatch, pathRemote, resultFailure).Inc()
			return nil, err
		case errors.Is(err, context.Canceled):
			return nil, err
		}
		// Transport or quota failure, already recorded. Serve locally.
		dec = decision{reason: ReasonRemoteError}
	}

	results := c.localScoreBatch(items)
	if dec.degraded() {
		for i := range results {
			results[i].Degraded = true
		}
	}
	metrics.InferenceRequestsTotal.WithLabelValues(opSentimentBatch, pathLocal, resultLabel(dec)).Inc()
	return results, nil
}

// remoteScoreBatch scores a whole batch in one remote call. Items the
// response skips keep their local score; an unrepairable response is a
// hard failure for the caller to surface.
func (c *Client) remoteScoreBatch(ctx context.Context, items []string) ([]models.SentimentResult, error) {
	raw, err := c.generate(ctx, opSentimentBatch, sentimentBatchPrompt(items))
	if err != nil {
		return nil, err
	}

	parsed, err := repair.Array[scoredItem](raw)
	if err != nil {
		c.recordParsed(opSentimentBatch, err)
		return nil, err
	}
	c.recordParsed(opSentimentBatch, nil)

	results := c.localScoreBatch(items)
	for _, item := range parsed {
		if item.Index < 0 || item.Index >= len(items) {
			continue
		}
		res := models.SentimentResult{
			Score:      clamp01(item.Score),
			Label:      normalizeLabel(item.Label, item.Score),
			Confidence: clamp01(item.Confidence),
		}
		results[item.Index] = res
		c.cache.Put(nsSentiment, items[item.Index], res, c.sentimentTTL)
	}
	return results, nil
}

// localScoreBatch scores items on the local analyzer across a bounded
// worker pool and caches every result.
func (c *Client) localScoreBatch(items []string) []models.SentimentResult {
	results := make([]models.SentimentResult, len(items))

	g := new(errgroup.Group)
	g.SetLimit(c.workers)
	for i, text := range items {
		g.Go(func() error {
			results[i] = c.local.Score(text)
			return nil
		})
	}
	_ = g.Wait() // the local scorer never fails

	for i, text := range items {
		c.cache.Put(nsSentiment, text, results[i], c.sentimentTTL)
	}
	c.countLocal()
	return results
}

// normalizeLabel keeps remote labels within the known set, deriving the
// label from the score when the model invents its own wording.
func normalizeLabel(label string, score float64) string {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case models.SentimentPositive:
		return models.SentimentPositive
	case models.SentimentNegative:
		return models.SentimentNegative
	case models.SentimentNeutral:
		return models.SentimentNeutral
	default:
		return models.LabelForScore(clamp01(score))
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
