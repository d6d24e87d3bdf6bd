// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package models

import "time"

// Sentiment labels. Scores in [0,1] map onto these three classes.
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
)

// Feedback classification categories used in distributions and the local
// fallback analysis.
const (
	CategoryBug            = "bug"
	CategoryFeatureRequest = "feature_request"
	CategoryPraise         = "praise"
	CategoryComplaint      = "complaint"
	CategoryQuestion       = "question"
	CategoryOther          = "other"
)

// SentimentResult is the outcome of scoring one text.
//
// Score is in [0,1] where 0 is fully negative and 1 fully positive.
// Label is one of SentimentPositive, SentimentNegative, SentimentNeutral.
// Confidence is in [0,1]. Degraded marks results produced while the remote
// inference path was unavailable; it reflects the moment of the call, not
// the stored value, so cached results are re-annotated on every read.
type SentimentResult struct {
	Score      float64 `json:"score"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Degraded   bool    `json:"degraded,omitempty"`
}

// LabelForScore maps a sentiment score onto its label. Scores within the
// neutral band around 0.5 are NEUTRAL.
func LabelForScore(score float64) string {
	switch {
	case score >= 0.6:
		return SentimentPositive
	case score <= 0.4:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// InsightBundle aggregates the analysis of a set of reviews.
//
// The distribution maps count individual texts, so the values of
// SentimentDistribution always sum to SampleSize. Degraded marks bundles
// produced entirely or partially by the local fallback path.
type InsightBundle struct {
	Summary                    string         `json:"summary"`
	KeyPoints                  []string       `json:"key_points"`
	Pros                       []string       `json:"pros"`
	Cons                       []string       `json:"cons"`
	PainPoints                 []string       `json:"pain_points"`
	FeatureRequests            []string       `json:"feature_requests"`
	SentimentDistribution      map[string]int `json:"sentiment_distribution"`
	ClassificationDistribution map[string]int `json:"classification_distribution"`
	SampleSize                 int            `json:"sample_size"`
	Degraded                   bool           `json:"degraded,omitempty"`
	DegradedReason             string         `json:"degraded_reason,omitempty"`
	GeneratedAt                time.Time      `json:"generated_at"`
}

// EnsureDefaults replaces nil collections with empty ones so aggregation and
// JSON encoding never have to branch on nil.
func (b *InsightBundle) EnsureDefaults() {
	if b.KeyPoints == nil {
		b.KeyPoints = []string{}
	}
	if b.Pros == nil {
		b.Pros = []string{}
	}
	if b.Cons == nil {
		b.Cons = []string{}
	}
	if b.PainPoints == nil {
		b.PainPoints = []string{}
	}
	if b.FeatureRequests == nil {
		b.FeatureRequests = []string{}
	}
	if b.SentimentDistribution == nil {
		b.SentimentDistribution = map[string]int{}
	}
	if b.ClassificationDistribution == nil {
		b.ClassificationDistribution = map[string]int{}
	}
}

// ClientStatus is a read-only snapshot of the inference client state,
// exposed for dashboards and health checks.
type ClientStatus struct {
	RemoteConfigured   bool    `json:"remote_configured"`
	CircuitOpen        bool    `json:"circuit_open"`
	RateLimited        bool    `json:"rate_limited"`
	CacheHits          uint64  `json:"cache_hits"`
	CacheMisses        uint64  `json:"cache_misses"`
	CacheEntries       int     `json:"cache_entries"`
	RemoteCalls        uint64  `json:"remote_calls"`
	LocalCalls         uint64  `json:"local_calls"`
	AvgRemoteLatencyMS float64 `json:"avg_remote_latency_ms"`
}
