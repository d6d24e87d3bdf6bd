// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package sentiment implements the local text analysis fallback used when
// remote inference is unavailable, rate limited, or disabled.
//
// The package never calls the network and never fails: it produces a usable
// (if rougher) result for any input, which is what makes the degraded mode
// of the inference client possible.
//
// # Scoring
//
// Score uses a valence lexicon: each known word carries a weight in [-1, 1],
// modified by negators ("not good" flips sign) and intensifiers ("very good"
// amplifies) found in the preceding tokens. The averaged valence maps onto
// a score in [0, 1]:
//
//	score = 0.5 + avg/2
//
// Texts with no lexicon hits score a neutral 0.5 with low confidence.
// Confidence grows with the amount of lexicon evidence found.
//
// # Classification
//
// Classify buckets a text into one feedback category (bug, feature_request,
// praise, complaint, question, other) by counting keyword and phrase
// evidence per category. Bug reports outrank other categories on ties so
// actionable defects are never hidden behind generic complaints.
//
// # Local Insights
//
// Analyze builds a full InsightBundle from raw review texts: sentiment and
// classification distributions via the scorer, key points from frequent
// word pairs, and pros/cons/pain points/feature requests grouped by label
// and category. Bundles produced here are always marked Degraded.
//
// # Usage Example
//
//	analyzer := sentiment.NewAnalyzer()
//
//	res := analyzer.Score("The new dashboard is really great")
//	// res.Label == "POSITIVE"
//
//	bundle := analyzer.Analyze(texts)
//	// bundle.Degraded == true
package sentiment
