// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package sentiment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
)

const (
	maxKeyPoints   = 5
	maxListItems   = 5
	minPhraseCount = 2
)

// Analyze builds a full insight bundle from raw review texts without any
// remote call. Distributions come from Score and Classify; the list fields
// are frequent-phrase extractions over the relevant slice of texts
// (positive texts feed pros, bug and complaint texts feed pain points).
//
// Bundles from this path are always marked Degraded.
func (a *Analyzer) Analyze(texts []string) models.InsightBundle {
	bundle := models.InsightBundle{
		SentimentDistribution:      make(map[string]int, 3),
		ClassificationDistribution: make(map[string]int, 6),
		SampleSize:                 len(texts),
		Degraded:                   true,
		GeneratedAt:                time.Now().UTC(),
	}

	var positive, negative []string
	byCategory := make(map[string][]string)

	for _, text := range texts {
		res := a.Score(text)
		bundle.SentimentDistribution[res.Label]++
		switch res.Label {
		case models.SentimentPositive:
			positive = append(positive, text)
		case models.SentimentNegative:
			negative = append(negative, text)
		}

		cat := a.Classify(text)
		bundle.ClassificationDistribution[cat]++
		byCategory[cat] = append(byCategory[cat], text)
	}

	painTexts := make([]string, 0, len(byCategory[models.CategoryBug])+len(byCategory[models.CategoryComplaint]))
	painTexts = append(painTexts, byCategory[models.CategoryBug]...)
	painTexts = append(painTexts, byCategory[models.CategoryComplaint]...)

	bundle.KeyPoints = topPhrases(texts, maxKeyPoints)
	bundle.Pros = topPhrases(positive, maxListItems)
	bundle.Cons = topPhrases(negative, maxListItems)
	bundle.PainPoints = topPhrases(painTexts, maxListItems)
	bundle.FeatureRequests = topPhrases(byCategory[models.CategoryFeatureRequest], maxListItems)

	bundle.Summary = summarize(&bundle)
	bundle.EnsureDefaults()
	return bundle
}

func summarize(b *models.InsightBundle) string {
	if b.SampleSize == 0 {
		return "No reviews to analyze."
	}

	s := fmt.Sprintf("Local analysis of %d reviews: %d positive, %d negative, %d neutral.",
		b.SampleSize,
		b.SentimentDistribution[models.SentimentPositive],
		b.SentimentDistribution[models.SentimentNegative],
		b.SentimentDistribution[models.SentimentNeutral])

	if len(b.KeyPoints) > 0 {
		topics := b.KeyPoints
		if len(topics) > 3 {
			topics = topics[:3]
		}
		s += " Frequent topics: " + strings.Join(topics, ", ") + "."
	}
	return s
}

// topPhrases extracts the most frequent content word pairs from texts,
// filling remaining slots with frequent single words. Pairs are only formed
// from words adjacent in the original text so no artificial phrases appear
// across stopword gaps. Ordering is count descending then alphabetical,
// keeping output stable across runs.
func topPhrases(texts []string, n int) []string {
	if len(texts) == 0 || n <= 0 {
		return nil
	}

	bigrams := make(map[string]int)
	unigrams := make(map[string]int)
	for _, text := range texts {
		prev := ""
		for _, tok := range tokenize(text) {
			if stopwords[tok] || len(tok) < 2 {
				prev = ""
				continue
			}
			unigrams[tok]++
			if prev != "" {
				bigrams[prev+" "+tok]++
			}
			prev = tok
		}
	}

	phrases := rankCounts(bigrams, minPhraseCount)
	if len(phrases) > n {
		return phrases[:n]
	}

	// Sparse texts may have no repeated words at all; surface what is there.
	minUnigram := minPhraseCount
	if len(phrases) == 0 {
		minUnigram = 1
	}

	for _, w := range rankCounts(unigrams, minUnigram) {
		if len(phrases) >= n {
			break
		}
		if !coveredBy(phrases, w) {
			phrases = append(phrases, w)
		}
	}
	return phrases
}

// coveredBy reports whether word already appears inside one of the phrases.
func coveredBy(phrases []string, word string) bool {
	for _, p := range phrases {
		for _, part := range strings.Fields(p) {
			if part == word {
				return true
			}
		}
	}
	return false
}

// rankCounts returns the keys counted at least min times, most frequent
// first, alphabetical within equal counts.
func rankCounts(counts map[string]int, min int) []string {
	keys := make([]string, 0, len(counts))
	for k, c := range counts {
		if c >= min {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
