// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package sentiment

import (
	"math"
	"strings"
	"unicode"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
)

// modifierWindow is how many tokens before a valence word are scanned for
// negators and intensifiers. "not very good" needs a window of at least 2.
const modifierWindow = 3

// Analyzer scores and classifies feedback text using only the built-in
// lexicon. It holds no mutable state and is safe for concurrent use.
//
// Analyzer satisfies the inference client's LocalScorer contract: Score
// accepts any input and always returns a usable result.
type Analyzer struct {
	valence      map[string]float64
	negators     map[string]bool
	intensifiers map[string]float64
}

// NewAnalyzer creates an analyzer backed by the built-in English lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		valence:      valence,
		negators:     negators,
		intensifiers: intensifiers,
	}
}

// Score computes a sentiment score in [0, 1] for text.
//
// Each lexicon word contributes its valence, flipped by a preceding negator
// and scaled by preceding intensifiers. The per-word result is clamped to
// [-1, 1] and the average maps onto the final score. Empty text and text
// with no lexicon hits both come back neutral; the former with zero
// confidence, the latter with a token floor.
func (a *Analyzer) Score(text string) models.SentimentResult {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return models.SentimentResult{Score: 0.5, Label: models.SentimentNeutral, Confidence: 0}
	}

	var sum float64
	hits := 0
	lastHit := -1

	for i, tok := range tokens {
		weight, ok := a.valence[tok]
		if !ok {
			continue
		}

		// Walk back through the modifier window, stopping at the previous
		// valence word so modifiers never apply twice.
		for j := i - 1; j >= 0 && j >= i-modifierWindow && j > lastHit; j-- {
			if factor, ok := a.intensifiers[tokens[j]]; ok {
				weight *= factor
			}
			if a.negators[tokens[j]] {
				weight = -weight
			}
		}

		sum += clamp(weight, -1, 1)
		hits++
		lastHit = i
	}

	if hits == 0 {
		return models.SentimentResult{Score: 0.5, Label: models.SentimentNeutral, Confidence: 0.2}
	}

	avg := sum / float64(hits)
	score := clamp(0.5+avg/2, 0, 1)

	// More lexicon evidence means more confidence, capped below certainty.
	confidence := math.Min(0.95, 0.35+0.12*float64(hits))

	return models.SentimentResult{
		Score:      score,
		Label:      models.LabelForScore(score),
		Confidence: confidence,
	}
}

// tokenize lowercases text and splits it into word tokens. Word-internal
// apostrophes survive so contractions like "don't" stay matchable.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
