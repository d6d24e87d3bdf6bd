// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package sentiment

import (
	"strings"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
)

// Classify buckets text into one feedback category.
//
// Each category accumulates evidence: one point per keyword token, two per
// matched phrase, and two for a trailing question mark. The highest score
// wins; ties fall to classificationPriority order. Text with no evidence
// at all is CategoryOther.
func (a *Analyzer) Classify(text string) string {
	lower := strings.ToLower(text)
	tokens := tokenize(text)

	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}

	scores := make(map[string]int, len(classificationPriority))
	for cat, words := range categoryKeywords {
		for _, w := range words {
			if tokenSet[w] {
				scores[cat]++
			}
		}
	}
	for cat, phrases := range categoryPhrases {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				scores[cat] += 2
			}
		}
	}
	if strings.HasSuffix(strings.TrimSpace(lower), "?") {
		scores[models.CategoryQuestion] += 2
	}

	best := models.CategoryOther
	bestScore := 0
	for _, cat := range classificationPriority {
		if scores[cat] > bestScore {
			best = cat
			bestScore = scores[cat]
		}
	}
	return best
}
