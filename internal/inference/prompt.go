// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package inference

import (
	"fmt"
	"strings"
)

// insightPrompt asks for one JSON object per batch using the exact keys
// insightPayload decodes. The model is told to answer with bare JSON, but
// the repair layer still expects fences and prose in practice.
func insightPrompt(texts []string) string {
	var sb strings.Builder
	sb.WriteString("You are analyzing a batch of customer feedback for a product team.\n")
	sb.WriteString("Respond with only a JSON object, no prose before or after, using exactly these keys:\n")
	sb.WriteString(`{"summary": "2-3 sentence overview", "key_points": [], "pros": [], "cons": [], "pain_points": [], "feature_requests": []}`)
	sb.WriteString("\nKeep every list item under 12 words. Use empty lists when nothing applies.\n")
	sb.WriteString("\nFeedback:\n")
	for i, text := range texts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, text)
	}
	return sb.String()
}

// sentimentBatchPrompt asks for a JSON array with one entry per zero-based
// numbered item so the response maps back by index.
func sentimentBatchPrompt(texts []string) string {
	var sb strings.Builder
	sb.WriteString("Score the sentiment of each numbered text.\n")
	sb.WriteString("Respond with only a JSON array, one object per text, using exactly this shape:\n")
	sb.WriteString(`[{"index": 0, "score": 0.0, "label": "POSITIVE|NEGATIVE|NEUTRAL", "confidence": 0.0}]`)
	sb.WriteString("\nIndex matches the input numbering. Score and confidence are between 0 and 1.\n")
	sb.WriteString("\nTexts:\n")
	for i, text := range texts {
		fmt.Fprintf(&sb, "%d. %s\n", i, text)
	}
	return sb.String()
}

// combinePrompt merges per-batch summaries into one final summary.
func combinePrompt(summaries []string) string {
	var sb strings.Builder
	sb.WriteString("Combine the following partial summaries of one customer feedback dataset into a single 2-3 sentence summary.\n")
	sb.WriteString("Respond with only the summary text, no preamble.\n")
	sb.WriteString("\nPartial summaries:\n")
	for i, s := range summaries {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
	}
	return sb.String()
}

// truncateText caps s at limit runes without splitting a character.
func truncateText(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
