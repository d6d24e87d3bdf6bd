// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package models defines the shared domain types: reviews, sentiment results,
// insight bundles, analysis jobs, and the API response envelope.
package models

import (
	"strings"
	"time"
)

// Known review sources. Ingestion accepts arbitrary source strings but these
// are the ones the importers produce.
const (
	SourceTwitter   = "twitter"
	SourcePlayStore = "playstore"
	SourceAppStore  = "appstore"
	SourceInternal  = "internal"
	SourceCSV       = "csv"
)

// Review is one piece of customer feedback from any source.
type Review struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Text       string    `json:"text"`
	Rating     float64   `json:"rating,omitempty"` // 0 = not provided
	Username   string    `json:"username,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Normalize trims whitespace and fills defaults so downstream code can rely
// on a non-empty source and timestamps.
func (r *Review) Normalize(now time.Time) {
	r.Text = strings.TrimSpace(r.Text)
	r.Username = strings.TrimSpace(r.Username)

	if r.Source == "" {
		r.Source = SourceInternal
	}
	r.Source = strings.ToLower(strings.TrimSpace(r.Source))

	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.IngestedAt.IsZero() {
		r.IngestedAt = now
	}
}
