// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package csvimport

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
)

// ErrNoTextColumn is returned when the header has no recognizable text
// column, which makes every row unusable.
var ErrNoTextColumn = errors.New("no text column found in CSV header")

// Column aliases, checked in order against lowercased header cells. The
// first header cell matching any alias wins; later duplicates are ignored.
var (
	textAliases   = []string{"text", "review", "comment", "feedback", "body", "content", "message"}
	ratingAliases = []string{"rating", "score", "stars"}
	sourceAliases = []string{"source", "platform", "channel"}
	userAliases   = []string{"username", "user", "author", "reviewer", "name"}
	dateAliases   = []string{"created_at", "date", "timestamp", "time"}
)

// dateLayouts are tried in order when parsing the optional date column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// columnMap holds the resolved index of each recognized column, -1 for
// columns the header does not carry.
type columnMap struct {
	text   int
	rating int
	source int
	user   int
	date   int
}

// mapColumns resolves header cells to review fields. Matching is
// case-insensitive on trimmed cells; a UTF-8 BOM on the first cell is
// stripped so exports from spreadsheet tools map cleanly.
func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{text: -1, rating: -1, source: -1, user: -1, date: -1}

	normalized := make([]string, len(header))
	for i, cell := range header {
		if i == 0 {
			cell = strings.TrimPrefix(cell, "\uFEFF")
		}
		normalized[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	cols.text = findColumn(normalized, textAliases)
	if cols.text < 0 {
		return cols, ErrNoTextColumn
	}
	cols.rating = findColumn(normalized, ratingAliases)
	cols.source = findColumn(normalized, sourceAliases)
	cols.user = findColumn(normalized, userAliases)
	cols.date = findColumn(normalized, dateAliases)

	return cols, nil
}

// findColumn returns the index of the first header cell matching any alias,
// respecting alias priority: "text" beats "comment" even when "comment"
// appears earlier in the header.
func findColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, cell := range header {
			if cell == alias {
				return i
			}
		}
	}
	return -1
}

// toReview converts one CSV row into a review using the resolved columns.
// It returns false when the row has no usable text. Optional columns that
// fail to parse are left zero rather than failing the row.
func (cols columnMap) toReview(row []string) (models.Review, bool) {
	text := cellAt(row, cols.text)
	if strings.TrimSpace(text) == "" {
		return models.Review{}, false
	}

	review := models.Review{
		Text:     text,
		Source:   cellAt(row, cols.source),
		Username: cellAt(row, cols.user),
	}

	if raw := cellAt(row, cols.rating); raw != "" {
		if rating, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			review.Rating = rating
		}
	}

	if raw := strings.TrimSpace(cellAt(row, cols.date)); raw != "" {
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				review.CreatedAt = ts
				break
			}
		}
	}

	return review, true
}

// cellAt returns row[idx] or "" when the column is absent or the row is
// too short. Ragged rows are common in hand-edited CSV files.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
