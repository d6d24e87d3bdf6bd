// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package csvimport

import "github.com/GreenHacker420/propacity-proj-sub000/internal/models"

// Stats holds row-level counters for one CSV parse.
type Stats struct {
	// TotalRows is the number of data rows read, excluding the header.
	TotalRows int `json:"total_rows"`

	// Parsed is the number of rows converted into reviews.
	Parsed int `json:"parsed"`

	// Skipped is the number of rows dropped: empty text, too few columns,
	// or an unparseable CSV line.
	Skipped int `json:"skipped"`
}

// Result is the outcome of parsing one uploaded file.
type Result struct {
	Reviews []models.Review
	Stats   Stats
}
