// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package csvimport parses uploaded CSV files into reviews.
//
// Uploads come from many tools, so the parser is deliberately forgiving:
// columns are located by alias matching on the header, rows missing
// optional columns still import, and malformed rows are counted and
// skipped instead of failing the upload. Only a header without any text
// column is a hard error, because then no row can produce a review.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
)

// maxRows bounds a single upload. The HTTP layer caps bytes before the
// parser runs; this guards against pathologically dense small files.
const maxRows = 100_000

// ErrTooManyRows is returned when an upload exceeds maxRows data rows.
var ErrTooManyRows = fmt.Errorf("too many rows in CSV upload (limit %d)", maxRows)

// Parse reads CSV review data from r. The first record is the header and
// is mapped to review fields by alias (see mapColumns). defaultSource is
// assigned to rows without a source column or with an empty source cell.
//
// Rows that cannot become a review are skipped and counted, never fatal:
// empty or missing text, and lines the CSV reader rejects. Unparseable
// optional cells (rating, date) degrade to zero values instead of
// skipping the row.
func Parse(r io.Reader, defaultSource string) (*Result, error) {
	reader := csv.NewReader(r)
	// Ragged rows are tolerated; the mapper treats missing cells as empty.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty CSV file")
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	if defaultSource == "" {
		defaultSource = models.SourceCSV
	}

	result := &Result{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// The reader resynchronizes on the next line, so one bad
				// quote does not sink the rest of the file.
				result.Stats.TotalRows++
				result.Stats.Skipped++
				logging.Debug().
					Int("line", parseErr.Line).
					Err(parseErr.Err).
					Msg("skipping malformed CSV row")
				continue
			}
			return nil, fmt.Errorf("read CSV row: %w", err)
		}

		result.Stats.TotalRows++
		if result.Stats.TotalRows > maxRows {
			return nil, ErrTooManyRows
		}

		review, ok := cols.toReview(row)
		if !ok {
			result.Stats.Skipped++
			continue
		}
		if review.Source == "" {
			review.Source = defaultSource
		}

		result.Reviews = append(result.Reviews, review)
		result.Stats.Parsed++
	}

	logging.Debug().
		Int("total_rows", result.Stats.TotalRows).
		Int("parsed", result.Stats.Parsed).
		Int("skipped", result.Stats.Skipped).
		Msg("CSV parse finished")

	return result, nil
}
