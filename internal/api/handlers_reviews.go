// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	csvimport "github.com/GreenHacker420/propacity-proj-sub000/internal/import"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/store"
)

// CreateReviews handles JSON review ingestion
//
// @Summary Ingest a batch of reviews
// @Description Inserts up to 1000 reviews in one transaction. Reviews without an ID get a generated UUID; rows whose ID already exists are counted as duplicates and skipped, so replaying a payload is safe.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body CreateReviewsRequest true "Reviews to ingest"
// @Success 201 {object} models.APIResponse{data=IngestResult} "Ingest summary"
// @Failure 400 {object} models.APIResponse "Malformed body or validation failure"
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Router /reviews [post]
func (h *Handler) CreateReviews(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateReviewsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	reviews := make([]models.Review, 0, len(req.Reviews))
	for _, in := range req.Reviews {
		reviews = append(reviews, models.Review{
			ID:        in.ID,
			Source:    in.Source,
			Text:      in.Text,
			Rating:    in.Rating,
			Username:  in.Username,
			CreatedAt: in.CreatedAt,
		})
	}

	inserted, duplicates, err := h.store.InsertReviews(r.Context(), reviews)
	if err != nil {
		logging.Error().Err(err).Int("batch_size", len(reviews)).Msg("Review ingest failed")
		respondError(w, http.StatusInternalServerError, codeDatabase, "failed to store reviews", nil)
		return
	}

	logging.Info().
		Int("inserted", inserted).
		Int("duplicates", duplicates).
		Msg("Reviews ingested")

	respondJSON(w, http.StatusCreated, IngestResult{
		Inserted:   inserted,
		Duplicates: duplicates,
	}, start)
}

// ListReviews handles paginated review listing
//
// @Summary List stored reviews
// @Description Returns reviews newest-first with limit/offset pagination and an optional source filter. The configured maximum page size caps the limit parameter.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Rows to skip"
// @Param source query string false "Filter by review source"
// @Success 200 {object} models.APIResponse{data=ReviewPage} "One page of reviews"
// @Failure 400 {object} models.APIResponse "Invalid pagination parameters"
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Router /reviews [get]
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := ListReviewsRequest{
		Limit:  getIntParam(r, "limit", h.cfg.API.DefaultPageSize),
		Offset: getIntParam(r, "offset", 0),
		Source: strings.TrimSpace(r.URL.Query().Get("source")),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	if req.Limit > h.cfg.API.MaxPageSize {
		req.Limit = h.cfg.API.MaxPageSize
	}

	reviews, err := h.store.ListReviews(r.Context(), store.ReviewFilter{
		Source: req.Source,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Review listing failed")
		respondError(w, http.StatusInternalServerError, codeDatabase, "failed to list reviews", nil)
		return
	}

	total, err := h.store.CountReviews(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Review count failed")
		respondError(w, http.StatusInternalServerError, codeDatabase, "failed to count reviews", nil)
		return
	}

	respondJSON(w, http.StatusOK, ReviewPage{
		Total:   total,
		Count:   len(reviews),
		Limit:   req.Limit,
		Offset:  req.Offset,
		Reviews: reviews,
	}, start)
}

// ReviewSources handles source distribution queries
//
// @Summary Count reviews per source
// @Description Returns how many reviews each source (app store, play store, twitter, internal) has contributed.
// @Tags Reviews
// @Accept json
// @Produce json
// @Success 200 {object} models.APIResponse{data=map[string]int64} "Review counts keyed by source"
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Router /reviews/sources [get]
func (h *Handler) ReviewSources(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	counts, err := h.store.CountsBySource(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Source count failed")
		respondError(w, http.StatusInternalServerError, codeDatabase, "failed to count sources", nil)
		return
	}

	respondJSON(w, http.StatusOK, counts, start)
}

// ImportReviews handles CSV file uploads
//
// @Summary Import reviews from a CSV file
// @Description Accepts a multipart upload ("file" field) with a header row. Column names are matched case-insensitively against the known aliases (text/review/content, source, rating/score, username/user/author, date/created_at). Rows without usable text are skipped, not fatal.
// @Tags Reviews
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file with a header row"
// @Param source formData string false "Source label for rows without a source column"
// @Success 201 {object} models.APIResponse{data=ImportResult} "Import summary"
// @Failure 400 {object} models.APIResponse "Missing file, oversized upload, or unusable CSV"
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Router /reviews/import [post]
func (h *Handler) ImportReviews(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.API.MaxImportBytes)
	if err := r.ParseMultipartForm(h.cfg.API.MaxImportBytes); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation,
			"upload too large or not multipart form data", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, `multipart field "file" is required`, nil)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logging.Debug().Err(closeErr).Msg("Failed to close upload")
		}
	}()

	source := strings.TrimSpace(r.FormValue("source"))

	result, err := csvimport.Parse(file, source)
	switch {
	case errors.Is(err, csvimport.ErrTooManyRows):
		respondError(w, http.StatusBadRequest, codeValidation, "CSV exceeds the row limit", nil)
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, codeValidation, "CSV could not be parsed", map[string]interface{}{
			"filename": sanitizeLogValue(header.Filename),
		})
		return
	}

	inserted, duplicates, err := h.store.InsertReviews(r.Context(), result.Reviews)
	if err != nil {
		logging.Error().Err(err).Str("filename", sanitizeLogValue(header.Filename)).Msg("CSV import failed")
		respondError(w, http.StatusInternalServerError, codeDatabase, "failed to store imported reviews", nil)
		return
	}

	logging.Info().
		Str("filename", sanitizeLogValue(header.Filename)).
		Int("total_rows", result.Stats.TotalRows).
		Int("inserted", inserted).
		Int("duplicates", duplicates).
		Int("skipped", result.Stats.Skipped).
		Msg("CSV import completed")

	respondJSON(w, http.StatusCreated, ImportResult{
		TotalRows:  result.Stats.TotalRows,
		Inserted:   inserted,
		Duplicates: duplicates,
		Skipped:    result.Stats.Skipped,
	}, start)
}
