// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/store"
)

// AnalyzeSentiment handles single-text sentiment scoring
//
// @Summary Score one text
// @Description Scores a single text. The result comes from the cache, the remote model, or the local lexicon scorer depending on remote health; degraded results are marked as such.
// @Tags Analysis
// @Accept json
// @Produce json
// @Param request body SentimentRequest true "Text to score"
// @Success 200 {object} models.APIResponse{data=models.SentimentResult} "Sentiment score"
// @Failure 400 {object} models.APIResponse "Malformed body or validation failure"
// @Router /analysis/sentiment [post]
func (h *Handler) AnalyzeSentiment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SentimentRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	result := h.inference.ScoreSentiment(r.Context(), req.Text)
	respondJSON(w, http.StatusOK, result, start)
}

// AnalyzeSentimentBatch handles multi-text sentiment scoring
//
// @Summary Score a batch of texts
// @Description Scores up to 500 texts in one call. Cached texts are answered without inference; the rest go through the batch scheduler. Result order matches input order.
// @Tags Analysis
// @Accept json
// @Produce json
// @Param request body SentimentBatchRequest true "Texts to score"
// @Success 200 {object} models.APIResponse{data=[]models.SentimentResult} "One result per input text"
// @Failure 400 {object} models.APIResponse "Malformed body or validation failure"
// @Failure 500 {object} models.APIResponse "Scoring aborted"
// @Router /analysis/sentiment/batch [post]
func (h *Handler) AnalyzeSentimentBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SentimentBatchRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	results, err := h.inference.ScoreSentimentBatch(r.Context(), req.Texts)
	if err != nil {
		logging.Error().Err(err).Int("texts", len(req.Texts)).Msg("Batch sentiment scoring aborted")
		respondError(w, http.StatusInternalServerError, codeAnalysis, "sentiment scoring aborted", nil)
		return
	}

	respondJSON(w, http.StatusOK, results, start)
}

// StartInsights handles asynchronous insight extraction
//
// @Summary Start an insight extraction job
// @Description Starts insight extraction over the given texts, or over stored reviews (optionally filtered by source) when no texts are inline. The call returns immediately with a job ID; progress streams over the websocket and the job endpoint.
// @Tags Analysis
// @Accept json
// @Produce json
// @Param request body InsightsRequest true "Inline texts or a stored-review filter"
// @Success 202 {object} models.APIResponse{data=JobAccepted} "Job accepted"
// @Failure 400 {object} models.APIResponse "Validation failure or no texts to analyze"
// @Failure 500 {object} models.APIResponse "Storage failure while loading texts"
// @Router /analysis/insights [post]
func (h *Handler) StartInsights(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req InsightsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	texts := req.Texts
	if len(texts) == 0 {
		stored, err := h.store.Texts(r.Context(), store.ReviewFilter{
			Source: req.Source,
			Limit:  req.Limit,
		})
		if err != nil {
			logging.Error().Err(err).Msg("Loading review texts for analysis failed")
			respondError(w, http.StatusInternalServerError, codeDatabase, "failed to load review texts", nil)
			return
		}
		texts = stored
	}
	if len(texts) == 0 {
		respondError(w, http.StatusBadRequest, codeValidation, "no texts to analyze", nil)
		return
	}

	job := h.jobs.Create(len(texts))
	go h.runInsightJob(job.ID, texts)

	logging.Info().
		Str("job_id", job.ID).
		Int("texts", len(texts)).
		Msg("Insight job accepted")

	respondJSON(w, http.StatusAccepted, JobAccepted{
		JobID:      job.ID,
		Status:     job.Status,
		TotalTexts: job.TotalTexts,
	}, start)
}

// runInsightJob executes one insight extraction in the background. It is
// detached from the HTTP request; its lifetime is bounded by the context
// given to BindJobContext.
func (h *Handler) runInsightJob(jobID string, texts []string) {
	ctx := logging.ContextWithJobID(h.jobsCtx, jobID)

	h.jobs.markRunning(jobID)
	h.notifyJob(jobID, models.JobRunning, "")

	bundle, err := h.inference.ExtractInsights(ctx, texts)
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(ctx).Warn().Msg("Insight job canceled")
		h.jobs.cancel(jobID)
		h.notifyJob(jobID, models.JobCanceled, "analysis canceled")
		return
	case err != nil:
		logging.Ctx(ctx).Error().Err(err).Msg("Insight job failed")
		h.jobs.fail(jobID, "insight extraction failed")
		h.notifyJob(jobID, models.JobFailed, "insight extraction failed")
		return
	}

	// Snapshot persistence is best effort. The registry still serves the
	// result; only the history endpoint misses this run.
	if err := h.store.SaveSnapshot(ctx, jobID, bundle); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Insight snapshot not persisted")
	}

	h.jobs.complete(jobID, bundle)
	h.notifyJob(jobID, models.JobCompleted, "")
}

// notifyJob pushes a lifecycle transition to websocket subscribers. Batch
// progress does not pass through here; the hub reads it from the progress
// bus directly.
func (h *Handler) notifyJob(jobID string, status models.JobStatus, detail string) {
	if h.hub == nil {
		return
	}
	h.hub.NotifyJobStatus(jobID, string(status), detail)
}

// GetJob handles job state queries
//
// @Summary Get an insight job
// @Description Returns the current state of an insight job, including batch progress and, once completed, the result bundle.
// @Tags Analysis
// @Accept json
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} models.APIResponse{data=models.AnalysisJob} "Job state"
// @Failure 404 {object} models.APIResponse "Unknown or evicted job"
// @Router /analysis/jobs/{jobID} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	jobID := chi.URLParam(r, "jobID")
	job, ok := h.jobs.Get(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, codeNotFound, "job not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, job, start)
}

// AnalysisStatus handles inference health queries
//
// @Summary Get inference client status
// @Description Reports whether the remote model is configured and reachable: circuit breaker state, rate-limit cooldown, cache and call counters.
// @Tags Analysis
// @Accept json
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.ClientStatus} "Inference client status"
// @Router /analysis/status [get]
func (h *Handler) AnalysisStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondJSON(w, http.StatusOK, h.inference.Status(), start)
}

// LatestInsights handles snapshot retrieval
//
// @Summary Get the latest insight snapshot
// @Description Returns the most recently persisted insight bundle, regardless of which job produced it.
// @Tags Analysis
// @Accept json
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.InsightBundle} "Latest insight bundle"
// @Failure 404 {object} models.APIResponse "No snapshot persisted yet"
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Router /analysis/insights/latest [get]
func (h *Handler) LatestInsights(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	bundle, err := h.store.LatestSnapshot(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Snapshot lookup failed")
		respondError(w, http.StatusInternalServerError, codeDatabase, "failed to load snapshot", nil)
		return
	}
	if bundle == nil {
		respondError(w, http.StatusNotFound, codeNotFound, "no insight snapshot available", nil)
		return
	}

	respondJSON(w, http.StatusOK, bundle, start)
}

// ListSnapshots handles snapshot history queries
//
// @Summary List insight snapshots
// @Description Lists persisted insight snapshots newest-first, without their bundles.
// @Tags Analysis
// @Accept json
// @Produce json
// @Param limit query int false "Maximum snapshots to return (default 20)"
// @Success 200 {object} models.APIResponse{data=[]store.SnapshotSummary} "Snapshot summaries"
// @Failure 500 {object} models.APIResponse "Storage failure"
// @Router /analysis/snapshots [get]
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := getIntParam(r, "limit", 20)
	snapshots, err := h.store.ListSnapshots(r.Context(), limit)
	if err != nil {
		logging.Error().Err(err).Msg("Snapshot listing failed")
		respondError(w, http.StatusInternalServerError, codeDatabase, "failed to list snapshots", nil)
		return
	}

	respondJSON(w, http.StatusOK, snapshots, start)
}
