// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import "time"

// Request bodies and query structs validated with go-playground/validator
// tags before any handler logic runs. Tags follow validator v10 syntax:
// required, min/max (length or value), oneof, dive for slice elements.

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=128"`
	Password string `json:"password" validate:"required,min=1,max=512"`
}

// ReviewInput is one review in a JSON ingest payload. All fields except
// the text are optional; missing values are filled by normalization on
// insert.
type ReviewInput struct {
	ID        string    `json:"id,omitempty" validate:"omitempty,max=64"`
	Source    string    `json:"source,omitempty" validate:"omitempty,max=64"`
	Text      string    `json:"text" validate:"required,min=1,max=10000"`
	Rating    float64   `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	Username  string    `json:"username,omitempty" validate:"omitempty,max=128"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// CreateReviewsRequest is the body of POST /api/v1/reviews.
type CreateReviewsRequest struct {
	Reviews []ReviewInput `json:"reviews" validate:"required,min=1,max=1000,dive"`
}

// ListReviewsRequest holds the validated query parameters of
// GET /api/v1/reviews. Limit is clamped to the configured page maximum
// after validation.
type ListReviewsRequest struct {
	Limit  int    `validate:"min=1,max=500"`
	Offset int    `validate:"min=0,max=1000000"`
	Source string `validate:"omitempty,max=64"`
}

// SentimentRequest is the body of POST /api/v1/analysis/sentiment.
type SentimentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=10000"`
}

// SentimentBatchRequest is the body of POST /api/v1/analysis/sentiment/batch.
type SentimentBatchRequest struct {
	Texts []string `json:"texts" validate:"required,min=1,max=500,dive,required,max=10000"`
}

// InsightsRequest is the body of POST /api/v1/analysis/insights. Texts
// may be given inline; when absent the job reads stored reviews filtered
// by Source, capped at Limit.
type InsightsRequest struct {
	Texts  []string `json:"texts,omitempty" validate:"omitempty,max=10000,dive,required,max=10000"`
	Source string   `json:"source,omitempty" validate:"omitempty,max=64"`
	Limit  int      `json:"limit,omitempty" validate:"omitempty,min=1,max=10000"`
}
