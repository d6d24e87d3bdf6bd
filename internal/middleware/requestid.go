// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
)

type contextKey string

// RequestIDKey is the request context key holding the request ID.
const RequestIDKey contextKey = "request_id"

// RequestID assigns each request a unique ID, exposed in the X-Request-ID
// response header and stored in the request context. An ID supplied by an
// upstream proxy is preserved. The ID is also pushed into the logging
// context so logging.Ctx tags every line of the request with it.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.ContextWithRequestID(ctx, requestID)

		next(w, r.WithContext(ctx))
	}
}

// GetRequestID extracts the request ID from context, returning "" when
// the middleware did not run.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
