// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/validation"
)

// Error codes shared across handlers. They match the catalog documented on
// models.APIError.
const (
	codeValidation     = "VALIDATION_ERROR"
	codeDatabase       = "DATABASE_ERROR"
	codeAuthentication = "AUTHENTICATION_ERROR"
	codeNotFound       = "NOT_FOUND"
	codeRateLimited    = "RATE_LIMIT_EXCEEDED"
	codeAnalysis       = "ANALYSIS_ERROR"
)

// respondJSON writes payload inside the success envelope. start is the
// handler's entry time and feeds query_time_ms in the metadata.
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}, start time.Time) {
	response := models.APIResponse{
		Status: "success",
		Data:   payload,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	}

	body, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal API response")
		http.Error(w, `{"status":"error","error":{"code":"INTERNAL_ERROR","message":"response encoding failed"}}`,
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		logging.Debug().Err(err).Msg("failed to write API response")
	}
}

// respondError writes the error envelope. The message is sent to the
// client, so callers must keep internal detail (driver errors, file
// paths) out of it and log that separately.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	if statusCode >= http.StatusInternalServerError {
		logging.Error().
			Str("code", code).
			Str("message", sanitizeLogValue(message)).
			Msg("API error")
	}

	response := models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	body, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal error response")
		http.Error(w, message, statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		logging.Debug().Err(err).Msg("failed to write error response")
	}
}

// validateRequest runs struct validation and converts the failure into the
// envelope's error shape. Nil means the request passed.
func validateRequest(req interface{}) *validation.APIError {
	if verr := validation.ValidateStruct(req); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}

// decodeJSONBody decodes a request body into dst, rejecting unknown
// fields so typos in payloads surface as 400s instead of silently
// dropped data.
func decodeJSONBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// getIntParam reads an integer query parameter, falling back to def when
// the parameter is absent or not an integer.
func getIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// sanitizeLogValue removes control characters from strings to prevent log
// injection attacks. Newlines, carriage returns and other control
// characters could otherwise forge log entries or corrupt log files.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	if result.Len() > 200 {
		return result.String()[:200] + "..."
	}
	return result.String()
}
