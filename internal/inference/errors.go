// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package inference

import (
	"errors"
	"fmt"
	"time"
)

// Failure classes for remote inference calls. Endpoint implementations wrap
// these so the client can classify without knowing the provider; the client
// itself never lets them escape to callers of Analyze operations.
var (
	// ErrRemoteUnavailable marks transport failures, timeouts, and
	// non-quota HTTP errors from the remote endpoint.
	ErrRemoteUnavailable = errors.New("remote inference unavailable")

	// ErrQuotaExceeded marks rate-limit and quota rejections (HTTP 429 or
	// quota-worded API errors). Counted at full weight by the circuit
	// breaker and starts the rate-limit cooldown.
	ErrQuotaExceeded = errors.New("remote inference quota exceeded")

	// ErrNotConfigured indicates the client was asked to reach the remote
	// endpoint without one being configured.
	ErrNotConfigured = errors.New("remote inference not configured")
)

// QuotaError is a quota rejection carrying the retry delay the API suggested.
// RetryAfter is zero when the response gave no hint.
type QuotaError struct {
	RetryAfter time.Duration
}

func (e *QuotaError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("remote inference quota exceeded, retry after %s", e.RetryAfter)
	}
	return "remote inference quota exceeded"
}

// Is reports true for ErrQuotaExceeded so callers can match the class with
// errors.Is without caring about the retry hint.
func (e *QuotaError) Is(target error) bool { return target == ErrQuotaExceeded }

// RetryDelay extracts the suggested retry delay from a quota error chain.
// Returns zero when err is not quota-classified or carries no hint.
func RetryDelay(err error) time.Duration {
	var qe *QuotaError
	if errors.As(err, &qe) {
		return qe.RetryAfter
	}
	return 0
}
