// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package breaker implements the circuit breaker guarding remote inference.
//
// The breaker is binary (closed or open, no half-open probe state) and
// accumulates weighted failures: quota exhaustion counts full, everything
// else counts half. The low default threshold is deliberate — remote calls
// are expensive and the client has a local fallback, so degrading after two
// hard failures beats a retry cascade.
//
// An open circuit closes lazily: the first ShouldBypass call after the
// cooldown elapses flips it back. There is no background timer.
package breaker

import (
	"sync"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultThreshold    = 2.0
	DefaultResetTimeout = 10 * time.Minute
	DefaultQuotaWeight  = 1.0
	DefaultOtherWeight  = 0.5
)

// Config holds the breaker tuning knobs.
type Config struct {
	// Name labels metrics and log lines for this breaker instance.
	Name string

	// Threshold is the accumulated failure weight at which the circuit opens.
	Threshold float64

	// ResetTimeout is how long the circuit stays open before a read is
	// allowed to close it again.
	ResetTimeout time.Duration

	// QuotaWeight is added per quota-exhaustion failure.
	QuotaWeight float64

	// OtherWeight is added per transport or formatting failure.
	OtherWeight float64
}

// Breaker is a thread-safe binary circuit breaker with weighted failure
// accumulation. One instance guards one remote dependency and is shared by
// every caller of that dependency.
type Breaker struct {
	mu sync.Mutex

	name         string
	threshold    float64
	resetTimeout time.Duration
	quotaWeight  float64
	otherWeight  float64

	open      bool
	failures  float64 // accumulated weighted failure score
	reopensAt time.Time

	now func() time.Time
}

// New creates a breaker, filling zero config fields with defaults and
// initializing its state metrics to closed.
func New(cfg Config) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "remote-inference"
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultResetTimeout
	}
	if cfg.QuotaWeight <= 0 {
		cfg.QuotaWeight = DefaultQuotaWeight
	}
	if cfg.OtherWeight <= 0 {
		cfg.OtherWeight = DefaultOtherWeight
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0) // 0 = closed
	metrics.CircuitBreakerFailureWeight.WithLabelValues(cfg.Name).Set(0)

	return &Breaker{
		name:         cfg.Name,
		threshold:    cfg.Threshold,
		resetTimeout: cfg.ResetTimeout,
		quotaWeight:  cfg.QuotaWeight,
		otherWeight:  cfg.OtherWeight,
		now:          time.Now,
	}
}

// ShouldBypass reports whether callers must skip the remote dependency.
//
// When the circuit is open and the cooldown has elapsed, this call itself
// closes the circuit and resets the failure score. The transition is
// read-triggered; an open circuit with no readers stays open.
func (b *Breaker) ShouldBypass() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return false
	}

	if b.now().Before(b.reopensAt) {
		return true
	}

	// Cooldown elapsed; close on this read
	b.failures = 0
	metrics.CircuitBreakerFailureWeight.WithLabelValues(b.name).Set(0)
	b.setStateLocked(false)
	return false
}

// RecordSuccess resets the accumulated failure score. It does not close an
// open circuit; only the cooldown does that.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	metrics.CircuitBreakerFailureWeight.WithLabelValues(b.name).Set(0)
}

// RecordFailure adds a weighted failure and opens the circuit for the
// configured reset timeout once the threshold is met.
func (b *Breaker) RecordFailure(quota bool) {
	b.RecordFailureWithCooldown(quota, 0)
}

// RecordFailureWithCooldown is RecordFailure with an explicit cooldown that
// overrides the configured reset timeout if this failure opens the circuit.
// Quota responses carry their own retry delay, which must win over the
// default. A cooldown of zero or less falls back to the configured timeout.
func (b *Breaker) RecordFailureWithCooldown(quota bool, cooldown time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	weight := b.otherWeight
	kind := "other"
	if quota {
		weight = b.quotaWeight
		kind = "quota"
	}

	b.failures += weight
	metrics.CircuitBreakerFailureWeight.WithLabelValues(b.name).Set(b.failures)

	if b.failures < b.threshold {
		return
	}

	if cooldown <= 0 {
		cooldown = b.resetTimeout
	}
	b.reopensAt = b.now().Add(cooldown)

	if !b.open {
		logging.Warn().
			Str("breaker", b.name).
			Str("failure_kind", kind).
			Float64("failure_weight", b.failures).
			Float64("threshold", b.threshold).
			Dur("cooldown", cooldown).
			Msg("[CIRCUIT BREAKER] Opening circuit")
		b.setStateLocked(true)
	}
}

// Open reports whether the circuit is currently open. Unlike ShouldBypass
// it never mutates state, so status introspection has no side effects: a
// circuit whose cooldown has elapsed still reads as open until a caller
// actually consults ShouldBypass.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// setStateLocked flips the circuit and records the transition.
// Must be called with the lock held and only on an actual state change.
func (b *Breaker) setStateLocked(open bool) {
	from := stateString(b.open)
	to := stateString(open)
	b.open = open

	logging.Info().
		Str("breaker", b.name).
		Str("from", from).
		Str("to", to).
		Msg("[CIRCUIT BREAKER] State transition")

	metrics.CircuitBreakerState.WithLabelValues(b.name).Set(stateFloat(open))
	metrics.CircuitBreakerTransitions.WithLabelValues(b.name, from, to).Inc()
}

// stateString converts breaker state to a string for logging and metrics.
func stateString(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}

// stateFloat converts breaker state to a numeric value for metrics.
func stateFloat(open bool) float64 {
	if open {
		return 1
	}
	return 0
}
