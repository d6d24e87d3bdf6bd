// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package throttle paces remote inference calls.
//
// Two constraints gate every call: a per-minute request ceiling accounted in
// a rolling window, and an adaptive minimum spacing between consecutive
// calls. The spacing tightens after failures and relaxes during healthy
// operation, producing back-pressure without configuration changes.
package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultRequestsPerWindow = 60
	DefaultWindow            = time.Minute
	DefaultMinInterval       = 200 * time.Millisecond
	DefaultFloor             = 100 * time.Millisecond
	DefaultCeil              = time.Second
)

const (
	// tuneAfterCalls is how many calls must complete before adaptive tuning
	// starts reacting; early calls carry too little signal.
	tuneAfterCalls = 10

	// backoffFactor widens the minimum interval after a failed call.
	backoffFactor = 1.5

	// recoveryFactor narrows the interval after a successful call.
	recoveryFactor = 0.9
)

// Config holds the throttle tuning knobs.
type Config struct {
	// RequestsPerWindow is the request ceiling per window.
	RequestsPerWindow int

	// Window is the accounting window length.
	Window time.Duration

	// MinInterval is the starting minimum spacing between calls.
	MinInterval time.Duration

	// Floor and Ceil clamp the adaptive interval.
	Floor time.Duration
	Ceil  time.Duration
}

// Throttle is a thread-safe pacing gate for one remote dependency. Wait is
// the only blocking operation; it sleeps without holding the throttle lock.
type Throttle struct {
	mu sync.Mutex

	perWindow int
	window    time.Duration
	floor     time.Duration
	ceil      time.Duration

	windowStart time.Time
	requests    int

	minInterval time.Duration
	totalCalls  int64

	// limiter enforces minimum spacing; it sleeps outside our lock and
	// handles context cancellation on its own.
	limiter *rate.Limiter
}

// New creates a throttle, filling zero config fields with defaults.
func New(cfg Config) *Throttle {
	if cfg.RequestsPerWindow <= 0 {
		cfg.RequestsPerWindow = DefaultRequestsPerWindow
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Floor <= 0 {
		cfg.Floor = DefaultFloor
	}
	if cfg.Ceil <= 0 {
		cfg.Ceil = DefaultCeil
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.MinInterval < cfg.Floor {
		cfg.MinInterval = cfg.Floor
	}
	if cfg.MinInterval > cfg.Ceil {
		cfg.MinInterval = cfg.Ceil
	}

	metrics.ThrottleMinInterval.Set(cfg.MinInterval.Seconds())
	metrics.ThrottleWindowRequests.Set(0)

	return &Throttle{
		perWindow:   cfg.RequestsPerWindow,
		window:      cfg.Window,
		floor:       cfg.Floor,
		ceil:        cfg.Ceil,
		windowStart: time.Now(),
		minInterval: cfg.MinInterval,
		limiter:     rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
	}
}

// Wait blocks until the caller may issue one remote request, or until ctx is
// canceled. A caller that would exceed the window ceiling sleeps out the
// remainder of the window; every caller then waits for the adaptive minimum
// spacing. All sleeping happens with the throttle lock released.
func (t *Throttle) Wait(ctx context.Context) error {
	start := time.Now()

	for {
		t.mu.Lock()
		now := time.Now()

		if now.Sub(t.windowStart) >= t.window {
			t.windowStart = now
			t.requests = 0
		}

		if t.requests < t.perWindow {
			t.requests++
			metrics.ThrottleWindowRequests.Set(float64(t.requests))
			t.mu.Unlock()
			break
		}

		remaining := t.window - now.Sub(t.windowStart)
		t.mu.Unlock()

		logging.Debug().
			Dur("sleep", remaining).
			Int("window_requests", t.perWindow).
			Msg("Throttle window ceiling reached, sleeping to rollover")

		if err := sleepCtx(ctx, remaining); err != nil {
			return err
		}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	metrics.ThrottleWaitDuration.Observe(time.Since(start).Seconds())
	return nil
}

// Tune adjusts the minimum spacing based on the outcome of the call that
// just completed. Failures widen the interval by half, successes narrow it
// by a tenth, clamped to [floor, ceil]. Tuning only kicks in once more than
// tuneAfterCalls calls have been recorded.
func (t *Throttle) Tune(succeeded bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalCalls++
	if t.totalCalls <= tuneAfterCalls {
		return
	}

	interval := t.minInterval
	if !succeeded {
		interval = time.Duration(float64(interval) * backoffFactor)
	} else if interval > t.floor {
		interval = time.Duration(float64(interval) * recoveryFactor)
	}

	if interval < t.floor {
		interval = t.floor
	}
	if interval > t.ceil {
		interval = t.ceil
	}

	if interval == t.minInterval {
		return
	}

	logging.Debug().
		Bool("succeeded", succeeded).
		Dur("from", t.minInterval).
		Dur("to", interval).
		Msg("Throttle interval retuned")

	t.minInterval = interval
	t.limiter.SetLimit(rate.Every(interval))
	metrics.ThrottleMinInterval.Set(interval.Seconds())
}

// MinInterval returns the current adaptive minimum spacing.
func (t *Throttle) MinInterval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.minInterval
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
