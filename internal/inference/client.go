// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package inference

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/breaker"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/cache"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/progress"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/sentiment"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/throttle"
)

// Cache namespaces, one per operation family so eviction pressure in one
// cannot flush the others.
const (
	nsSentiment = "sentiment"
	nsInsight   = "insights"
	nsSummary   = "summary"
)

// Operation names used in metrics and cache keys.
const (
	opSentiment      = "sentiment"
	opSentimentBatch = "sentiment_batch"
	opInsights       = "insights"
	opSummaryCombine = "summary_combine"
)

// Execution path and result labels for metrics.
const (
	pathRemote = "remote"
	pathLocal  = "local"
	pathCache  = "cache"

	resultSuccess  = "success"
	resultDegraded = "degraded"
	resultFailure  = "failure"
)

// Degradation reasons. The exported ones appear in API responses as
// InsightBundle.DegradedReason.
const (
	ReasonUnconfigured = "remote_unconfigured"
	ReasonCircuitOpen  = "circuit_open"
	ReasonRateLimited  = "rate_limited"
	ReasonRemoteError  = "remote_error"
	ReasonMalformed    = "malformed_response"

	// reasonPolicy marks a local route chosen by configuration while the
	// remote path is healthy. Not a degradation.
	reasonPolicy = "policy"
)

const (
	// DefaultInsightBatchThreshold is the workload size above which insight
	// extraction switches to batched remote calls.
	DefaultInsightBatchThreshold = 100

	// defaultQuotaCooldown pauses the remote path after a quota rejection
	// that carried no retry hint.
	defaultQuotaCooldown = time.Minute

	// synthesizedSummaryLen caps the raw-text prefix used as the summary
	// of a synthesized bundle.
	synthesizedSummaryLen = 300

	// combinedSummaryMaxLen caps the concatenation fallback when batch
	// summaries cannot be combined remotely.
	combinedSummaryMaxLen = 1000
)

// RemoteEndpoint is a remote text-generation capability. Implementations
// classify failures with this package's error types: quota rejections as
// *QuotaError, everything else wrapping ErrRemoteUnavailable. A
// caller-cancelled context must propagate context.Canceled unwrapped so it
// is not counted against the remote's health.
type RemoteEndpoint interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LocalScorer scores sentiment without the network. It never fails; texts
// without signal produce a neutral default.
type LocalScorer interface {
	Score(text string) models.SentimentResult
}

// LocalAnalyzer extends LocalScorer with classification and whole-workload
// analysis, serving as the degraded replacement for remote insights.
type LocalAnalyzer interface {
	LocalScorer
	Classify(text string) string
	Analyze(texts []string) models.InsightBundle
}

// Config assembles a Client. The zero value is usable and produces a
// local-only client with default tuning.
type Config struct {
	// Remote is the generation endpoint. Nil disables the remote path;
	// every operation is then served locally without error.
	Remote RemoteEndpoint

	// Local is the fallback analyzer. Nil selects the built-in lexicon
	// analyzer.
	Local LocalAnalyzer

	// Progress receives one event per processed batch. Nil discards.
	Progress progress.Sink

	// Breaker and Throttle tune the resilience state; zero fields take
	// their package defaults.
	Breaker  breaker.Config
	Throttle throttle.Config

	// CacheCapacity bounds each cache namespace. Zero selects the cache
	// default.
	CacheCapacity int

	// SentimentTTL and InsightTTL bound result reuse. Zero keeps entries
	// until evicted.
	SentimentTTL time.Duration
	InsightTTL   time.Duration

	// RemoteSentiment routes batch sentiment scoring through the remote
	// endpoint when it is healthy. Single-text scoring stays local.
	RemoteSentiment bool

	// InsightBatchThreshold is the workload size above which insight
	// extraction is split into batches. Zero selects the default.
	InsightBatchThreshold int

	// Workers bounds local scoring fan-out. Zero or anything above the
	// CPU count selects the CPU count.
	Workers int
}

// Client is the inference façade. One instance owns the circuit, throttle,
// and cache for one remote dependency and is shared by every caller.
type Client struct {
	remote   RemoteEndpoint
	local    LocalAnalyzer
	sink     progress.Sink
	cache    *cache.Cache
	breaker  *breaker.Breaker
	throttle *throttle.Throttle

	remoteSentiment  bool
	insightThreshold int
	workers          int
	sentimentTTL     time.Duration
	insightTTL       time.Duration

	mu              sync.Mutex
	rateLimitedTill time.Time
	remoteCalls     uint64
	localCalls      uint64
	latencyTotal    time.Duration

	now func() time.Time
}

// New builds a Client from cfg. A nil cfg.Remote is not an error: the
// client then serves everything from the local path, annotated degraded.
func New(cfg Config) *Client {
	local := cfg.Local
	if local == nil {
		local = sentiment.NewAnalyzer()
	}
	sink := cfg.Progress
	if sink == nil {
		sink = progress.Discard{}
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = "remote-inference"
	}
	threshold := cfg.InsightBatchThreshold
	if threshold <= 0 {
		threshold = DefaultInsightBatchThreshold
	}
	workers := cfg.Workers
	if workers <= 0 || workers > runtime.NumCPU() {
		workers = runtime.NumCPU()
	}

	return &Client{
		remote:           cfg.Remote,
		local:            local,
		sink:             sink,
		cache:            cache.New(cfg.CacheCapacity),
		breaker:          breaker.New(cfg.Breaker),
		throttle:         throttle.New(cfg.Throttle),
		remoteSentiment:  cfg.RemoteSentiment,
		insightThreshold: threshold,
		workers:          workers,
		sentimentTTL:     cfg.SentimentTTL,
		insightTTL:       cfg.InsightTTL,
		now:              time.Now,
	}
}

// decision is the outcome of the routing check run before every
// remote-eligible call.
type decision struct {
	useRemote bool
	reason    string
}

// degraded reports whether results served under this decision carry the
// degraded annotation. A local route chosen by policy is not degraded; a
// missing or unhealthy remote is.
func (d decision) degraded() bool {
	return d.reason != "" && d.reason != reasonPolicy
}

// decide applies the degradation priority order: unconfigured, then open
// circuit, then rate-limit cooldown, then the per-operation policy.
func (c *Client) decide(wantRemote bool) decision {
	if c.remote == nil {
		return decision{reason: ReasonUnconfigured}
	}
	if c.breaker.ShouldBypass() {
		return decision{reason: ReasonCircuitOpen}
	}
	if c.rateLimited() {
		return decision{reason: ReasonRateLimited}
	}
	if !wantRemote {
		return decision{reason: reasonPolicy}
	}
	return decision{useRemote: true}
}

func (c *Client) rateLimited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.rateLimitedTill)
}

// generate performs one throttled remote call. Transport and quota
// failures are folded into circuit and throttle state here; the caller
// finalizes the outcome of a successful call with recordParsed once the
// response has been through repair. A cancelled context is returned
// without touching any health state.
func (c *Client) generate(ctx context.Context, op, prompt string) (string, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return "", err
	}

	start := c.now()
	raw, err := c.remote.Generate(ctx, prompt)
	elapsed := c.now().Sub(start)

	if errors.Is(err, context.Canceled) {
		return "", err
	}

	c.mu.Lock()
	c.remoteCalls++
	c.latencyTotal += elapsed
	c.mu.Unlock()
	metrics.RemoteCallDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	if err != nil {
		c.recordRemoteFailure(op, err)
		return "", err
	}
	return raw, nil
}

// recordRemoteFailure folds one failed call into breaker and throttle
// state. Quota rejections carry full weight, start the rate-limit
// cooldown, and override the breaker cooldown when the API suggested a
// retry delay.
func (c *Client) recordRemoteFailure(op string, err error) {
	c.throttle.Tune(false)

	if errors.Is(err, ErrQuotaExceeded) {
		cooldown := RetryDelay(err)
		if cooldown > 0 {
			c.breaker.RecordFailureWithCooldown(true, cooldown)
		} else {
			cooldown = defaultQuotaCooldown
			c.breaker.RecordFailure(true)
		}

		c.mu.Lock()
		c.rateLimitedTill = c.now().Add(cooldown)
		c.mu.Unlock()

		metrics.RemoteFailures.WithLabelValues("quota").Inc()
		logging.Warn().
			Str("component", "inference").
			Str("operation", op).
			Dur("cooldown", cooldown).
			Msg("Remote quota exhausted, pausing remote path")
		return
	}

	c.breaker.RecordFailure(false)
	metrics.RemoteFailures.WithLabelValues("transport").Inc()
	logging.Err(err).
		Str("component", "inference").
		Str("operation", op).
		Msg("Remote call failed")
}

// recordParsed finalizes a remote call after repair: a clean parse counts
// as success, an unrepairable response as a formatting failure at reduced
// weight.
func (c *Client) recordParsed(op string, parseErr error) {
	if parseErr == nil {
		c.breaker.RecordSuccess()
		c.throttle.Tune(true)
		return
	}

	c.breaker.RecordFailure(false)
	c.throttle.Tune(false)
	metrics.RemoteFailures.WithLabelValues("malformed").Inc()
	logging.Warn().
		Str("component", "inference").
		Str("operation", op).
		Msg("Remote response unrepairable")
}

func (c *Client) countLocal() {
	c.mu.Lock()
	c.localCalls++
	c.mu.Unlock()
}

// Status returns a read-only snapshot for dashboards and health checks.
// It never mutates circuit, throttle, or cache state.
func (c *Client) Status() models.ClientStatus {
	stats := c.cache.Stats()

	c.mu.Lock()
	remoteCalls := c.remoteCalls
	localCalls := c.localCalls
	var avgMS float64
	if remoteCalls > 0 {
		avgMS = float64(c.latencyTotal) / float64(time.Millisecond) / float64(remoteCalls)
	}
	rateLimited := c.now().Before(c.rateLimitedTill)
	c.mu.Unlock()

	return models.ClientStatus{
		RemoteConfigured:   c.remote != nil,
		CircuitOpen:        c.breaker.Open(),
		RateLimited:        rateLimited,
		CacheHits:          uint64(stats.Hits),
		CacheMisses:        uint64(stats.Misses),
		CacheEntries:       stats.Entries,
		RemoteCalls:        remoteCalls,
		LocalCalls:         localCalls,
		AvgRemoteLatencyMS: avgMS,
	}
}

func resultLabel(d decision) string {
	if d.degraded() {
		return resultDegraded
	}
	return resultSuccess
}
