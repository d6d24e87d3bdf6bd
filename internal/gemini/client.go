// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package gemini implements the remote inference endpoint against the
// Gemini generateContent API.
//
// Key features:
// - Context-aware HTTP calls with a bounded per-request timeout
// - API key authentication via header or query parameter
// - Quota classification with retry-delay extraction from RetryInfo
//   details and the Retry-After header
// - Candidate text extraction across multi-part responses
//
// The client wraps every failure in one of the inference package's
// failure classes so the calling layer can route degradation without
// provider-specific knowledge.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/inference"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
)

const (
	// DefaultBaseURL is the public Gemini API host.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel balances latency and quality for feedback analysis.
	DefaultModel = "gemini-2.5-flash"

	// DefaultTimeout bounds a single generateContent call.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is read for
	// classification.
	maxErrorBody = 4 << 10
)

// Config controls the endpoint client.
type Config struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// Model selects the generation model. Defaults to DefaultModel.
	Model string

	// BaseURL overrides the API host, used by tests and proxies.
	// Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout bounds each HTTP call. Defaults to DefaultTimeout.
	Timeout time.Duration

	// KeyInQuery sends the API key as the "key" query parameter instead
	// of the x-goog-api-key header.
	KeyInQuery bool
}

// Client calls the generateContent endpoint. Safe for concurrent use.
type Client struct {
	cfg   Config
	httpc *http.Client
}

// New builds a Client from cfg, applying defaults for unset fields.
// Returns inference.ErrNotConfigured when no API key is present.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, inference.ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Model returns the configured model name after defaulting.
func (c *Client) Model() string { return c.cfg.Model }

// Wire types for the generateContent request and response. Only the
// fields this client reads or writes are declared.
type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// apiError mirrors the google.rpc error envelope returned on failures.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

// Generate sends prompt to the generateContent endpoint and returns the
// concatenated text of the first candidate.
//
// Failures are classified: quota rejections return *inference.QuotaError,
// everything else wraps inference.ErrRemoteUnavailable. A caller-cancelled
// context propagates context.Canceled unwrapped.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []generateContent{{Role: "user", Parts: []generatePart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.KeyInQuery {
		q := req.URL.Query()
		q.Set("key", c.cfg.APIKey)
		req.URL.RawQuery = q.Encode()
	} else {
		req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", context.Canceled
		}
		return "", fmt.Errorf("%w: %v", inference.ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", c.classifyFailure(resp)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", inference.ErrRemoteUnavailable, err)
	}
	text := firstCandidateText(decoded)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", inference.ErrRemoteUnavailable)
	}

	logging.Debug().
		Str("component", "gemini").
		Str("model", c.cfg.Model).
		Dur("duration", time.Since(start)).
		Int("response_chars", len(text)).
		Msg("Remote generation completed")
	return text, nil
}

// classifyFailure maps a non-2xx response to a failure class. Quota
// rejections carry the retry delay from RetryInfo details or the
// Retry-After header when present.
func (c *Client) classifyFailure(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var detail apiError
	_ = json.Unmarshal(raw, &detail)
	message := detail.Error.Message
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}

	if quotaIndicated(resp.StatusCode, detail.Error.Status, message) {
		delay := retryDelay(detail, resp.Header.Get("Retry-After"))
		logging.Warn().
			Str("component", "gemini").
			Str("model", c.cfg.Model).
			Int("status", resp.StatusCode).
			Dur("retry_after", delay).
			Msg("Quota rejection from remote endpoint")
		return &inference.QuotaError{RetryAfter: delay}
	}

	return fmt.Errorf("%w: status %d: %s",
		inference.ErrRemoteUnavailable, resp.StatusCode, truncate(message, 200))
}

// quotaIndicated reports whether the response is a rate-limit or quota
// rejection. HTTP 429 and RESOURCE_EXHAUSTED always qualify; other
// statuses qualify only on quota wording in the message.
func quotaIndicated(status int, apiStatus, message string) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	if apiStatus == "RESOURCE_EXHAUSTED" {
		return true
	}
	lower := strings.ToLower(message)
	return strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit")
}

// retryDelay extracts the suggested delay from RetryInfo details,
// falling back to a Retry-After seconds header. Zero when absent.
func retryDelay(detail apiError, retryAfterHeader string) time.Duration {
	for _, d := range detail.Error.Details {
		if !strings.HasSuffix(d.Type, "RetryInfo") || d.RetryDelay == "" {
			continue
		}
		if delay, err := time.ParseDuration(d.RetryDelay); err == nil && delay > 0 {
			return delay
		}
	}
	if retryAfterHeader != "" {
		if secs, err := strconv.Atoi(retryAfterHeader); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

// firstCandidateText joins all parts of the first candidate. Empty when
// the response carries no candidates or no text.
func firstCandidateText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
