// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/auth"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/config"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/inference"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/models"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/progress"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/store"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/throttle"
)

// testStoreSemaphore serializes live DuckDB connections across tests, as
// concurrent CGO calls can hang under CI resource pressure.
var testStoreSemaphore = make(chan struct{}, 1)

// testEnv bundles everything a handler test needs.
type testEnv struct {
	handler *Handler
	store   *store.Store
	jobs    *JobRegistry
	bus     *progress.Bus
}

// testConfig returns a config with auth disabled and generous limits, so
// handler tests exercise handler logic, not middleware.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        8080,
			Environment: "development",
		},
		Database: config.DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "1GB",
		},
		API: config.APIConfig{
			DefaultPageSize: 50,
			MaxPageSize:     500,
			MaxImportBytes:  1 << 20,
		},
		Security: config.SecurityConfig{
			AuthMode:          "none",
			RateLimitReqs:     1000,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
	}
}

// newTestEnv builds a handler over an in-memory store with a local-only
// inference client and no websocket hub. The progress bus is live so
// insight jobs can publish batch events.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return buildTestEnv(t, nil)
}

// newTestEnvWithRemote is newTestEnv with a remote endpoint wired into the
// inference client, for tests driving the remote batch path.
func newTestEnvWithRemote(t *testing.T, remote inference.RemoteEndpoint) *testEnv {
	t.Helper()
	return buildTestEnv(t, remote)
}

func buildTestEnv(t *testing.T, remote inference.RemoteEndpoint) *testEnv {
	t.Helper()

	testStoreSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testStoreSemaphore
	})

	cfg := testConfig()

	st, err := store.New(&cfg.Database)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("Failed to close test store: %v", err)
		}
	})

	bus := progress.NewBus()
	t.Cleanup(func() {
		if err := bus.Close(); err != nil {
			t.Errorf("Failed to close progress bus: %v", err)
		}
	})

	publisher := progress.NewPublisher(bus)
	t.Cleanup(publisher.Close)

	client := inference.New(inference.Config{
		Remote:                remote,
		Progress:              publisher,
		InsightBatchThreshold: 4,
		Throttle: throttle.Config{
			MinInterval: time.Millisecond,
			Floor:       time.Millisecond,
			Ceil:        5 * time.Millisecond,
		},
	})

	authManager, err := auth.New(&cfg.Security, false)
	if err != nil {
		t.Fatalf("Failed to create auth manager: %v", err)
	}

	jobs := NewJobRegistry(bus)
	handler := NewHandler(cfg, st, client, nil, authManager, jobs)

	return &testEnv{
		handler: handler,
		store:   st,
		jobs:    jobs,
		bus:     bus,
	}
}

// decodeEnvelope unmarshals a response body into the envelope, with Data
// left as raw JSON for the caller to decode into the right shape.
func decodeEnvelope(t *testing.T, body []byte) (models.APIResponse, json.RawMessage) {
	t.Helper()

	var envelope struct {
		Status   string           `json:"status"`
		Data     json.RawMessage  `json:"data"`
		Metadata models.Metadata  `json:"metadata"`
		Error    *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("Failed to decode envelope: %v\nbody: %s", err, body)
	}

	return models.APIResponse{
		Status:   envelope.Status,
		Metadata: envelope.Metadata,
		Error:    envelope.Error,
	}, envelope.Data
}

// decodeData decodes the data portion of a success envelope into dst.
func decodeData(t *testing.T, body []byte, dst interface{}) models.APIResponse {
	t.Helper()

	envelope, raw := decodeEnvelope(t, body)
	if envelope.Status != "success" {
		t.Fatalf("Envelope status = %q, want success (error: %+v)", envelope.Status, envelope.Error)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("Failed to decode envelope data: %v\ndata: %s", err, raw)
	}
	return envelope
}

// requireErrorCode asserts an error envelope with the given code.
func requireErrorCode(t *testing.T, body []byte, wantCode string) {
	t.Helper()

	envelope, _ := decodeEnvelope(t, body)
	if envelope.Status != "error" {
		t.Fatalf("Envelope status = %q, want error", envelope.Status)
	}
	if envelope.Error == nil {
		t.Fatal("Error envelope has no error object")
	}
	if envelope.Error.Code != wantCode {
		t.Errorf("Error code = %q, want %q", envelope.Error.Code, wantCode)
	}
}

// waitForJob polls the registry until the job reaches a terminal state.
func waitForJob(t *testing.T, jobs *JobRegistry, jobID string, timeout time.Duration) models.AnalysisJob {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		job, ok := jobs.Get(jobID)
		if !ok {
			t.Fatalf("Job %s disappeared from registry", jobID)
		}
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Job %s did not finish within %v", jobID, timeout)
	return models.AnalysisJob{}
}

// seedReviews inserts n reviews with the given source.
func seedReviews(t *testing.T, st *store.Store, source string, texts ...string) {
	t.Helper()

	reviews := make([]models.Review, 0, len(texts))
	for _, text := range texts {
		reviews = append(reviews, models.Review{Source: source, Text: text})
	}
	if _, _, err := st.InsertReviews(context.Background(), reviews); err != nil {
		t.Fatalf("Failed to seed reviews: %v", err)
	}
}

func TestNewHandler(t *testing.T) {
	env := newTestEnv(t)

	if env.handler == nil {
		t.Fatal("NewHandler returned nil")
	}
	if env.handler.perf == nil {
		t.Error("Expected performance monitor to be initialized")
	}
	if env.handler.startTime.IsZero() {
		t.Error("Expected start time to be set")
	}
	if env.handler.jobsCtx == nil {
		t.Error("Expected a default job context")
	}
}

func TestBindJobContext(t *testing.T) {
	env := newTestEnv(t)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "bound")
	env.handler.BindJobContext(ctx)

	if env.handler.jobsCtx.Value(key{}) != "bound" {
		t.Error("BindJobContext did not replace the job context")
	}
}
