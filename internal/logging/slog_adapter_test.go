// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer

	handler := NewSlogHandlerWithLogger(zerolog.New(&buf))
	logger := slog.New(handler)

	tests := []struct {
		name    string
		logFunc func()
		level   string
	}{
		{"Debug", func() { logger.Debug("debug msg") }, `"level":"debug"`},
		{"Info", func() { logger.Info("info msg") }, `"level":"info"`},
		{"Warn", func() { logger.Warn("warn msg") }, `"level":"warn"`},
		{"Error", func() { logger.Error("error msg") }, `"level":"error"`},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.logFunc()
		if !strings.Contains(buf.String(), tt.level) {
			t.Errorf("%s: expected %s in output: %s", tt.name, tt.level, buf.String())
		}
	}
}

func TestSlogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer

	handler := NewSlogHandlerWithLogger(zerolog.New(&buf))
	logger := slog.New(handler)

	logger.Info("with attrs",
		slog.String("name", "scheduler"),
		slog.Int("batches", 7),
		slog.Bool("degraded", true),
	)

	output := buf.String()
	if !strings.Contains(output, `"name":"scheduler"`) {
		t.Errorf("expected string attr in output: %s", output)
	}
	if !strings.Contains(output, `"batches":7`) {
		t.Errorf("expected int attr in output: %s", output)
	}
	if !strings.Contains(output, `"degraded":true`) {
		t.Errorf("expected bool attr in output: %s", output)
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer

	handler := NewSlogHandlerWithLogger(zerolog.New(&buf))
	logger := slog.New(handler).With(slog.String("service", "api"))

	logger.Info("child logger")

	if !strings.Contains(buf.String(), `"service":"api"`) {
		t.Errorf("expected pre-configured attr in output: %s", buf.String())
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer

	handler := NewSlogHandlerWithLogger(zerolog.New(&buf))
	logger := slog.New(handler).WithGroup("supervisor")

	logger.Info("grouped", slog.String("state", "running"))

	if !strings.Contains(buf.String(), `"supervisor.state":"running"`) {
		t.Errorf("expected group-prefixed attr in output: %s", buf.String())
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	handler := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))

	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer

	SetLogger(zerolog.New(&buf))

	logger := NewSlogLogger()
	logger.Info("through global")

	if !strings.Contains(buf.String(), "through global") {
		t.Errorf("expected message in output: %s", buf.String())
	}
}
