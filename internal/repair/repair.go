// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package repair parses structured output from remote language models.
//
// Model output is not fully controllable: the requested JSON frequently
// arrives wrapped in prose, fenced in markdown, or quoted Python-style.
// Rather than failing the caller, parsing walks an ordered list of repair
// strategies and succeeds on the first one that yields valid JSON of the
// requested shape.
//
// Objects that defeat every strategy are the caller's problem to default;
// arrays have no safe default shape, so exhaustion is a hard ErrMalformed.
package repair

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
)

// ErrMalformed reports that every repair strategy was exhausted without a
// valid parse.
var ErrMalformed = errors.New("malformed structured response")

// Strategy labels recorded in metrics and logs.
const (
	strategyDirect = "direct"
	strategyFenced = "fenced"
	strategySliced = "sliced"
	strategyQuoted = "quoted"
	strategyFailed = "failed"
)

type shape string

const (
	shapeObject shape = "object"
	shapeArray  shape = "array"
)

// normalizer lets parsed types fill absent fields with empty defaults so
// downstream aggregation never needs nil checks.
type normalizer interface {
	EnsureDefaults()
}

// Object parses raw into a value of type T, repairing the text as needed.
// After a successful parse, a T implementing EnsureDefaults is normalized.
//
// When every strategy fails the zero T and an error wrapping ErrMalformed
// are returned; object callers are expected to synthesize their own default
// rather than surface the failure.
func Object[T any](raw string) (T, error) {
	var out T
	strategy, err := parseWithStrategies(raw, shapeObject, &out)
	if err != nil {
		metrics.RepairOutcomes.WithLabelValues(strategyFailed).Inc()
		return out, err
	}

	metrics.RepairOutcomes.WithLabelValues(strategy).Inc()
	logRepaired(strategy, raw)

	if n, ok := any(&out).(normalizer); ok {
		n.EnsureDefaults()
	}
	return out, nil
}

// Array parses raw into a slice of T, repairing the text as needed.
// Exhausting every strategy is a hard failure wrapping ErrMalformed.
func Array[T any](raw string) ([]T, error) {
	var out []T
	strategy, err := parseWithStrategies(raw, shapeArray, &out)
	if err != nil {
		metrics.RepairOutcomes.WithLabelValues(strategyFailed).Inc()
		return nil, err
	}

	metrics.RepairOutcomes.WithLabelValues(strategy).Inc()
	logRepaired(strategy, raw)
	return out, nil
}

// parseWithStrategies tries each candidate in order and stores the first
// valid parse in out. Every attempt unmarshals into a fresh value so a
// partial parse from a failed attempt never leaks into the result.
func parseWithStrategies[T any](raw string, sh shape, out *T) (string, error) {
	for _, c := range candidates(raw, sh) {
		var attempt T
		if err := json.Unmarshal([]byte(c.text), &attempt); err == nil {
			*out = attempt
			return c.strategy, nil
		}
	}
	return "", fmt.Errorf("no parse strategy succeeded for %s shape: %w", sh, ErrMalformed)
}

type candidate struct {
	strategy string
	text     string
}

// candidates builds the ordered repair attempts for raw:
//
//  1. the trimmed text as-is
//  2. each fenced code block, language tag stripped, in order
//  3. only when no fences exist: the slice from the first opening bracket
//     of the requested shape to its last closing bracket
//  4. the whole text with single quotes rewritten to double quotes
func candidates(raw string, sh shape) []candidate {
	list := []candidate{{strategyDirect, strings.TrimSpace(raw)}}

	if blocks := fencedBlocks(raw); len(blocks) > 0 {
		for _, b := range blocks {
			list = append(list, candidate{strategyFenced, strings.TrimSpace(b)})
		}
	} else if sliced, ok := bracketSlice(raw, sh); ok {
		list = append(list, candidate{strategySliced, sliced})
	}

	swapped := strings.TrimSpace(strings.ReplaceAll(raw, "'", `"`))
	list = append(list, candidate{strategyQuoted, swapped})

	return list
}

// fencedBlocks extracts the contents of every ``` fenced block in order.
// A language tag alone on the first line of a block ("json", "JSON") is
// stripped.
func fencedBlocks(raw string) []string {
	var blocks []string

	rest := raw
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			break
		}
		rest = rest[start+3:]

		end := strings.Index(rest, "```")
		if end < 0 {
			break
		}
		block := rest[:end]
		rest = rest[end+3:]

		blocks = append(blocks, stripLanguageTag(block))
	}

	return blocks
}

// stripLanguageTag removes a letters-only first line from a fenced block.
func stripLanguageTag(block string) string {
	nl := strings.IndexByte(block, '\n')
	if nl < 0 {
		return block
	}

	firstLine := strings.TrimSpace(block[:nl])
	if firstLine == "" || !lettersOnly(firstLine) {
		return block
	}
	return block[nl+1:]
}

func lettersOnly(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// bracketSlice cuts raw from the first opening bracket of the requested
// shape to the last closing bracket. Returns false when no such span exists.
func bracketSlice(raw string, sh shape) (string, bool) {
	open, closer := byte('{'), byte('}')
	if sh == shapeArray {
		open, closer = '[', ']'
	}

	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, closer)
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// logRepaired records non-trivial repairs; direct parses are the healthy
// path and stay quiet.
func logRepaired(strategy, raw string) {
	if strategy == strategyDirect {
		return
	}
	logging.Debug().
		Str("strategy", strategy).
		Int("raw_length", len(raw)).
		Msg("Structured response repaired")
}
