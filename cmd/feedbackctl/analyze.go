// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/gemini"
	csvimport "github.com/GreenHacker420/propacity-proj-sub000/internal/import"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/inference"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/progress"
)

// batchProgress prints per-batch progress to stderr so stdout stays
// valid JSON.
type batchProgress struct{}

func (batchProgress) Notify(ev progress.Event) {
	fmt.Fprintf(os.Stderr, "batch %d/%d: %d/%d texts (eta %.0fs)\n",
		ev.BatchIndex, ev.TotalBatches, ev.ItemsProcessed, ev.TotalItems, ev.ETASeconds)
}

func newAnalyzeCmd() *cobra.Command {
	var (
		apiKey  string
		model   string
		source  string
		timeout time.Duration
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <reviews.csv>",
		Short: "Extract an insight bundle from a CSV of reviews",
		Long: `Analyze parses a CSV export of reviews (same column aliases as the
server's import endpoint) and runs insight extraction over every row.

With --api-key (or INFERENCE_API_KEY) the remote model produces the
bundle; without it the local lexicon analyzer does, and the bundle is
flagged as degraded. The bundle is printed to stdout as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(logging.Config{Level: "warn", Format: "console"})

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			result, err := csvimport.Parse(f, source)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if len(result.Reviews) == 0 {
				return fmt.Errorf("no usable rows in %s (%d skipped)", args[0], result.Stats.Skipped)
			}

			texts := make([]string, 0, len(result.Reviews))
			for _, rev := range result.Reviews {
				texts = append(texts, rev.Text)
			}

			client, err := newInferenceClient(apiKey, model, timeout, !quiet)
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(os.Stderr, "analyzing %d reviews (%d rows skipped)\n",
					len(texts), result.Stats.Skipped)
			}

			bundle, err := client.ExtractInsights(context.Background(), texts)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(bundle, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("INFERENCE_API_KEY"), "remote inference API key (defaults to INFERENCE_API_KEY)")
	cmd.Flags().StringVar(&model, "model", "", "remote model name (default gemini-2.5-flash)")
	cmd.Flags().StringVar(&source, "source", "csv", "source label for rows without a source column")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request remote timeout")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	return cmd
}

// newInferenceClient builds the same pipeline the server runs: remote
// endpoint when a key is present, local lexicon fallback otherwise.
func newInferenceClient(apiKey, model string, timeout time.Duration, showProgress bool) (*inference.Client, error) {
	cfg := inference.Config{}
	if showProgress {
		cfg.Progress = batchProgress{}
	}
	if apiKey != "" {
		remote, err := gemini.New(gemini.Config{
			APIKey:  apiKey,
			Model:   model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		cfg.Remote = remote
	}
	return inference.New(cfg), nil
}
