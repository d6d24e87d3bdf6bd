// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package main provides the feedbackctl command line tool.
//
// feedbackctl runs the Propacity analysis pipeline offline: it scores
// single texts and extracts insight bundles from CSV exports without a
// running server, through the same inference client the server uses and
// with the same local lexicon fallback.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "feedbackctl",
		Short:   "Propacity feedback analysis from the command line",
		Version: version,
	}

	root.AddCommand(
		newAnalyzeCmd(),
		newScoreCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
