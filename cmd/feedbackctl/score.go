// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/inference"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
)

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <text>",
		Short: "Score sentiment for a single text",
		Long: `Score runs lexicon sentiment scoring over the given text and prints
the result as JSON. Single-text scoring is always local, matching the
server's routing, so no API key is needed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(logging.Config{Level: "warn", Format: "console"})

			client := inference.New(inference.Config{})
			result := client.ScoreSentiment(context.Background(), strings.Join(args, " "))

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
