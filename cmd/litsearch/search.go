// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litsearch/internal/aggregator"
	"github.com/pdiddy/litsearch/internal/history"
	"github.com/pdiddy/litsearch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search all configured sources for a query",
	Long: `Search queries every enabled bibliographic source concurrently, merges
and deduplicates the results, and prints them ranked by the blended
relevance, authority, recency, and quality score.

A source that fails or times out is reported but does not abort the run;
the search fails only when every source fails. Completed runs are stored
in the local history database.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	excluded, _ := cmd.Flags().GetStringSlice("exclude")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	cfg := searchConfig()
	rcfg := rerankConfig()
	applyWeightFlags(cmd, &rcfg)

	agg, err := aggregator.New(buildAdapters(cfg), cfg, rcfg, os.Stderr)
	if err != nil {
		return err
	}

	res, err := agg.Resolve(context.Background(), query, maxResults, excluded)
	if err != nil {
		return err
	}

	if !noHistory {
		recordHistory(res)
	}

	switch {
	case jsonOutput:
		return aggregator.FormatJSON(os.Stdout, res)
	case yamlOutput:
		return aggregator.FormatYAML(os.Stdout, res)
	default:
		return aggregator.FormatTable(os.Stdout, res)
	}
}

// applyWeightFlags overrides configured rerank weights with any weight
// flags the user set. The flags default to -1, meaning not set.
func applyWeightFlags(cmd *cobra.Command, cfg *types.RerankConfig) {
	if v, _ := cmd.Flags().GetFloat64("weight-relevance"); v >= 0 {
		cfg.Weights.Relevance = v
	}
	if v, _ := cmd.Flags().GetFloat64("weight-authority"); v >= 0 {
		cfg.Weights.Authority = v
	}
	if v, _ := cmd.Flags().GetFloat64("weight-recency"); v >= 0 {
		cfg.Weights.Recency = v
	}
	if v, _ := cmd.Flags().GetFloat64("weight-quality"); v >= 0 {
		cfg.Weights.Quality = v
	}
}

// recordHistory stores the run, best effort. A broken history database
// must not fail a successful search.
func recordHistory(res aggregator.Result) {
	store, err := history.Open(historyConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	if _, err := store.RecordRun(context.Background(), res.Stats, res.Envelopes); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record run: %v\n", err)
	}
}

func init() {
	searchCmd.Flags().String("query", "", "search query (alternative to positional args)")
	searchCmd.Flags().Int("max-results", 0, "maximum results to return (0 = configured default)")
	searchCmd.Flags().StringSlice("exclude", nil, "source names to skip for this run")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("yaml", false, "output results as YAML")
	searchCmd.Flags().Bool("no-history", false, "do not record this run in history")
	searchCmd.Flags().Float64("weight-relevance", -1, "override the relevance weight")
	searchCmd.Flags().Float64("weight-authority", -1, "override the authority weight")
	searchCmd.Flags().Float64("weight-recency", -1, "override the recency weight")
	searchCmd.Flags().Float64("weight-quality", -1, "override the quality weight")

	rootCmd.AddCommand(searchCmd)
}
