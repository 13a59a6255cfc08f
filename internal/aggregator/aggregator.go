// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregator ties the pipeline together: fan-out, merge, dedup,
// rerank, truncate. It is the only package the CLI needs to run a search.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/litsearch/internal/dedup"
	"github.com/pdiddy/litsearch/internal/fanout"
	"github.com/pdiddy/litsearch/internal/rerank"
	"github.com/pdiddy/litsearch/internal/source"
	"github.com/pdiddy/litsearch/pkg/types"
)

// ErrAllSourcesFailed reports a run where no source produced an envelope
// without an error. Partial failure is not an error; total failure is.
var ErrAllSourcesFailed = errors.New("all sources failed")

// defaultMaxResults caps a run when neither the caller nor the config set a
// limit.
const defaultMaxResults = 20

// Result is one completed search: the ranked records plus the run
// accounting a caller needs to explain them.
type Result struct {
	Records []types.Record
	Stats   types.RunStats

	// Envelopes holds each source's outcome with the record payloads
	// stripped, for history and diagnostics.
	Envelopes map[string]types.SourceEnvelope
}

// Aggregator runs federated searches over a fixed set of source adapters.
type Aggregator struct {
	orchestrator *fanout.Orchestrator
	engine       *rerank.Engine
	cfg          types.SearchConfig
	w            io.Writer
}

// New wires the pipeline. It fails fast on an empty adapter set or invalid
// rerank configuration so a bad deployment dies at startup, not mid-query.
func New(adapters []source.Adapter, cfg types.SearchConfig, rerankCfg types.RerankConfig, w io.Writer) (*Aggregator, error) {
	if len(adapters) == 0 {
		return nil, errors.New("no source adapters enabled")
	}
	if w == nil {
		w = io.Discard
	}
	engine, err := rerank.NewEngine(rerankCfg, w)
	if err != nil {
		return nil, fmt.Errorf("rerank config: %w", err)
	}
	return &Aggregator{
		orchestrator: fanout.New(adapters, cfg, w),
		engine:       engine,
		cfg:          cfg,
		w:            w,
	}, nil
}

// Sources returns the names of the adapters this aggregator queries.
func (a *Aggregator) Sources() []string {
	return a.orchestrator.Adapters()
}

// Resolve runs the full pipeline for one query. maxResults <= 0 falls back
// to the configured cap, then to defaultMaxResults; excluded names are
// skipped at fan-out. The
// error is non-nil only when the query is empty or every source failed.
func (a *Aggregator) Resolve(ctx context.Context, query string, maxResults int, excluded []string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, errors.New("query must not be empty")
	}
	if maxResults <= 0 {
		maxResults = a.cfg.MaxResults
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	start := time.Now()
	envelopes := a.orchestrator.Run(ctx, query, excluded)

	trimmed := make(map[string]types.SourceEnvelope, len(envelopes))
	for name, env := range envelopes {
		env.Records = nil
		trimmed[name] = env
	}

	stats := types.RunStats{
		Query:          query,
		StartedAt:      start,
		SourcesQueried: len(envelopes),
		SourceErrors:   map[string]string{},
	}
	for name, env := range envelopes {
		if env.OK() {
			stats.SuccessfulSources++
		} else {
			stats.FailedSources++
			stats.SourceErrors[name] = env.Error
		}
	}
	if stats.SourcesQueried > 0 && stats.SuccessfulSources == 0 {
		stats.Elapsed = time.Since(start)
		return Result{Stats: stats, Envelopes: trimmed}, ErrAllSourcesFailed
	}

	merged := a.merge(envelopes)
	stats.RawRecords = len(merged)

	deduped, dedupStats, _ := dedup.Dedup(merged, nil)
	stats.AfterDedup = len(deduped)
	stats.Dedup = dedupStats

	ranked, rerankStats := a.engine.Rerank(deduped, query)
	stats.Rerank = rerankStats

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	stats.Returned = len(ranked)
	stats.Elapsed = time.Since(start)

	return Result{Records: ranked, Stats: stats, Envelopes: trimmed}, nil
}

// merge flattens envelopes into one slice ordered by source priority so
// the dedup pass keeps the copy from the most trusted source. Sources not
// listed in the priority order come last, in name order.
func (a *Aggregator) merge(envelopes map[string]types.SourceEnvelope) []types.Record {
	priority := a.cfg.SourcePriority
	if len(priority) == 0 {
		priority = types.DefaultSourcePriority
	}
	listed := make(map[string]struct{}, len(priority))
	for _, name := range priority {
		listed[name] = struct{}{}
	}

	var rest []string
	for name := range envelopes {
		if _, ok := listed[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	var merged []types.Record
	for _, name := range append(append([]string{}, priority...), rest...) {
		env, ok := envelopes[name]
		if !ok || !env.OK() {
			continue
		}
		merged = append(merged, env.Records...)
	}
	return merged
}
