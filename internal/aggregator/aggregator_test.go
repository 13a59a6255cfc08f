// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregator

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/litsearch/internal/source"
	"github.com/pdiddy/litsearch/pkg/types"
)

type stubAdapter struct {
	name    string
	records []types.Record
	err     error
	delay   time.Duration
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Search(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func defaultRerankConfig() types.RerankConfig {
	return types.RerankConfig{Weights: types.DefaultWeights()}
}

func newTestAggregator(t *testing.T, adapters []source.Adapter, cfg types.SearchConfig) *Aggregator {
	t.Helper()
	agg, err := New(adapters, cfg, defaultRerankConfig(), io.Discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return agg
}

func TestNewRejectsEmptyAdapters(t *testing.T) {
	if _, err := New(nil, types.SearchConfig{}, defaultRerankConfig(), io.Discard); err == nil {
		t.Fatal("expected error for empty adapter set")
	}
}

func TestNewRejectsBadRerankConfig(t *testing.T) {
	cfg := types.RerankConfig{Weights: types.Weights{Relevance: -1}}
	adapters := []source.Adapter{&stubAdapter{name: "pubmed"}}
	if _, err := New(adapters, types.SearchConfig{}, cfg, io.Discard); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestResolveRejectsEmptyQuery(t *testing.T) {
	agg := newTestAggregator(t, []source.Adapter{&stubAdapter{name: "pubmed"}}, types.SearchConfig{})
	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := agg.Resolve(context.Background(), q, 10, nil); err == nil {
			t.Errorf("query %q: expected error", q)
		}
	}
}

func TestResolveAllSourcesFailed(t *testing.T) {
	adapters := []source.Adapter{
		&stubAdapter{name: "pubmed", err: errors.New("down")},
		&stubAdapter{name: "europe_pmc", err: errors.New("also down")},
	}
	agg := newTestAggregator(t, adapters, types.SearchConfig{})

	res, err := agg.Resolve(context.Background(), "sepsis", 10, nil)
	if !errors.Is(err, ErrAllSourcesFailed) {
		t.Fatalf("err = %v, want ErrAllSourcesFailed", err)
	}
	if res.Stats.FailedSources != 2 {
		t.Errorf("FailedSources = %d, want 2", res.Stats.FailedSources)
	}
	if len(res.Stats.SourceErrors) != 2 {
		t.Errorf("SourceErrors = %v, want both sources", res.Stats.SourceErrors)
	}
}

func TestResolvePartialFailureSucceeds(t *testing.T) {
	adapters := []source.Adapter{
		&stubAdapter{name: "pubmed", records: []types.Record{
			{Title: "Sepsis biomarkers in adults", Abstract: strings.Repeat("sepsis outcome ", 20), SourceName: "pubmed", DOI: "10.1/a"},
		}},
		&stubAdapter{name: "semantic_scholar", err: errors.New("rate limited")},
	}
	agg := newTestAggregator(t, adapters, types.SearchConfig{})

	res, err := agg.Resolve(context.Background(), "sepsis", 10, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	if res.Stats.SuccessfulSources != 1 || res.Stats.FailedSources != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestResolveDedupAcrossSources(t *testing.T) {
	// The same DOI from two sources; priority keeps the pubmed copy.
	adapters := []source.Adapter{
		&stubAdapter{name: "europe_pmc", records: []types.Record{
			{Title: "Shared paper", DOI: "10.1000/X1", SourceName: "europe_pmc"},
		}},
		&stubAdapter{name: "pubmed", records: []types.Record{
			{Title: "Shared paper", DOI: "10.1000/x1", SourceName: "pubmed"},
		}},
	}
	agg := newTestAggregator(t, adapters, types.SearchConfig{})

	res, err := agg.Resolve(context.Background(), "paper", 10, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1 after dedup", len(res.Records))
	}
	if res.Records[0].SourceName != "pubmed" {
		t.Errorf("kept copy from %s, want pubmed (higher priority)", res.Records[0].SourceName)
	}
	if res.Stats.Dedup.ByDOI != 1 {
		t.Errorf("ByDOI = %d, want 1", res.Stats.Dedup.ByDOI)
	}
}

func TestResolveTruncatesToMaxResults(t *testing.T) {
	var records []types.Record
	for i := 0; i < 8; i++ {
		records = append(records, types.Record{
			Title:      "Result " + string(rune('A'+i)),
			DOI:        "10.1/" + string(rune('a'+i)),
			SourceName: "pubmed",
		})
	}
	adapters := []source.Adapter{&stubAdapter{name: "pubmed", records: records}}
	agg := newTestAggregator(t, adapters, types.SearchConfig{})

	res, err := agg.Resolve(context.Background(), "result", 3, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Records) != 3 {
		t.Errorf("got %d records, want 3", len(res.Records))
	}
	if res.Stats.RawRecords != 8 || res.Stats.AfterDedup != 8 || res.Stats.Returned != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestResolveNoLimitConfiguredUsesDefault(t *testing.T) {
	records := []types.Record{
		{Title: "First", DOI: "10.1/one", SourceName: "pubmed"},
		{Title: "Second", DOI: "10.1/two", SourceName: "pubmed"},
	}
	adapters := []source.Adapter{&stubAdapter{name: "pubmed", records: records}}
	agg := newTestAggregator(t, adapters, types.SearchConfig{})

	res, err := agg.Resolve(context.Background(), "alpha", 0, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Records) != 2 {
		t.Errorf("got %d records, want 2; zero limits must not truncate", len(res.Records))
	}
	if res.Stats.Returned != 2 {
		t.Errorf("Returned = %d, want 2", res.Stats.Returned)
	}
}

func TestResolveSlowSourceDoesNotBlockOthers(t *testing.T) {
	adapters := []source.Adapter{
		&stubAdapter{name: "pubmed", records: []types.Record{{Title: "fast one", DOI: "10.1/f", SourceName: "pubmed"}}},
		&stubAdapter{name: "europe_pmc", records: []types.Record{{Title: "quick too", DOI: "10.1/g", SourceName: "europe_pmc"}}},
		&stubAdapter{name: "semantic_scholar", records: []types.Record{{Title: "snappy", DOI: "10.1/h", SourceName: "semantic_scholar"}}},
		&stubAdapter{name: "clinical_trials", records: []types.Record{{Title: "trial", TrialID: "NCT01", SourceName: "clinical_trials"}}},
		&stubAdapter{name: "biorxiv", delay: time.Minute},
	}
	cfg := types.SearchConfig{
		SourceTimeout: 50 * time.Millisecond,
	}
	agg := newTestAggregator(t, adapters, cfg)

	start := time.Now()
	res, err := agg.Resolve(context.Background(), "quick", 20, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("run took %v, slow source blocked the pipeline", elapsed)
	}
	if len(res.Records) != 4 {
		t.Errorf("got %d records, want 4 from healthy sources", len(res.Records))
	}
	if _, ok := res.Stats.SourceErrors["biorxiv"]; !ok {
		t.Error("timed-out source missing from SourceErrors")
	}
	if res.Stats.FailedSources != 1 {
		t.Errorf("FailedSources = %d, want 1", res.Stats.FailedSources)
	}
}

func TestResolveExclusion(t *testing.T) {
	adapters := []source.Adapter{
		&stubAdapter{name: "pubmed", records: []types.Record{{Title: "kept", DOI: "10.1/k", SourceName: "pubmed"}}},
		&stubAdapter{name: "medrxiv", records: []types.Record{{Title: "skipped", DOI: "10.1/s", SourceName: "medrxiv"}}},
	}
	agg := newTestAggregator(t, adapters, types.SearchConfig{})

	res, err := agg.Resolve(context.Background(), "kept", 10, []string{"medrxiv"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Stats.SourcesQueried != 1 {
		t.Errorf("SourcesQueried = %d, want 1", res.Stats.SourcesQueried)
	}
	for _, rec := range res.Records {
		if rec.SourceName == "medrxiv" {
			t.Error("excluded source contributed a record")
		}
	}
}

func TestMergeUnlistedSourcesAppendedInNameOrder(t *testing.T) {
	agg := newTestAggregator(t, []source.Adapter{&stubAdapter{name: "pubmed"}}, types.SearchConfig{
		SourcePriority: []string{"pubmed"},
	})
	envelopes := map[string]types.SourceEnvelope{
		"zeta":   {SourceName: "zeta", Records: []types.Record{{Title: "z", SourceName: "zeta"}}},
		"alpha":  {SourceName: "alpha", Records: []types.Record{{Title: "a", SourceName: "alpha"}}},
		"pubmed": {SourceName: "pubmed", Records: []types.Record{{Title: "p", SourceName: "pubmed"}}},
	}
	merged := agg.merge(envelopes)
	var order []string
	for _, rec := range merged {
		order = append(order, rec.SourceName)
	}
	want := []string{"pubmed", "alpha", "zeta"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("merge order = %v, want %v", order, want)
		}
	}
}

func TestFormatTable(t *testing.T) {
	res := Result{
		Records: []types.Record{
			{Title: "A study of things", Authors: "Smith J; Doe A", SourceName: "pubmed", Year: "2024", FinalScore: 7.5},
		},
		Stats: types.RunStats{
			Returned: 1, SuccessfulSources: 1, SourcesQueried: 2,
			RawRecords: 3, Dedup: types.DedupStats{Total: 3, Kept: 2},
			SourceErrors: map[string]string{"biorxiv": "source temporarily blocked (HTTP 403)"},
		},
	}
	var buf strings.Builder
	if err := FormatTable(&buf, res); err != nil {
		t.Fatalf("FormatTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"A study of things", "Smith J", "7.50", "1/2 sources", "biorxiv: source temporarily blocked"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSONRoundTrips(t *testing.T) {
	res := Result{
		Records: []types.Record{{Title: "t", DOI: "10.1/x", SourceName: "pubmed", FinalScore: 5}},
		Stats:   types.RunStats{Query: "q", Returned: 1},
	}
	var buf strings.Builder
	if err := FormatJSON(&buf, res); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"doi": "10.1/x"`) {
		t.Errorf("JSON missing doi field:\n%s", buf.String())
	}
}

func TestFormatYAML(t *testing.T) {
	res := Result{
		Records: []types.Record{{Title: "t", SourceName: "pubmed"}},
		Stats:   types.RunStats{Query: "q"},
	}
	var buf strings.Builder
	if err := FormatYAML(&buf, res); err != nil {
		t.Fatalf("FormatYAML: %v", err)
	}
	if !strings.Contains(buf.String(), "source: pubmed") {
		t.Errorf("YAML missing source field:\n%s", buf.String())
	}
}
