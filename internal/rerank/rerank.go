// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rerank

import (
	"fmt"
	"io"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pdiddy/litsearch/pkg/types"
)

// Scorer is one interchangeable scoring provider contributing a named
// sub-score on a 0-10 scale.
type Scorer interface {
	Name() string
	Score(rec types.Record, query string, c *Corpus) float64
}

// Engine combines the four named sub-scores into a total order. Stateless
// per call except for a bounded sub-score cache; safe to reuse across
// queries, but each Rerank call is one sequential pass.
type Engine struct {
	weights   types.Weights
	relevance *RelevanceScorer
	authority Scorer
	recency   Scorer
	quality   Scorer

	// cache maps (query, record identity) to the full computed score map.
	// Nil when caching is disabled.
	cache *lru.Cache[string, map[string]float64]

	w io.Writer
}

// NewEngine builds a rerank engine from the configuration. Invalid weights
// or an unknown relevance provider are configuration errors, fatal at
// construction rather than per query.
func NewEngine(cfg types.RerankConfig, w io.Writer) (*Engine, error) {
	if w == nil {
		w = io.Discard
	}

	weights := cfg.Weights
	if weights == (types.Weights{}) {
		weights = types.DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("rerank weights: %w", err)
	}

	relevance, err := NewRelevanceScorer(cfg.RelevanceBlend)
	if err != nil {
		return nil, fmt.Errorf("rerank configuration: %w", err)
	}

	e := &Engine{
		weights:   weights,
		relevance: relevance,
		authority: &AuthorityScorer{},
		recency:   &RecencyScorer{DecayDays: cfg.RecencyDecayDays},
		quality:   &QualityScorer{},
		w:         w,
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, map[string]float64](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("rerank cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// Rerank scores every record against the query and returns a new slice in
// descending final-score order. The sort is stable, so ties keep input
// order and identical inputs produce identical output. A failing provider
// contributes zero to its term; the result always has the same length as
// the input.
func (e *Engine) Rerank(records []types.Record, query string) ([]types.Record, types.RerankStats) {
	start := time.Now()
	stats := types.RerankStats{Records: len(records)}

	out := make([]types.Record, len(records))
	copy(out, records)
	if len(out) == 0 {
		stats.Elapsed = time.Since(start)
		return out, stats
	}

	corpus := BuildCorpus(records)

	for i := range out {
		scores := e.scoreRecord(out[i], query, corpus, &stats)

		out[i].Relevance = scores["relevance"]
		out[i].Authority = scores["authority"]
		out[i].Recency = scores["recency"]
		out[i].Quality = scores["quality"]

		subs := make(map[string]float64)
		for _, name := range e.relevance.names {
			if v, ok := scores[name]; ok {
				subs[name] = v
			}
		}
		if len(subs) > 0 {
			out[i].SubScores = subs
		}

		out[i].FinalScore = out[i].Relevance*e.weights.Relevance +
			out[i].Authority*e.weights.Authority +
			out[i].Recency*e.weights.Recency +
			out[i].Quality*e.weights.Quality
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})

	stats.Elapsed = time.Since(start)
	return out, stats
}

// scoreRecord computes (or fetches from cache) every sub-score for one record.
func (e *Engine) scoreRecord(rec types.Record, query string, corpus *Corpus, stats *types.RerankStats) map[string]float64 {
	key := query + "\x00" + recordKey(rec)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			stats.CacheHits++
			return cached
		}
		stats.CacheMisses++
	}

	scores := make(map[string]float64)

	comps := e.safeComponents(rec, query, corpus, stats)
	for name, v := range comps {
		scores[name] = v
	}
	scores["relevance"] = e.relevance.Blend(comps)
	scores["authority"] = e.safeScore(e.authority, rec, query, corpus, stats)
	scores["recency"] = e.safeScore(e.recency, rec, query, corpus, stats)
	scores["quality"] = e.safeScore(e.quality, rec, query, corpus, stats)

	if e.cache != nil {
		e.cache.Add(key, scores)
	}
	return scores
}

// safeScore shields the engine from a panicking provider: the failure is
// logged and the term contributes zero.
func (e *Engine) safeScore(s Scorer, rec types.Record, query string, corpus *Corpus, stats *types.RerankStats) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			stats.ProviderFailures++
			fmt.Fprintf(e.w, "warning: %s scorer failed: %v\n", s.Name(), r)
			v = 0
		}
	}()
	return s.Score(rec, query, corpus)
}

func (e *Engine) safeComponents(rec types.Record, query string, corpus *Corpus, stats *types.RerankStats) (comps map[string]float64) {
	defer func() {
		if r := recover(); r != nil {
			stats.ProviderFailures++
			fmt.Fprintf(e.w, "warning: relevance scorer failed: %v\n", r)
			comps = map[string]float64{}
		}
	}()
	return e.relevance.Components(rec, query, corpus)
}

// recordKey identifies a record for caching: the strongest identifier
// available, falling back to title plus authors.
func recordKey(rec types.Record) string {
	switch {
	case rec.DOI != "":
		return "doi:" + rec.DOI
	case rec.PMID != "":
		return "pmid:" + rec.PMID
	case rec.TrialID != "":
		return "trial:" + rec.TrialID
	default:
		return "ta:" + rec.Title + "|" + rec.Authors
	}
}
