// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litsearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds per-provider settings.
type SourceConfig struct {
	// Enabled controls whether this source is queried.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Timeout bounds one adapter call; zero means the search default.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxResults caps results requested from this source; zero means the
	// search default.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// APIKey is an optional provider API key (Semantic Scholar, NCBI).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email is sent to providers that ask for a contact address
	// (Europe PMC polite pool).
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// MinRelevance is the minimum preprint-filter score for keeping a
	// bioRxiv/medRxiv paper (default 0.5). Ignored by other sources.
	MinRelevance float64 `json:"min_relevance,omitempty" yaml:"min_relevance,omitempty"`

	// DaysBack is the preprint listing window in days (default 30).
	// Ignored by other sources.
	DaysBack int `json:"days_back,omitempty" yaml:"days_back,omitempty"`
}

// SearchConfig holds settings for the federated search pipeline.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results to return after
	// deduplication and reranking (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SourceTimeout is the default per-adapter timeout (default 30s).
	SourceTimeout time.Duration `json:"source_timeout" yaml:"source_timeout"`

	// SourcePriority orders sources for the merge fed into deduplication.
	// Earlier sources win identity conflicts. Sources not listed are
	// appended in name order.
	SourcePriority []string `json:"source_priority" yaml:"source_priority"`

	// Sources maps source name to its configuration.
	Sources map[string]SourceConfig `json:"sources" yaml:"sources"`
}

// DefaultSourcePriority is the merge order when none is configured:
// authoritative indexes first, preprint servers last.
var DefaultSourcePriority = []string{
	"pubmed",
	"europe_pmc",
	"semantic_scholar",
	"clinical_trials",
	"nih_reporter",
	"biorxiv",
	"medrxiv",
}

// Weights blends the four named sub-scores into the final rank score.
// The values are expected, not enforced, to sum to 1.
type Weights struct {
	Relevance float64 `json:"relevance" yaml:"relevance"`
	Authority float64 `json:"authority" yaml:"authority"`
	Recency   float64 `json:"recency" yaml:"recency"`
	Quality   float64 `json:"quality" yaml:"quality"`
}

// DefaultWeights returns the standard blend: relevance dominates, then
// authority, recency, and quality.
func DefaultWeights() Weights {
	return Weights{Relevance: 0.40, Authority: 0.30, Recency: 0.20, Quality: 0.10}
}

// Validate rejects negative weights and an all-zero blend.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"relevance": w.Relevance,
		"authority": w.Authority,
		"recency":   w.Recency,
		"quality":   w.Quality,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s is negative (%v)", name, v)
		}
	}
	if w.Relevance+w.Authority+w.Recency+w.Quality == 0 {
		return fmt.Errorf("all rerank weights are zero")
	}
	return nil
}

// RerankConfig holds settings for the rerank engine.
type RerankConfig struct {
	// Weights blends the four sub-scores (default DefaultWeights).
	Weights Weights `json:"weights" yaml:"weights"`

	// RelevanceBlend maps enabled relevance sub-providers to their blend
	// weight. Known providers: keyword, bm25, tfidf, cosine. An unknown
	// name is a configuration error. Empty means the default blend.
	RelevanceBlend map[string]float64 `json:"relevance_blend,omitempty" yaml:"relevance_blend,omitempty"`

	// CacheSize bounds the sub-score cache; zero disables caching.
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// RecencyDecayDays is the recency decay constant in days (default 365).
	RecencyDecayDays int `json:"recency_decay_days" yaml:"recency_decay_days"`
}

// HistoryConfig holds settings for the query-history store.
type HistoryConfig struct {
	// Dir is the directory holding the history database (default ".litsearch").
	Dir string `json:"dir" yaml:"dir"`
}
