// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litsearch pipeline.
package types

import "time"

// Record is one normalized literature item, provider-agnostic. Adapters map
// provider payloads onto this fixed shape; identity and descriptive fields
// are never mutated after an adapter produced the record. Only the rerank
// stage fills the score fields, and it does so on its own copy.
type Record struct {
	// DOI is the Digital Object Identifier, if the provider supplied one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PMID is the PubMed identifier, if known.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// TrialID is a clinical-trial registry identifier (e.g. an NCT number).
	TrialID string `json:"trial_id,omitempty" yaml:"trial_id,omitempty"`

	// Title is the item title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors is a single delimited author string in source order. The first
	// author is extractable by splitting on the common delimiters.
	Authors string `json:"authors" yaml:"authors"`

	// Venue is the journal, registry, or archive name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Year is the publication year as reported by the source.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// CitationCount is the number of citations reported by the source.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// PublishedDate is the publication date string as reported by the source.
	// Several formats occur in the wild; the recency scorer parses leniently.
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// URL points at the canonical landing page for the item.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Abstract is the abstract or summary text.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// SourceName identifies which adapter produced this record.
	SourceName string `json:"source" yaml:"source"`

	// Trial-registry records carry status, conditions, and interventions;
	// empty for everything else.
	TrialStatus   string `json:"trial_status,omitempty" yaml:"trial_status,omitempty"`
	Conditions    string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Interventions string `json:"interventions,omitempty" yaml:"interventions,omitempty"`

	// Score fields, populated by the rerank stage only.
	Relevance  float64 `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
	Authority  float64 `json:"authority_score,omitempty" yaml:"authority_score,omitempty"`
	Recency    float64 `json:"recency_score,omitempty" yaml:"recency_score,omitempty"`
	Quality    float64 `json:"quality_score,omitempty" yaml:"quality_score,omitempty"`
	FinalScore float64 `json:"final_score,omitempty" yaml:"final_score,omitempty"`

	// SubScores carries optional provider-specific relevance components
	// (e.g. "bm25", "tfidf") for debugging and analysis.
	SubScores map[string]float64 `json:"sub_scores,omitempty" yaml:"sub_scores,omitempty"`
}

// SourceEnvelope wraps the outcome of one adapter call. Exactly one of
// (Records populated, Error empty) or (Records empty, Error set) holds after
// a call completes; zero records with an empty Error is a valid empty result.
type SourceEnvelope struct {
	SourceName  string        `json:"source" yaml:"source"`
	Query       string        `json:"query" yaml:"query"`
	Records     []Record      `json:"records" yaml:"records"`
	RecordCount int           `json:"record_count" yaml:"record_count"`
	Elapsed     time.Duration `json:"elapsed" yaml:"elapsed"`
	Error       string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the adapter call succeeded.
func (e SourceEnvelope) OK() bool { return e.Error == "" }

// DedupStats counts one deduplication pass.
type DedupStats struct {
	Total         int `json:"total" yaml:"total"`
	Kept          int `json:"kept" yaml:"kept"`
	ByDOI         int `json:"by_doi" yaml:"by_doi"`
	ByPMID        int `json:"by_pmid" yaml:"by_pmid"`
	ByTrialID     int `json:"by_trial_id" yaml:"by_trial_id"`
	ByTitleAuthor int `json:"by_title_author" yaml:"by_title_author"`
}

// Removed returns the number of records dropped during the pass.
func (s DedupStats) Removed() int { return s.Total - s.Kept }

// RerankStats counts one rerank pass.
type RerankStats struct {
	Records          int           `json:"records" yaml:"records"`
	CacheHits        int           `json:"cache_hits" yaml:"cache_hits"`
	CacheMisses      int           `json:"cache_misses" yaml:"cache_misses"`
	ProviderFailures int           `json:"provider_failures" yaml:"provider_failures"`
	Elapsed          time.Duration `json:"elapsed" yaml:"elapsed"`
}

// RunStats aggregates counters for one Resolve call.
type RunStats struct {
	Query             string        `json:"query" yaml:"query"`
	StartedAt         time.Time     `json:"started_at" yaml:"started_at"`
	Elapsed           time.Duration `json:"elapsed" yaml:"elapsed"`
	SourcesQueried    int           `json:"sources_queried" yaml:"sources_queried"`
	SuccessfulSources int           `json:"successful_sources" yaml:"successful_sources"`
	FailedSources     int           `json:"failed_sources" yaml:"failed_sources"`
	RawRecords        int           `json:"raw_records" yaml:"raw_records"`
	AfterDedup        int           `json:"after_dedup" yaml:"after_dedup"`
	Returned          int           `json:"returned" yaml:"returned"`
	Dedup             DedupStats    `json:"dedup" yaml:"dedup"`
	Rerank            RerankStats   `json:"rerank" yaml:"rerank"`

	// SourceErrors maps source name to its error message for failed sources.
	SourceErrors map[string]string `json:"source_errors,omitempty" yaml:"source_errors,omitempty"`
}
