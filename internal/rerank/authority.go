// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rerank

import (
	"math"

	"github.com/pdiddy/litsearch/pkg/types"
)

// DefaultSourceAuthority maps source names to their static reputation on a
// 0-1 scale. Curated indexes rank above preprint servers; unknown sources
// get a neutral 0.5.
func DefaultSourceAuthority() map[string]float64 {
	return map[string]float64{
		"pubmed":           1.0,
		"europe_pmc":       0.95,
		"semantic_scholar": 0.9,
		"clinical_trials":  0.85,
		"nih_reporter":     0.8,
		"biorxiv":          0.7,
		"medrxiv":          0.7,
	}
}

const unknownSourceAuthority = 0.5

// AuthorityScorer scores a record by source reputation, citation count, and
// identifier completeness. Citations contribute logarithmically so a single
// mega-cited outlier cannot dominate the blend.
type AuthorityScorer struct {
	// Sources maps source name to base reputation; nil means the default table.
	Sources map[string]float64
}

// Name returns the provider identifier.
func (s *AuthorityScorer) Name() string { return "authority" }

// Score computes the authority score on a 0-10 scale.
func (s *AuthorityScorer) Score(rec types.Record, _ string, _ *Corpus) float64 {
	table := s.Sources
	if table == nil {
		table = DefaultSourceAuthority()
	}

	base, ok := table[rec.SourceName]
	if !ok {
		base = unknownSourceAuthority
	}
	score := base * 3.0

	if rec.CitationCount > 0 {
		citation := math.Log10(float64(rec.CitationCount)+1) * 2.0
		score += math.Min(citation, 5.0)
	}

	// Having a DOI or PMID is a proxy for indexing completeness.
	if rec.DOI != "" {
		score += 1.0
	}
	if rec.PMID != "" {
		score += 1.0
	}

	return clampScore(score)
}
