// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rerank

import "github.com/pdiddy/litsearch/pkg/types"

// QualityScorer rewards metadata completeness: a usable title, a real
// abstract, and strong identifiers.
type QualityScorer struct {
	// MinTitleLength is the minimum title length that earns a bonus
	// (default 10).
	MinTitleLength int

	// MinAbstractLength is the minimum abstract length that earns a bonus
	// (default 50).
	MinAbstractLength int
}

// Name returns the provider identifier.
func (s *QualityScorer) Name() string { return "quality" }

// Score computes the completeness score on a 0-10 scale, starting from a
// base of 5 so a bare record is mid-range rather than buried.
func (s *QualityScorer) Score(rec types.Record, _ string, _ *Corpus) float64 {
	minTitle := s.MinTitleLength
	if minTitle <= 0 {
		minTitle = 10
	}
	minAbstract := s.MinAbstractLength
	if minAbstract <= 0 {
		minAbstract = 50
	}

	score := 5.0

	if len(rec.Title) >= minTitle {
		score += 1.0
	}
	if len(rec.Title) > 50 {
		score += 1.0
	}

	if len(rec.Abstract) >= minAbstract {
		score += 2.0
	}
	if len(rec.Abstract) > 200 {
		score += 1.0
	}

	if rec.DOI != "" {
		score += 0.5
	}
	if rec.PMID != "" {
		score += 0.5
	}

	return clampScore(score)
}
