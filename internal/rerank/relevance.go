// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rerank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/litsearch/pkg/types"
)

// stopWords are filtered out of queries before keyword matching.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
}

// thesaurus maps biomedical query terms to their common synonyms. Synonym
// hits in a document count toward relevance at a reduced weight.
var thesaurus = map[string][]string{
	"cancer":    {"tumor", "neoplasm", "malignancy", "carcinoma", "oncology"},
	"diabetes":  {"diabetic", "hyperglycemia", "glucose", "insulin"},
	"covid":     {"coronavirus", "sars-cov-2", "pandemic", "covid-19"},
	"vaccine":   {"vaccination", "immunization", "immunize", "inoculation"},
	"treatment": {"therapy", "therapeutic", "intervention", "medication"},
	"disease":   {"illness", "disorder", "condition", "pathology"},
	"study":     {"research", "investigation", "analysis", "trial"},
	"patient":   {"subject", "participant", "individual", "case"},
	"clinical":  {"medical", "healthcare", "hospital", "therapeutic"},
	"drug":      {"medication", "pharmaceutical", "medicine", "compound"},
}

// QueryKeywords extracts the matchable terms of a query: lower-cased,
// punctuation stripped, stop words and terms shorter than three characters
// removed.
func QueryKeywords(query string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, tok := range Tokenize(query) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

// expandKeywords adds thesaurus synonyms to a keyword set.
func expandKeywords(keywords []string) map[string]struct{} {
	expanded := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		expanded[kw] = struct{}{}
		for _, syn := range thesaurus[kw] {
			expanded[syn] = struct{}{}
		}
	}
	return expanded
}

// KeywordScorer scores lexical overlap between the expanded query terms and
// a record's title, abstract, and authors. Title matches weigh most, an
// exact phrase match earns a large bonus, and each synonym hit a small one.
type KeywordScorer struct {
	TitleWeight    float64
	AbstractWeight float64
	AuthorWeight   float64
	PhraseBonus    float64
	SynonymWeight  float64
}

// NewKeywordScorer returns a keyword scorer with the standard weights.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{
		TitleWeight:    3.0,
		AbstractWeight: 1.5,
		AuthorWeight:   0.5,
		PhraseBonus:    5.0,
		SynonymWeight:  0.8,
	}
}

// Name returns the provider identifier.
func (s *KeywordScorer) Name() string { return "keyword" }

// Score computes the keyword overlap score on a 0-10 scale.
func (s *KeywordScorer) Score(rec types.Record, query string, _ *Corpus) float64 {
	keywords := QueryKeywords(query)
	if len(keywords) == 0 {
		return 0
	}
	expanded := expandKeywords(keywords)

	title := strings.ToLower(rec.Title)
	abstract := strings.ToLower(rec.Abstract)
	titleWords := tokenSet(title)
	abstractWords := tokenSet(abstract)
	authorWords := tokenSet(rec.Authors)

	score := float64(countMatches(expanded, titleWords)) * s.TitleWeight
	score += float64(countMatches(expanded, abstractWords)) * s.AbstractWeight
	score += float64(countMatches(expanded, authorWords)) * s.AuthorWeight

	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower != "" {
		if strings.Contains(title, queryLower) {
			score += s.PhraseBonus
		} else if strings.Contains(abstract, queryLower) {
			score += s.PhraseBonus * 0.5
		}
	}

	synonymHits := 0
	for _, kw := range keywords {
		for _, syn := range thesaurus[kw] {
			if _, inTitle := titleWords[syn]; inTitle {
				synonymHits++
				continue
			}
			if _, inAbstract := abstractWords[syn]; inAbstract {
				synonymHits++
			}
		}
	}
	score += float64(synonymHits) * s.SynonymWeight

	return clampScore(score)
}

func countMatches(query map[string]struct{}, doc map[string]struct{}) int {
	n := 0
	for term := range query {
		if _, ok := doc[term]; ok {
			n++
		}
	}
	return n
}

// defaultRelevanceBlend is used when no blend is configured.
var defaultRelevanceBlend = map[string]float64{
	"keyword": 0.40,
	"bm25":    0.30,
	"tfidf":   0.15,
	"cosine":  0.15,
}

// RelevanceScorer blends the enabled lexical sub-providers into one
// relevance score on a 0-10 scale. Each sub-provider contributes a named
// sub-score the engine surfaces on the record for analysis.
type RelevanceScorer struct {
	blend       map[string]float64
	subs        map[string]Scorer
	names       []string
	totalWeight float64
}

// NewRelevanceScorer builds the blended relevance provider. An unknown
// provider name in the blend is a configuration error.
func NewRelevanceScorer(blend map[string]float64) (*RelevanceScorer, error) {
	available := map[string]Scorer{
		"keyword": NewKeywordScorer(),
		"bm25":    &BM25Scorer{K1: 1.5, B: 0.75},
		"tfidf":   &TFIDFScorer{},
		"cosine":  &CosineScorer{},
	}

	if len(blend) == 0 {
		blend = defaultRelevanceBlend
	}

	r := &RelevanceScorer{
		blend: make(map[string]float64, len(blend)),
		subs:  make(map[string]Scorer, len(blend)),
	}
	for name, weight := range blend {
		sub, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("unknown relevance provider %q", name)
		}
		if weight < 0 {
			return nil, fmt.Errorf("relevance provider %q has negative weight %v", name, weight)
		}
		if weight == 0 {
			continue
		}
		r.blend[name] = weight
		r.subs[name] = sub
		r.names = append(r.names, name)
	}
	if len(r.subs) == 0 {
		return nil, fmt.Errorf("no relevance providers enabled")
	}
	sort.Strings(r.names)
	for _, name := range r.names {
		r.totalWeight += r.blend[name]
	}
	return r, nil
}

// Name returns the provider identifier.
func (r *RelevanceScorer) Name() string { return "relevance" }

// Components computes every enabled sub-score. Iteration follows the sorted
// provider names so results are deterministic.
func (r *RelevanceScorer) Components(rec types.Record, query string, c *Corpus) map[string]float64 {
	comps := make(map[string]float64, len(r.names))
	for _, name := range r.names {
		comps[name] = r.subs[name].Score(rec, query, c)
	}
	return comps
}

// Score blends the sub-scores, normalized by the total blend weight so the
// result stays on the 0-10 scale.
func (r *RelevanceScorer) Score(rec types.Record, query string, c *Corpus) float64 {
	return r.Blend(r.Components(rec, query, c))
}

// Blend combines precomputed components into the final relevance value.
// Summation follows the sorted provider names; float addition is
// order-sensitive, so a fixed order keeps repeated blends bit-identical.
func (r *RelevanceScorer) Blend(comps map[string]float64) float64 {
	if r.totalWeight == 0 {
		return 0
	}
	var sum float64
	for _, name := range r.names {
		sum += comps[name] * r.blend[name]
	}
	return clampScore(sum / r.totalWeight)
}

// clampScore bounds a sub-score to the shared 0-10 range.
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
