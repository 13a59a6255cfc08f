// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/litsearch/pkg/types"
)

// preprintStopWords are dropped from queries before scoring listings.
var preprintStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "about": {}, "into": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"this": {}, "that": {}, "these": {}, "those": {},
}

// preprintSynonyms expands biomedical query terms when scoring preprint
// listings, which are matched client-side because the details API has no
// search parameter.
var preprintSynonyms = map[string][]string{
	"covid":     {"covid-19", "coronavirus", "sars-cov-2", "pandemic"},
	"cancer":    {"tumor", "tumour", "carcinoma", "malignancy", "neoplasm", "oncology"},
	"diabetes":  {"diabetic", "hyperglycemia", "insulin"},
	"heart":     {"cardiac", "cardiovascular", "cardiology"},
	"brain":     {"neural", "neurological", "cerebral", "neuroscience"},
	"immune":    {"immunity", "immunology", "immunological"},
	"gene":      {"genetic", "genomic", "dna", "rna"},
	"protein":   {"proteomic", "peptide"},
	"treatment": {"therapy", "therapeutic", "intervention"},
	"drug":      {"medication", "pharmaceutical", "compound"},
	"disease":   {"disorder", "condition", "illness", "pathology"},
}

// PreprintFilter scores date-window preprint listings against a query so
// the adapter returns only plausibly relevant papers.
type PreprintFilter struct {
	TitleWeight    float64
	AbstractWeight float64
	AuthorWeight   float64
	PhraseBonus    float64
}

// NewPreprintFilter returns a filter with the standard weights.
func NewPreprintFilter() *PreprintFilter {
	return &PreprintFilter{
		TitleWeight:    3.0,
		AbstractWeight: 1.0,
		AuthorWeight:   0.5,
		PhraseBonus:    5.0,
	}
}

// Filter scores each record, drops those below minScore, sorts the rest
// best-first, and truncates to limit.
func (f *PreprintFilter) Filter(records []types.Record, query string, minScore float64, limit int) []types.Record {
	keywords := f.keywords(query)
	if len(keywords) == 0 {
		return nil
	}
	expanded := f.expand(keywords)

	type scored struct {
		rec   types.Record
		score float64
	}
	var kept []scored
	for _, rec := range records {
		if s := f.Score(rec, query, expanded); s >= minScore {
			kept = append(kept, scored{rec: rec, score: s})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	out := make([]types.Record, len(kept))
	for i, s := range kept {
		out[i] = s.rec
	}
	return out
}

// Score computes keyword overlap between the expanded query terms and one
// listing entry.
func (f *PreprintFilter) Score(rec types.Record, query string, expanded map[string]struct{}) float64 {
	title := preprintNormalize(rec.Title)
	abstract := preprintNormalize(rec.Abstract)
	authors := preprintNormalize(rec.Authors)

	score := float64(overlap(expanded, title)) * f.TitleWeight
	score += float64(overlap(expanded, abstract)) * f.AbstractWeight
	score += float64(overlap(expanded, authors)) * f.AuthorWeight

	queryNorm := preprintNormalize(query)
	if queryNorm != "" && (strings.Contains(title, queryNorm) || strings.Contains(abstract, queryNorm)) {
		score += f.PhraseBonus
	}
	return score
}

func (f *PreprintFilter) keywords(query string) []string {
	var keywords []string
	for _, word := range strings.Fields(preprintNormalize(query)) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := preprintStopWords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

func (f *PreprintFilter) expand(keywords []string) map[string]struct{} {
	expanded := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		expanded[kw] = struct{}{}
		for _, syn := range preprintSynonyms[kw] {
			expanded[syn] = struct{}{}
		}
	}
	return expanded
}

// overlap counts the distinct expanded terms present in text.
func overlap(expanded map[string]struct{}, text string) int {
	words := make(map[string]struct{})
	for _, word := range strings.Fields(text) {
		words[word] = struct{}{}
	}
	n := 0
	for term := range expanded {
		if _, ok := words[term]; ok {
			n++
		}
	}
	return n
}

// preprintNormalize lower-cases text and replaces everything except
// letters, digits, and hyphens with spaces.
func preprintNormalize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
