// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup removes cross-source duplicate records using a prioritized
// identity scheme: DOI, then PMID, then trial registry ID, then a
// title+first-author fallback for records carrying no strong identifier.
package dedup

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/litsearch/pkg/types"
)

// Kind names one identity tier.
type Kind string

// Identity tiers, strongest first.
const (
	KindDOI         Kind = "doi"
	KindPMID        Kind = "pmid"
	KindTrialID     Kind = "trialid"
	KindTitleAuthor Kind = "titleauthor"
)

type identity struct {
	kind  Kind
	value string
}

// IdentitySet accumulates the (kind, normalized value) pairs seen during a
// deduplication pass. It grows monotonically within one pass and can be
// threaded through successive calls for incremental per-batch dedup. It is
// owned by a single sequential pass; callers must not share one set across
// goroutines.
type IdentitySet struct {
	seen map[identity]struct{}
}

// NewIdentitySet returns an empty identity set.
func NewIdentitySet() *IdentitySet {
	return &IdentitySet{seen: make(map[identity]struct{})}
}

// Clone returns an independent copy of the set.
func (s *IdentitySet) Clone() *IdentitySet {
	c := NewIdentitySet()
	for id := range s.seen {
		c.seen[id] = struct{}{}
	}
	return c
}

// Add inserts a pair. Empty values are ignored: an empty identifier is not
// a valid identity key.
func (s *IdentitySet) Add(kind Kind, value string) {
	if value == "" {
		return
	}
	s.seen[identity{kind: kind, value: value}] = struct{}{}
}

// Has reports whether the pair is present. Empty values never match.
func (s *IdentitySet) Has(kind Kind, value string) bool {
	if value == "" {
		return false
	}
	_, ok := s.seen[identity{kind: kind, value: value}]
	return ok
}

// Len returns the number of pairs in the set.
func (s *IdentitySet) Len() int { return len(s.seen) }

// Dedup processes records in input order and keeps the first occurrence of
// each identity. Callers control precedence by ordering the input
// (authoritative sources first). seed may be nil; when non-nil it is cloned,
// so the caller's set is never mutated. The returned set contains the seed
// plus every identity inserted during this pass, ready to seed a later batch.
//
// Each record is tested tier by tier, stopping at the first match. The
// title+author fallback applies only to records that have neither DOI nor
// PMID; strong identifiers short-circuit the weaker namespaces entirely.
// A kept record inserts all of its available tiers, not just the first, so
// a later record is caught by any of them.
func Dedup(records []types.Record, seed *IdentitySet) ([]types.Record, types.DedupStats, *IdentitySet) {
	set := NewIdentitySet()
	if seed != nil {
		set = seed.Clone()
	}

	stats := types.DedupStats{Total: len(records)}
	kept := make([]types.Record, 0, len(records))

	for _, rec := range records {
		doi := NormalizeDOI(rec.DOI)
		pmid := strings.TrimSpace(rec.PMID)
		trialID := strings.TrimSpace(rec.TrialID)

		switch {
		case set.Has(KindDOI, doi):
			stats.ByDOI++
		case set.Has(KindPMID, pmid):
			stats.ByPMID++
		case set.Has(KindTrialID, trialID):
			stats.ByTrialID++
		case doi == "" && pmid == "" && set.Has(KindTitleAuthor, titleAuthorKey(rec)):
			stats.ByTitleAuthor++
		default:
			kept = append(kept, rec)
			stats.Kept++

			set.Add(KindDOI, doi)
			set.Add(KindPMID, pmid)
			set.Add(KindTrialID, trialID)
			if doi == "" && pmid == "" {
				set.Add(KindTitleAuthor, titleAuthorKey(rec))
			}
		}
	}

	return kept, stats, set
}

// NormalizeDOI lower-cases and trims a DOI so that case variants of the same
// identifier compare equal.
func NormalizeDOI(doi string) string {
	return strings.ToLower(strings.TrimSpace(doi))
}

// NormalizeTitle lower-cases a title and collapses punctuation and runs of
// whitespace to single spaces.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// authorSplit matches the delimiters between authors in a combined author
// string: semicolon, comma, the word "and", ampersand, or a newline.
var authorSplit = regexp.MustCompile(`(?i);|,|\band\b|&|\n`)

// FirstAuthor extracts the first author from a delimited author string.
func FirstAuthor(authors string) string {
	parts := authorSplit.Split(authors, 2)
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

// titleAuthorKey builds the fallback identity for records lacking strong
// identifiers. Records with no usable title and no author get no fallback
// key at all: the degenerate "_" key would collapse unrelated records.
func titleAuthorKey(rec types.Record) string {
	title := NormalizeTitle(rec.Title)
	author := strings.ToLower(FirstAuthor(rec.Authors))
	if title == "" && author == "" {
		return ""
	}
	return title + "_" + author
}
