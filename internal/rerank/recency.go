// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rerank

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/litsearch/pkg/types"
)

const (
	// neutralRecency is returned for records whose date cannot be parsed.
	neutralRecency = 5.0
	// minRecency keeps very old but relevant results reachable.
	minRecency = 1.0

	defaultDecayDays = 365
)

// dateFormats are tried in order when parsing a published-date string.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01",
	"2006",
	"02/01/2006",
	"01/02/2006",
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ParseDate parses a publication date leniently: several full formats, then
// year-month, then bare year, then a four-digit year anywhere in the string.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if m := yearPattern.FindString(s); m != "" {
		year, err := strconv.Atoi(m)
		if err == nil {
			return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// RecencyScorer scores a record by publication age with a piecewise decay:
// full score for unpublished-or-today, a linear ramp through the first
// thirty days, exponential decay out to a year, and a slower exponential
// tail beyond, floored above zero.
type RecencyScorer struct {
	// DecayDays is the decay constant in days; zero means the default (365).
	DecayDays int

	// Now supplies the current time; nil means time.Now. Tests pin it.
	Now func() time.Time
}

// Name returns the provider identifier.
func (s *RecencyScorer) Name() string { return "recency" }

// Score computes the recency score on a 0-10 scale. Records with no
// parsable date score the neutral midpoint.
func (s *RecencyScorer) Score(rec types.Record, _ string, _ *Corpus) float64 {
	pub, ok := ParseDate(rec.PublishedDate)
	if !ok {
		pub, ok = ParseDate(rec.Year)
	}
	if !ok {
		return neutralRecency
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	decay := float64(s.DecayDays)
	if decay <= 0 {
		decay = defaultDecayDays
	}

	days := now().Sub(pub).Hours() / 24
	switch {
	case days <= 0:
		return 10.0
	case days <= 30:
		return 9.0 + (30-days)/30
	case days <= 365:
		return 5.0 + 4.0*math.Exp(-days/decay)
	default:
		return math.Max(minRecency, 5.0*math.Exp(-days/(decay*2)))
	}
}
