// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rerank orders a deduplicated candidate set by a weighted blend of
// relevance, authority, recency, and quality signals computed by pluggable
// scoring providers.
package rerank

import (
	"strings"
	"unicode"

	"github.com/pdiddy/litsearch/pkg/types"
)

// Corpus holds the statistics the lexical providers need: document count,
// average document length, and per-term document frequencies over the
// candidate set being reranked. Built once per rerank call.
type Corpus struct {
	size         int
	totalLength  int
	docFreq      map[string]int
	avgDocLength float64
}

// BuildCorpus derives corpus statistics from the candidate records.
func BuildCorpus(records []types.Record) *Corpus {
	c := &Corpus{docFreq: make(map[string]int)}
	for _, rec := range records {
		tokens := Tokenize(Document(rec))
		c.size++
		c.totalLength += len(tokens)

		unique := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			unique[tok] = struct{}{}
		}
		for tok := range unique {
			c.docFreq[tok]++
		}
	}
	if c.size > 0 {
		c.avgDocLength = float64(c.totalLength) / float64(c.size)
	}
	return c
}

// Size returns the number of documents in the corpus.
func (c *Corpus) Size() int { return c.size }

// AvgDocLength returns the mean token count per document.
func (c *Corpus) AvgDocLength() float64 { return c.avgDocLength }

// DocFreq returns the number of documents containing term.
func (c *Corpus) DocFreq(term string) int { return c.docFreq[term] }

// Document returns the searchable text of a record: title plus abstract,
// lower-cased.
func Document(rec types.Record) string {
	return strings.ToLower(strings.TrimSpace(rec.Title + " " + rec.Abstract))
}

// Tokenize splits text into lower-cased alphanumeric word tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// termFrequencies counts token occurrences.
func termFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return freq
}

// tokenSet returns the distinct tokens of text.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}
