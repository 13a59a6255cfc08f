// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rerank

import (
	"math"

	"github.com/pdiddy/litsearch/pkg/types"
)

// BM25Scorer implements Okapi BM25 term weighting over the candidate corpus.
type BM25Scorer struct {
	// K1 controls term-frequency saturation.
	K1 float64
	// B controls document-length normalization.
	B float64
}

// Name returns the provider identifier.
func (s *BM25Scorer) Name() string { return "bm25" }

// Score computes the BM25 score of the record against the query terms,
// clamped to the shared 0-10 range.
func (s *BM25Scorer) Score(rec types.Record, query string, c *Corpus) float64 {
	if c == nil || c.Size() == 0 || c.AvgDocLength() == 0 {
		return 0
	}

	tokens := Tokenize(Document(rec))
	if len(tokens) == 0 {
		return 0
	}
	freq := termFrequencies(tokens)
	docLength := float64(len(tokens))

	var score float64
	for _, term := range Tokenize(query) {
		tf := float64(freq[term])
		if tf == 0 {
			continue
		}
		df := float64(c.DocFreq(term))
		n := float64(c.Size())
		idf := math.Log((n - df + 0.5) / (df + 0.5))
		if idf <= 0 {
			// Terms in more than half the corpus carry no signal.
			continue
		}

		numerator := tf * (s.K1 + 1)
		denominator := tf + s.K1*(1-s.B+s.B*(docLength/c.AvgDocLength()))
		score += idf * (numerator / denominator)
	}

	return clampScore(score)
}

// TFIDFScorer implements classic TF-IDF term weighting.
type TFIDFScorer struct{}

// Name returns the provider identifier.
func (s *TFIDFScorer) Name() string { return "tfidf" }

// Score sums tf·idf over the query terms. Raw TF-IDF values are small
// fractions; they are scaled onto the shared 0-10 range.
func (s *TFIDFScorer) Score(rec types.Record, query string, c *Corpus) float64 {
	if c == nil || c.Size() == 0 {
		return 0
	}

	tokens := Tokenize(Document(rec))
	if len(tokens) == 0 {
		return 0
	}
	freq := termFrequencies(tokens)

	var score float64
	for _, term := range Tokenize(query) {
		tf := float64(freq[term]) / float64(len(tokens))
		if tf == 0 {
			continue
		}
		df := c.DocFreq(term)
		if df == 0 {
			continue
		}
		idf := math.Log(float64(c.Size()) / float64(df))
		score += tf * idf
	}

	return clampScore(score * 10)
}

// CosineScorer computes the cosine similarity between the query and the
// record's term-frequency vectors.
type CosineScorer struct{}

// Name returns the provider identifier.
func (s *CosineScorer) Name() string { return "cosine" }

// Score returns cosine similarity scaled onto the shared 0-10 range.
func (s *CosineScorer) Score(rec types.Record, query string, _ *Corpus) float64 {
	queryFreq := termFrequencies(Tokenize(query))
	docFreq := termFrequencies(Tokenize(Document(rec)))
	if len(queryFreq) == 0 || len(docFreq) == 0 {
		return 0
	}

	var dot float64
	for term, qf := range queryFreq {
		if df, ok := docFreq[term]; ok {
			dot += float64(qf) * float64(df)
		}
	}
	if dot == 0 {
		return 0
	}

	return clampScore(dot / (vectorNorm(queryFreq) * vectorNorm(docFreq)) * 10)
}

func vectorNorm(freq map[string]int) float64 {
	var sum float64
	for _, f := range freq {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}
