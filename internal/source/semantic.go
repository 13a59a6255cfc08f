// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/litsearch/internal/httputil"
	"github.com/pdiddy/litsearch/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,venue,externalIds,year,publicationDate,citationCount"

// SemanticScholarAdapter queries the Semantic Scholar graph API.
type SemanticScholarAdapter struct {
	Client    *http.Client
	Config    types.SourceConfig
	UserAgent string
}

// Name returns the adapter identifier.
func (a *SemanticScholarAdapter) Name() string { return "semantic_scholar" }

// Search queries the Semantic Scholar paper search endpoint.
func (a *SemanticScholarAdapter) Search(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if query == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}
	limit = clampLimit(limit, a.Config, 10)

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.UserAgent)
	if a.Config.APIKey != "" {
		req.Header.Set("x-api-key", a.Config.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, a.Name()); err != nil {
		return nil, err
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	records := make([]types.Record, 0, len(sr.Data))
	for _, paper := range sr.Data {
		rec := types.Record{
			DOI:           paper.ExternalIDs.DOI,
			PMID:          paper.ExternalIDs.PubMed,
			Title:         paper.Title,
			Venue:         paper.Venue,
			CitationCount: paper.CitationCount,
			PublishedDate: paper.PublicationDate,
			Abstract:      paper.Abstract,
			SourceName:    a.Name(),
		}
		if paper.Year > 0 {
			rec.Year = fmt.Sprintf("%d", paper.Year)
		}
		for i, au := range paper.Authors {
			if i > 0 {
				rec.Authors += ", "
			}
			rec.Authors += au.Name
		}
		if rec.DOI != "" {
			rec.URL = "https://doi.org/" + rec.DOI
		}
		records = append(records, rec)
	}
	return records, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string `json:"paperId"`
	Title           string `json:"title"`
	Abstract        string `json:"abstract"`
	Venue           string `json:"venue"`
	Year            int    `json:"year"`
	PublicationDate string `json:"publicationDate"`
	CitationCount   int    `json:"citationCount"`
	Authors         []struct {
		AuthorID string `json:"authorId"`
		Name     string `json:"name"`
	} `json:"authors"`
	ExternalIDs struct {
		DOI    string `json:"DOI"`
		PubMed string `json:"PubMed"`
	} `json:"externalIds"`
}
