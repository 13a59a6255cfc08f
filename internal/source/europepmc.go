// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/litsearch/internal/httputil"
	"github.com/pdiddy/litsearch/pkg/types"
)

// europePMCAPIBase is the Europe PMC search endpoint. Declared as a var so
// tests can substitute an httptest server.
var europePMCAPIBase = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

// europePMCYearWindow bounds the query to recent literature.
const europePMCYearWindow = 5

// EuropePMCAdapter queries the Europe PMC REST API.
type EuropePMCAdapter struct {
	Client *http.Client
	Config types.SourceConfig
	// UserAgent is sent with every request.
	UserAgent string
}

// Name returns the adapter identifier.
func (a *EuropePMCAdapter) Name() string { return "europe_pmc" }

// Search queries Europe PMC sorted by citation count, restricted to the
// recent publication-year window.
func (a *EuropePMCAdapter) Search(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if query == "" {
		return nil, fmt.Errorf("empty Europe PMC query")
	}
	limit = clampLimit(limit, a.Config, 10)

	endYear := time.Now().Year()
	fullQuery := fmt.Sprintf("%s AND PUB_YEAR:[%d TO %d]", query, endYear-europePMCYearWindow, endYear)

	params := url.Values{
		"query":      {fullQuery},
		"format":     {"json"},
		"pageSize":   {fmt.Sprintf("%d", limit)},
		"resultType": {"core"},
		"sort":       {"CITED desc"},
	}
	if a.Config.Email != "" {
		params.Set("email", a.Config.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, europePMCAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Europe PMC API request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, a.Name()); err != nil {
		return nil, err
	}

	var er europePMCResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing Europe PMC response: %w", err)
	}

	records := make([]types.Record, 0, len(er.ResultList.Result))
	for _, item := range er.ResultList.Result {
		venue := item.JournalTitle
		if venue == "" {
			venue = item.JournalInfo.Journal.Title
		}

		records = append(records, types.Record{
			DOI:           item.DOI,
			PMID:          item.PMID,
			Title:         item.Title,
			Authors:       item.AuthorString,
			Venue:         venue,
			Year:          item.PubYear,
			CitationCount: item.CitedByCount,
			PublishedDate: item.FirstPublicationDate,
			URL:           europePMCRecordURL(item),
			Abstract:      item.AbstractText,
			SourceName:    a.Name(),
		})
	}
	return records, nil
}

// europePMCRecordURL prefers the PubMed page, then PMC, then the DOI resolver.
func europePMCRecordURL(item europePMCResult) string {
	switch {
	case item.PMID != "":
		return "https://pubmed.ncbi.nlm.nih.gov/" + item.PMID + "/"
	case item.PMCID != "":
		return "https://www.ncbi.nlm.nih.gov/pmc/articles/" + item.PMCID + "/"
	case item.DOI != "":
		return "https://doi.org/" + item.DOI
	default:
		return ""
	}
}

// Europe PMC API JSON structures.
type europePMCResponse struct {
	HitCount   int `json:"hitCount"`
	ResultList struct {
		Result []europePMCResult `json:"result"`
	} `json:"resultList"`
}

type europePMCResult struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	AuthorString         string `json:"authorString"`
	JournalTitle         string `json:"journalTitle"`
	JournalInfo          struct {
		Journal struct {
			Title string `json:"title"`
		} `json:"journal"`
	} `json:"journalInfo"`
	PubYear              string `json:"pubYear"`
	CitedByCount         int    `json:"citedByCount"`
	DOI                  string `json:"doi"`
	PMID                 string `json:"pmid"`
	PMCID                string `json:"pmcid"`
	FirstPublicationDate string `json:"firstPublicationDate"`
	AbstractText         string `json:"abstractText"`
}
