// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/litsearch/internal/httputil"
	"github.com/pdiddy/litsearch/pkg/types"
)

// NCBI eUtils endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedESearchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedESummaryBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

// PubMedAdapter queries PubMed through the NCBI eUtils esearch/esummary
// pair. An API key raises the NCBI rate limit but is optional.
type PubMedAdapter struct {
	Client    *http.Client
	Config    types.SourceConfig
	UserAgent string
}

// Name returns the adapter identifier.
func (a *PubMedAdapter) Name() string { return "pubmed" }

// Search runs esearch for matching PMIDs, then esummary for their metadata.
func (a *PubMedAdapter) Search(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if query == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}
	limit = clampLimit(limit, a.Config, 10)

	pmids, err := a.esearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(pmids) == 0 {
		return nil, nil
	}
	return a.esummary(ctx, pmids)
}

func (a *PubMedAdapter) esearch(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {fmt.Sprintf("%d", limit)},
		"retmode": {"json"},
		"sort":    {"relevance"},
	}
	if a.Config.APIKey != "" {
		params.Set("api_key", a.Config.APIKey)
	}

	var sr pubmedESearchResponse
	if err := a.getJSON(ctx, pubmedESearchBase+"?"+params.Encode(), &sr); err != nil {
		return nil, err
	}
	return sr.ESearchResult.IDList, nil
}

func (a *PubMedAdapter) esummary(ctx context.Context, pmids []string) ([]types.Record, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"json"},
	}
	if a.Config.APIKey != "" {
		params.Set("api_key", a.Config.APIKey)
	}

	var sr pubmedESummaryResponse
	if err := a.getJSON(ctx, pubmedESummaryBase+"?"+params.Encode(), &sr); err != nil {
		return nil, err
	}

	// The result object carries one key per UID plus a "uids" index; walk
	// the index so output order matches esearch relevance order.
	var uids []string
	if err := json.Unmarshal(sr.Result["uids"], &uids); err != nil {
		return nil, fmt.Errorf("parsing PubMed summary uids: %w", err)
	}

	records := make([]types.Record, 0, len(uids))
	for _, uid := range uids {
		raw, ok := sr.Result[uid]
		if !ok {
			continue
		}
		var doc pubmedSummary
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}

		var authors []string
		for _, au := range doc.Authors {
			authors = append(authors, au.Name)
		}

		rec := types.Record{
			PMID:          uid,
			Title:         doc.Title,
			Authors:       strings.Join(authors, ", "),
			Venue:         doc.FullJournalName,
			Year:          pubmedYear(doc.PubDate),
			PublishedDate: doc.PubDate,
			URL:           "https://pubmed.ncbi.nlm.nih.gov/" + uid + "/",
			SourceName:    a.Name(),
		}
		for _, id := range doc.ArticleIDs {
			if id.IDType == "doi" {
				rec.DOI = id.Value
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (a *PubMedAdapter) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return fmt.Errorf("PubMed API request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, a.Name()); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing PubMed response: %w", err)
	}
	return nil
}

// pubmedYear extracts the leading year from a pubdate like "2024 Mar 15".
func pubmedYear(pubDate string) string {
	fields := strings.Fields(pubDate)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NCBI eUtils JSON structures.
type pubmedESearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedESummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedSummary struct {
	Title           string `json:"title"`
	FullJournalName string `json:"fulljournalname"`
	PubDate         string `json:"pubdate"`
	Authors         []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ArticleIDs []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
}
