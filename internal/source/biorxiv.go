// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/litsearch/internal/httputil"
	"github.com/pdiddy/litsearch/pkg/types"
)

// preprintAPIBase is the bioRxiv/medRxiv details endpoint. Declared as a
// var so tests can substitute an httptest server.
var preprintAPIBase = "https://api.biorxiv.org/details"

const (
	// preprintPageSize is fixed by the details API.
	preprintPageSize = 100
	// preprintMaxPages bounds pagination per query.
	preprintMaxPages = 5

	defaultPreprintDaysBack     = 30
	defaultPreprintMinRelevance = 0.5
)

// PreprintAdapter queries the bioRxiv details API, which serves both the
// bioRxiv and medRxiv archives by server name. The API only lists by date
// window, so the adapter pulls the recent window and filters the listing
// against the query with the preprint relevance filter.
type PreprintAdapter struct {
	Client    *http.Client
	Config    types.SourceConfig
	UserAgent string

	// Server selects the archive: "biorxiv" or "medrxiv".
	Server string

	filter *PreprintFilter
}

// NewPreprintAdapter builds an adapter for one preprint server.
func NewPreprintAdapter(client *http.Client, cfg types.SourceConfig, userAgent, server string) *PreprintAdapter {
	return &PreprintAdapter{
		Client:    client,
		Config:    cfg,
		UserAgent: userAgent,
		Server:    server,
		filter:    NewPreprintFilter(),
	}
}

// Name returns the adapter identifier (the server name).
func (a *PreprintAdapter) Name() string { return a.Server }

// Search lists the recent window and keeps the papers scoring above the
// configured relevance floor, best first.
func (a *PreprintAdapter) Search(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if query == "" {
		return nil, fmt.Errorf("empty %s query", a.Server)
	}
	limit = clampLimit(limit, a.Config, 25)

	daysBack := a.Config.DaysBack
	if daysBack <= 0 {
		daysBack = defaultPreprintDaysBack
	}
	minScore := a.Config.MinRelevance
	if minScore <= 0 {
		minScore = defaultPreprintMinRelevance
	}

	end := time.Now()
	start := end.AddDate(0, 0, -daysBack)

	var all []types.Record
	for page := 0; page < preprintMaxPages; page++ {
		batch, total, err := a.fetchPage(ctx, start, end, page*preprintPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(all) >= total || len(batch) == 0 {
			break
		}
	}

	return a.filter.Filter(all, query, minScore, limit), nil
}

func (a *PreprintAdapter) fetchPage(ctx context.Context, start, end time.Time, cursor int) ([]types.Record, int, error) {
	reqURL := fmt.Sprintf("%s/%s/%s/%s/%d",
		preprintAPIBase, a.Server, start.Format("2006-01-02"), end.Format("2006-01-02"), cursor)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("%s API request: %w", a.Server, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, a.Name()); err != nil {
		return nil, 0, err
	}

	var pr preprintResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, 0, fmt.Errorf("parsing %s response: %w", a.Server, err)
	}

	total := 0
	if len(pr.Messages) > 0 {
		total = pr.Messages[0].Total
	}

	records := make([]types.Record, 0, len(pr.Collection))
	for _, paper := range pr.Collection {
		rec := types.Record{
			DOI:           paper.DOI,
			Title:         paper.Title,
			Authors:       paper.Authors,
			Venue:         a.Server,
			PublishedDate: paper.Date,
			Abstract:      paper.Abstract,
			SourceName:    a.Name(),
		}
		if len(paper.Date) >= 4 {
			rec.Year = paper.Date[:4]
		}
		if paper.DOI != "" {
			rec.URL = fmt.Sprintf("https://www.%s.org/content/%s", a.Server, paper.DOI)
		}
		records = append(records, rec)
	}
	return records, total, nil
}

// bioRxiv details API JSON structures.
type preprintResponse struct {
	Messages []struct {
		Total  int    `json:"total"`
		Status string `json:"status"`
	} `json:"messages"`
	Collection []struct {
		DOI      string `json:"doi"`
		Title    string `json:"title"`
		Authors  string `json:"authors"`
		Date     string `json:"date"`
		Category string `json:"category"`
		Abstract string `json:"abstract"`
	} `json:"collection"`
}
