// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/litsearch/internal/httputil"
	"github.com/pdiddy/litsearch/pkg/types"
)

// nihReporterAPIBase is the NIH RePORTER v2 project search endpoint.
// Declared as a var so tests can substitute an httptest server.
var nihReporterAPIBase = "https://api.reporter.nih.gov/v2/projects/search"

// nihReporterPageCap is the largest page the RePORTER search endpoint
// accepts per request.
const nihReporterPageCap = 20

// nihReporterFiscalYears is how many recent fiscal years a search covers.
const nihReporterFiscalYears = 6

// NIHReporterAdapter queries the NIH RePORTER v2 API for funded research
// projects. Projects carry no DOI or PMID; the project number is the
// identity, principal investigators stand in for the author string, and the
// awardee organization for the venue.
type NIHReporterAdapter struct {
	Client    *http.Client
	Config    types.SourceConfig
	UserAgent string

	// Now is the clock for the fiscal-year window; tests pin it.
	Now func() time.Time
}

// Name returns the adapter identifier.
func (a *NIHReporterAdapter) Name() string { return "nih_reporter" }

// Search queries recent projects whose title, terms, or abstract match.
func (a *NIHReporterAdapter) Search(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if query == "" {
		return nil, fmt.Errorf("empty NIH RePORTER query")
	}
	limit = clampLimit(limit, a.Config, 10)
	if limit > nihReporterPageCap {
		limit = nihReporterPageCap
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	thisYear := now().Year()
	years := make([]int, 0, nihReporterFiscalYears)
	for y := thisYear - nihReporterFiscalYears + 1; y <= thisYear; y++ {
		years = append(years, y)
	}

	body, err := json.Marshal(nihReporterRequest{
		Criteria: nihReporterCriteria{
			AdvancedTextSearch: nihReporterTextSearch{
				Operator:    "and",
				SearchField: "projecttitle,terms,abstracttext",
				SearchText:  query,
			},
			FiscalYears: years,
		},
		IncludeFields: []string{
			"ProjectNum", "ProjectTitle", "AbstractText", "OrgName",
			"PrincipalInvestigators", "ProjectStartDate", "ProjectEndDate",
		},
		Limit:     limit,
		SortField: "project_start_date",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding NIH RePORTER request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, nihReporterAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("NIH RePORTER API request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, a.Name()); err != nil {
		return nil, err
	}

	var nr nihReporterResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("parsing NIH RePORTER response: %w", err)
	}

	records := make([]types.Record, 0, len(nr.Results))
	for _, proj := range nr.Results {
		var pis []string
		for _, pi := range proj.PrincipalInvestigators {
			if pi.FullName != "" {
				pis = append(pis, pi.FullName)
			}
		}

		status := "Completed"
		if proj.ProjectEndDate > proj.ProjectStartDate {
			status = "Active"
		}

		rec := types.Record{
			TrialID:       proj.ProjectNum,
			Title:         proj.ProjectTitle,
			Authors:       strings.Join(pis, "; "),
			Venue:         proj.OrgName,
			Abstract:      proj.AbstractText,
			SourceName:    a.Name(),
			TrialStatus:   status,
			PublishedDate: proj.ProjectStartDate,
		}
		if proj.ProjectNum != "" {
			rec.URL = "https://reporter.nih.gov/project-details/" + proj.ProjectNum
		}
		records = append(records, rec)
	}
	return records, nil
}

// NIH RePORTER v2 API JSON structures (the fields we send and consume).
type nihReporterRequest struct {
	Criteria      nihReporterCriteria `json:"criteria"`
	IncludeFields []string            `json:"include_fields"`
	Offset        int                 `json:"offset"`
	Limit         int                 `json:"limit"`
	SortField     string              `json:"sort_field"`
	SortOrder     string              `json:"sort_order"`
}

type nihReporterCriteria struct {
	AdvancedTextSearch nihReporterTextSearch `json:"advanced_text_search"`
	FiscalYears        []int                 `json:"fiscal_years"`
}

type nihReporterTextSearch struct {
	Operator    string `json:"operator"`
	SearchField string `json:"search_field"`
	SearchText  string `json:"search_text"`
}

type nihReporterResponse struct {
	Results []struct {
		ProjectNum             string `json:"project_num"`
		ProjectTitle           string `json:"project_title"`
		AbstractText           string `json:"abstract_text"`
		OrgName                string `json:"org_name"`
		ProjectStartDate       string `json:"project_start_date"`
		ProjectEndDate         string `json:"project_end_date"`
		PrincipalInvestigators []struct {
			FullName string `json:"full_name"`
		} `json:"principal_investigators"`
	} `json:"results"`
}
