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

// clinicalTrialsAPIBase is the ClinicalTrials.gov v2 studies endpoint.
// Declared as a var so tests can substitute an httptest server.
var clinicalTrialsAPIBase = "https://clinicaltrials.gov/api/v2/studies"

// ClinicalTrialsAdapter queries the ClinicalTrials.gov v2 API. Trial
// records carry no DOI or PMID; their NCT number is the identity and the
// lead sponsor stands in for the author string.
type ClinicalTrialsAdapter struct {
	Client    *http.Client
	Config    types.SourceConfig
	UserAgent string
}

// Name returns the adapter identifier.
func (a *ClinicalTrialsAdapter) Name() string { return "clinical_trials" }

// Search queries registered studies matching the term.
func (a *ClinicalTrialsAdapter) Search(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if query == "" {
		return nil, fmt.Errorf("empty ClinicalTrials query")
	}
	limit = clampLimit(limit, a.Config, 10)

	params := url.Values{
		"query.term": {query},
		"pageSize":   {fmt.Sprintf("%d", limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, clinicalTrialsAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("ClinicalTrials API request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, a.Name()); err != nil {
		return nil, err
	}

	var cr clinicalTrialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing ClinicalTrials response: %w", err)
	}

	records := make([]types.Record, 0, len(cr.Studies))
	for _, study := range cr.Studies {
		ps := study.ProtocolSection

		var interventions []string
		for _, iv := range ps.ArmsInterventionsModule.Interventions {
			if iv.Name != "" {
				interventions = append(interventions, iv.Name)
			}
		}

		nctID := ps.IdentificationModule.NCTID
		rec := types.Record{
			TrialID:       nctID,
			Title:         ps.IdentificationModule.BriefTitle,
			Authors:       ps.SponsorCollaboratorsModule.LeadSponsor.Name,
			Venue:         "ClinicalTrials.gov",
			Abstract:      ps.DescriptionModule.BriefSummary,
			SourceName:    a.Name(),
			TrialStatus:   ps.StatusModule.OverallStatus,
			Conditions:    strings.Join(ps.ConditionsModule.Conditions, ", "),
			Interventions: strings.Join(interventions, ", "),
			PublishedDate: ps.StatusModule.StartDateStruct.Date,
		}
		if nctID != "" {
			rec.URL = "https://clinicaltrials.gov/study/" + nctID
		}
		records = append(records, rec)
	}
	return records, nil
}

// ClinicalTrials.gov v2 API JSON structures (the fields we consume).
type clinicalTrialsResponse struct {
	Studies []struct {
		ProtocolSection struct {
			IdentificationModule struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			StatusModule struct {
				OverallStatus   string `json:"overallStatus"`
				StartDateStruct struct {
					Date string `json:"date"`
				} `json:"startDateStruct"`
			} `json:"statusModule"`
			SponsorCollaboratorsModule struct {
				LeadSponsor struct {
					Name string `json:"name"`
				} `json:"leadSponsor"`
			} `json:"sponsorCollaboratorsModule"`
			DescriptionModule struct {
				BriefSummary string `json:"briefSummary"`
			} `json:"descriptionModule"`
			ConditionsModule struct {
				Conditions []string `json:"conditions"`
			} `json:"conditionsModule"`
			ArmsInterventionsModule struct {
				Interventions []struct {
					Name string `json:"name"`
				} `json:"interventions"`
			} `json:"armsInterventionsModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}
