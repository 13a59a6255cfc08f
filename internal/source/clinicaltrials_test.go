// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const clinicalTrialsSample = `{
	"studies": [
		{
			"protocolSection": {
				"identificationModule": {
					"nctId": "NCT05500001",
					"briefTitle": "Metformin in Early Alzheimer Disease"
				},
				"statusModule": {
					"overallStatus": "RECRUITING",
					"startDateStruct": {"date": "2025-01-15"}
				},
				"sponsorCollaboratorsModule": {
					"leadSponsor": {"name": "University Hospital Basel"}
				},
				"descriptionModule": {
					"briefSummary": "Randomized trial of metformin for cognitive decline."
				},
				"conditionsModule": {
					"conditions": ["Alzheimer Disease", "Mild Cognitive Impairment"]
				},
				"armsInterventionsModule": {
					"interventions": [
						{"name": "Metformin"},
						{"name": "Placebo"}
					]
				}
			}
		}
	]
}`

func TestClinicalTrialsRequestParams(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"studies":[]}`)
	}))
	defer ts.Close()

	swapBase(t, &clinicalTrialsAPIBase, ts.URL)

	a := &ClinicalTrialsAdapter{Client: ts.Client()}
	if _, err := a.Search(context.Background(), "metformin alzheimer", 12); err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := captured.URL.Query()
	if got := q.Get("query.term"); got != "metformin alzheimer" {
		t.Errorf("query.term = %q", got)
	}
	if got := q.Get("pageSize"); got != "12" {
		t.Errorf("pageSize = %q", got)
	}
	if got := captured.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
}

func TestClinicalTrialsParsesStudies(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, clinicalTrialsSample)
	}))
	defer ts.Close()

	swapBase(t, &clinicalTrialsAPIBase, ts.URL)

	a := &ClinicalTrialsAdapter{Client: ts.Client()}
	records, err := a.Search(context.Background(), "metformin", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.TrialID != "NCT05500001" {
		t.Errorf("trial id = %q", rec.TrialID)
	}
	if rec.DOI != "" || rec.PMID != "" {
		t.Errorf("trial record carries publication identifiers: %q / %q", rec.DOI, rec.PMID)
	}
	if rec.Authors != "University Hospital Basel" {
		t.Errorf("authors = %q", rec.Authors)
	}
	if rec.TrialStatus != "RECRUITING" {
		t.Errorf("status = %q", rec.TrialStatus)
	}
	if rec.Conditions != "Alzheimer Disease, Mild Cognitive Impairment" {
		t.Errorf("conditions = %q", rec.Conditions)
	}
	if rec.Interventions != "Metformin, Placebo" {
		t.Errorf("interventions = %q", rec.Interventions)
	}
	if rec.PublishedDate != "2025-01-15" {
		t.Errorf("published date = %q", rec.PublishedDate)
	}
	if rec.URL != "https://clinicaltrials.gov/study/NCT05500001" {
		t.Errorf("url = %q", rec.URL)
	}
	if rec.Venue != "ClinicalTrials.gov" {
		t.Errorf("venue = %q", rec.Venue)
	}
}
