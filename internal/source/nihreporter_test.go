// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

const nihReporterSample = `{
	"results": [
		{
			"project_num": "5R01AI123456-04",
			"project_title": "Host-directed therapies for drug-resistant tuberculosis",
			"abstract_text": "This project evaluates host-directed adjunct therapies.",
			"org_name": "Johns Hopkins University",
			"project_start_date": "2022-07-01",
			"project_end_date": "2027-06-30",
			"principal_investigators": [
				{"full_name": "Maria Alvarez"},
				{"full_name": "Dev Patel"}
			]
		},
		{
			"project_num": "1R21HL998877-01",
			"project_title": "Wearable sensors for heart failure monitoring",
			"abstract_text": "",
			"org_name": "Oregon Health and Science University",
			"project_start_date": "2024-09-01",
			"project_end_date": "",
			"principal_investigators": []
		}
	]
}`

func TestNIHReporterRequestBody(t *testing.T) {
	var captured nihReporterRequest
	var contentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer ts.Close()

	swapBase(t, &nihReporterAPIBase, ts.URL)

	a := &NIHReporterAdapter{
		Client: ts.Client(),
		Now:    func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) },
	}
	if _, err := a.Search(context.Background(), "tuberculosis therapy", 12); err != nil {
		t.Fatalf("Search: %v", err)
	}

	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	search := captured.Criteria.AdvancedTextSearch
	if search.SearchText != "tuberculosis therapy" {
		t.Errorf("search_text = %q", search.SearchText)
	}
	if search.Operator != "and" || search.SearchField != "projecttitle,terms,abstracttext" {
		t.Errorf("search clause = %+v", search)
	}
	if want := []int{2020, 2021, 2022, 2023, 2024, 2025}; !reflect.DeepEqual(captured.Criteria.FiscalYears, want) {
		t.Errorf("fiscal_years = %v, want %v", captured.Criteria.FiscalYears, want)
	}
	if captured.Limit != 12 {
		t.Errorf("limit = %d", captured.Limit)
	}
	if captured.SortField != "project_start_date" || captured.SortOrder != "desc" {
		t.Errorf("sort = %q %q", captured.SortField, captured.SortOrder)
	}
}

func TestNIHReporterLimitCappedToPageSize(t *testing.T) {
	var captured nihReporterRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer ts.Close()

	swapBase(t, &nihReporterAPIBase, ts.URL)

	a := &NIHReporterAdapter{Client: ts.Client()}
	if _, err := a.Search(context.Background(), "sepsis", 50); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if captured.Limit != nihReporterPageCap {
		t.Errorf("limit = %d, want %d", captured.Limit, nihReporterPageCap)
	}
}

func TestNIHReporterParsesProjects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, nihReporterSample)
	}))
	defer ts.Close()

	swapBase(t, &nihReporterAPIBase, ts.URL)

	a := &NIHReporterAdapter{Client: ts.Client()}
	records, err := a.Search(context.Background(), "tuberculosis", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	rec := records[0]
	if rec.TrialID != "5R01AI123456-04" {
		t.Errorf("trial id = %q", rec.TrialID)
	}
	if rec.DOI != "" || rec.PMID != "" {
		t.Errorf("project record carries publication identifiers: %q / %q", rec.DOI, rec.PMID)
	}
	if rec.Authors != "Maria Alvarez; Dev Patel" {
		t.Errorf("authors = %q", rec.Authors)
	}
	if rec.Venue != "Johns Hopkins University" {
		t.Errorf("venue = %q", rec.Venue)
	}
	if rec.TrialStatus != "Active" {
		t.Errorf("status = %q, want Active while the award end date is ahead", rec.TrialStatus)
	}
	if rec.PublishedDate != "2022-07-01" {
		t.Errorf("published date = %q", rec.PublishedDate)
	}
	if rec.URL != "https://reporter.nih.gov/project-details/5R01AI123456-04" {
		t.Errorf("url = %q", rec.URL)
	}
	if rec.SourceName != "nih_reporter" {
		t.Errorf("source = %q", rec.SourceName)
	}

	if records[1].Authors != "" {
		t.Errorf("authors = %q, want empty with no investigators", records[1].Authors)
	}
	if records[1].TrialStatus != "Completed" {
		t.Errorf("status = %q, want Completed with no end date", records[1].TrialStatus)
	}
}
