// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/litsearch/pkg/types"
)

const pubmedESummarySample = `{
	"result": {
		"uids": ["200", "100"],
		"100": {
			"title": "Statin therapy outcomes",
			"fulljournalname": "JAMA",
			"pubdate": "2024 Mar 15",
			"authors": [{"name": "Reyes M"}, {"name": "Koch D"}],
			"articleids": [
				{"idtype": "pubmed", "value": "100"},
				{"idtype": "doi", "value": "10.1001/jama.100"}
			]
		},
		"200": {
			"title": "Statin adherence study",
			"fulljournalname": "Lancet",
			"pubdate": "2025",
			"authors": [],
			"articleids": []
		}
	}
}`

func pubmedTestServer(t *testing.T, onSearch, onSummary func(r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch", func(w http.ResponseWriter, r *http.Request) {
		if onSearch != nil {
			onSearch(r)
		}
		fmt.Fprint(w, `{"esearchresult":{"count":"2","idlist":["200","100"]}}`)
	})
	mux.HandleFunc("/esummary", func(w http.ResponseWriter, r *http.Request) {
		if onSummary != nil {
			onSummary(r)
		}
		fmt.Fprint(w, pubmedESummarySample)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	swapBase(t, &pubmedESearchBase, ts.URL+"/esearch")
	swapBase(t, &pubmedESummaryBase, ts.URL+"/esummary")
	return ts
}

func TestPubMedSearchRequestParams(t *testing.T) {
	var searchReq, summaryReq *http.Request
	ts := pubmedTestServer(t,
		func(r *http.Request) { searchReq = r },
		func(r *http.Request) { summaryReq = r },
	)

	a := &PubMedAdapter{
		Client: ts.Client(),
		Config: types.SourceConfig{APIKey: "ncbi-key-1"},
	}
	if _, err := a.Search(context.Background(), "statin therapy", 7); err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := searchReq.URL.Query()
	if got := q.Get("term"); got != "statin therapy" {
		t.Errorf("term = %q", got)
	}
	if got := q.Get("retmax"); got != "7" {
		t.Errorf("retmax = %q", got)
	}
	if got := q.Get("sort"); got != "relevance" {
		t.Errorf("sort = %q", got)
	}
	if got := q.Get("api_key"); got != "ncbi-key-1" {
		t.Errorf("api_key = %q", got)
	}

	sq := summaryReq.URL.Query()
	if got := sq.Get("id"); got != "200,100" {
		t.Errorf("summary id = %q", got)
	}
	if got := sq.Get("api_key"); got != "ncbi-key-1" {
		t.Errorf("summary api_key = %q", got)
	}
}

func TestPubMedSearchParsesRecordsInRelevanceOrder(t *testing.T) {
	ts := pubmedTestServer(t, nil, nil)

	a := &PubMedAdapter{Client: ts.Client()}
	records, err := a.Search(context.Background(), "statin", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// The uids index, not JSON key order, drives output order.
	if records[0].PMID != "200" || records[1].PMID != "100" {
		t.Errorf("order = %q, %q; want 200, 100", records[0].PMID, records[1].PMID)
	}

	second := records[1]
	if second.DOI != "10.1001/jama.100" {
		t.Errorf("doi = %q", second.DOI)
	}
	if second.Authors != "Reyes M, Koch D" {
		t.Errorf("authors = %q", second.Authors)
	}
	if second.Year != "2024" {
		t.Errorf("year = %q", second.Year)
	}
	if second.URL != "https://pubmed.ncbi.nlm.nih.gov/100/" {
		t.Errorf("url = %q", second.URL)
	}
	if second.SourceName != "pubmed" {
		t.Errorf("source = %q", second.SourceName)
	}
}

func TestPubMedSearchNoHits(t *testing.T) {
	summaryCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"esearchresult":{"count":"0","idlist":[]}}`)
	})
	mux.HandleFunc("/esummary", func(w http.ResponseWriter, r *http.Request) {
		summaryCalled = true
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	swapBase(t, &pubmedESearchBase, ts.URL+"/esearch")
	swapBase(t, &pubmedESummaryBase, ts.URL+"/esummary")

	a := &PubMedAdapter{Client: ts.Client()}
	records, err := a.Search(context.Background(), "zz-no-such-topic", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
	if summaryCalled {
		t.Error("esummary called despite empty esearch result")
	}
}

func TestPubMedYear(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024 Mar 15", "2024"},
		{"2025", "2025"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := pubmedYear(tt.in); got != tt.want {
			t.Errorf("pubmedYear(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
