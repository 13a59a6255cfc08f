// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/litsearch/pkg/types"
)

func preprintSample(total int, papers ...string) string {
	return fmt.Sprintf(`{
		"messages": [{"total": %d, "status": "ok"}],
		"collection": [%s]
	}`, total, strings.Join(papers, ","))
}

func preprintPaper(doi, title, abstract, date string) string {
	return fmt.Sprintf(`{"doi":%q,"title":%q,"authors":"Lau K; Mehta R","date":%q,"category":"neuroscience","abstract":%q}`,
		doi, title, date, abstract)
}

func TestPreprintSearchFiltersListing(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fmt.Fprint(w, preprintSample(2,
			preprintPaper("10.1101/hit.1", "Microglia activation in neurodegeneration", "Brain microglia drive neural inflammation.", "2026-08-10"),
			preprintPaper("10.1101/miss.1", "Yeast fermentation kinetics", "Ethanol production at scale.", "2026-08-11"),
		))
	}))
	defer ts.Close()

	swapBase(t, &preprintAPIBase, ts.URL)

	a := NewPreprintAdapter(ts.Client(), types.SourceConfig{}, "litsearch-test", "biorxiv")
	records, err := a.Search(context.Background(), "microglia brain", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("got %d records, want the matching paper only", len(records))
	}
	rec := records[0]
	if rec.DOI != "10.1101/hit.1" {
		t.Errorf("kept %q, want the microglia paper", rec.DOI)
	}
	if rec.SourceName != "biorxiv" || rec.Venue != "biorxiv" {
		t.Errorf("source/venue = %q / %q", rec.SourceName, rec.Venue)
	}
	if rec.Year != "2026" {
		t.Errorf("year = %q", rec.Year)
	}
	if rec.URL != "https://www.biorxiv.org/content/10.1101/hit.1" {
		t.Errorf("url = %q", rec.URL)
	}

	// Single page: the listing total was reached on the first fetch.
	if len(paths) != 1 {
		t.Errorf("fetched %d pages, want 1", len(paths))
	}
	if !strings.Contains(paths[0], "/biorxiv/") || !strings.HasSuffix(paths[0], "/0") {
		t.Errorf("path = %q", paths[0])
	}
}

func TestPreprintSearchPaginates(t *testing.T) {
	var cursors []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		cursor := parts[len(parts)-1]
		cursors = append(cursors, cursor)

		// Report more papers than one page holds so the adapter pages on.
		if cursor == "0" {
			papers := make([]string, preprintPageSize)
			for i := range papers {
				papers[i] = preprintPaper(fmt.Sprintf("10.1101/p%d", i), "CRISPR screening methods", "Gene editing screens.", "2026-08-01")
			}
			fmt.Fprint(w, preprintSample(preprintPageSize+1, papers...))
			return
		}
		fmt.Fprint(w, preprintSample(preprintPageSize+1,
			preprintPaper("10.1101/last", "CRISPR delivery vectors", "Viral vectors for gene editing.", "2026-08-02")))
	}))
	defer ts.Close()

	swapBase(t, &preprintAPIBase, ts.URL)

	a := NewPreprintAdapter(ts.Client(), types.SourceConfig{}, "", "medrxiv")
	records, err := a.Search(context.Background(), "crispr gene editing", 200)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(cursors) != 2 || cursors[0] != "0" || cursors[1] != "100" {
		t.Errorf("cursors = %v, want [0 100]", cursors)
	}
	if len(records) != preprintPageSize+1 {
		t.Errorf("got %d records, want %d", len(records), preprintPageSize+1)
	}
}

func TestPreprintSearchRespectsLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, preprintSample(3,
			preprintPaper("10.1101/a", "Sepsis biomarker panel one", "Sepsis biomarkers.", "2026-08-01"),
			preprintPaper("10.1101/b", "Sepsis biomarker panel two", "Sepsis biomarkers.", "2026-08-02"),
			preprintPaper("10.1101/c", "Sepsis biomarker panel three", "Sepsis biomarkers.", "2026-08-03"),
		))
	}))
	defer ts.Close()

	swapBase(t, &preprintAPIBase, ts.URL)

	a := NewPreprintAdapter(ts.Client(), types.SourceConfig{}, "", "biorxiv")
	records, err := a.Search(context.Background(), "sepsis biomarker", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want limit of 2", len(records))
	}
}
