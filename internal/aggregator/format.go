// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregator

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litsearch/internal/dedup"
	"github.com/pdiddy/litsearch/pkg/types"
)

// report is the serialized shape for JSON and YAML output.
type report struct {
	Records []types.Record `json:"records" yaml:"records"`
	Stats   types.RunStats `json:"stats" yaml:"stats"`
}

// FormatJSON writes the result as indented JSON.
func FormatJSON(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report{Records: res.Records, Stats: res.Stats})
}

// FormatYAML writes the result as YAML.
func FormatYAML(w io.Writer, res Result) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(report{Records: res.Records, Stats: res.Stats})
}

// FormatTable writes a ranked human-readable table followed by a one-line
// run summary and any per-source failures.
func FormatTable(w io.Writer, res Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tSOURCE\tYEAR\tTITLE\tFIRST AUTHOR")
	for i, rec := range res.Records {
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\t%s\t%s\n",
			i+1, rec.FinalScore, rec.SourceName, rec.Year,
			truncate(rec.Title, 70), dedup.FirstAuthor(rec.Authors))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := res.Stats
	fmt.Fprintf(w, "\n%d results from %d/%d sources (%d raw, %d duplicates removed) in %s\n",
		s.Returned, s.SuccessfulSources, s.SourcesQueried,
		s.RawRecords, s.Dedup.Removed(), s.Elapsed.Round(1e6))
	names := make([]string, 0, len(s.SourceErrors))
	for name := range s.SourceErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, s.SourceErrors[name])
	}
	return nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
