// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litsearch/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review past search runs",
	Long: `History lists past search runs from the local database. Use show with
a run id for per-source detail, or export to dump runs as YAML.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := history.Open(historyConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tWHEN\tQUERY\tSOURCES\tRAW\tRETURNED\tELAPSED")
		for _, run := range runs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d/%d\t%d\t%d\t%dms\n",
				run.ID, run.StartedAt.Local().Format(time.DateTime), run.Query,
				run.SuccessfulSources, run.SourcesQueried,
				run.RawRecords, run.Returned, run.ElapsedMS)
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one run with per-source detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}

		store, err := history.Open(historyConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.GetRun(context.Background(), id)
		if err != nil {
			return err
		}

		fmt.Printf("run %d: %q\n", run.ID, run.Query)
		fmt.Printf("  started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
		fmt.Printf("  elapsed:  %dms\n", run.ElapsedMS)
		fmt.Printf("  records:  %d raw, %d after dedup, %d returned\n",
			run.RawRecords, run.AfterDedup, run.Returned)
		fmt.Printf("  removed:  %d by DOI, %d by PMID, %d by trial id, %d by title/author\n",
			run.DupByDOI, run.DupByPMID, run.DupByTrialID, run.DupByTitleAuthor)
		fmt.Println("  sources:")
		for _, src := range run.Sources {
			if src.Error != "" {
				fmt.Printf("    %-18s failed: %s\n", src.SourceName, src.Error)
			} else {
				fmt.Printf("    %-18s %d records\n", src.SourceName, src.RecordCount)
			}
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recent runs as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := history.Open(historyConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		return store.ExportYAML(context.Background(), os.Stdout, limit)
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum runs to list")
	historyExportCmd.Flags().Int("limit", 100, "maximum runs to export")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
