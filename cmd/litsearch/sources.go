// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litsearch/pkg/types"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and their settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := searchConfig()

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tENABLED\tTIMEOUT\tMAX RESULTS\tCREDENTIALS")
		for _, name := range types.DefaultSourcePriority {
			sc := cfg.Sources[name]
			timeout := "default"
			if sc.Timeout > 0 {
				timeout = sc.Timeout.String()
			}
			maxResults := "default"
			if sc.MaxResults > 0 {
				maxResults = fmt.Sprintf("%d", sc.MaxResults)
			}
			creds := "none"
			if sc.APIKey != "" {
				creds = "api key"
			} else if sc.Email != "" {
				creds = "email"
			}
			fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n", name, sc.Enabled, timeout, maxResults, creds)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
