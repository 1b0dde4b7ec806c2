// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/venue-overlap/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs saved in the result store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.ListRuns(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if runs == nil {
				runs = []store.RunSummary{}
			}
			return enc.Encode(runs)
		}
		return printRuns(out, runs)
	},
}

func printRuns(w io.Writer, runs []store.RunSummary) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tVENUES\tYEARS\tAUTHORS\tCOMMON\tFAILED YEARS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%d-%d\t%d/%d\t%d\t%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04"),
			r.VenueA, r.VenueB, r.StartYear, r.EndYear,
			r.AuthorsA, r.AuthorsB, r.Matches, r.FailedYears)
	}
	return tw.Flush()
}

func init() {
	runsCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(runsCmd)
}
