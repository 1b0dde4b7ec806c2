// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/venue-overlap/internal/report"
	"github.com/pdiddy/venue-overlap/internal/store"
	"github.com/pdiddy/venue-overlap/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print a stored run (the latest when no id is given)",
	Args:  cobra.MaximumNArgs(1),
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

		var run *types.Run
		if len(args) == 1 {
			run, err = s.LoadRun(cmd.Context(), args[0])
		} else {
			run, err = s.LatestRun(cmd.Context())
		}
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		return emit(cmd, *run, output)
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <results.yaml>",
	Short: "Print the report held in an exported result file",
	Long: `Render reads a result file written by "run --export" and prints the same
report the run printed, without querying DBLP.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rf, err := report.ReadResultFile(args[0])
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		return emit(cmd, rf.Run, output)
	},
}

// emit prints run to the command's output and, when output is set, also
// writes the plain-text report there.
func emit(cmd *cobra.Command, run types.Run, output string) error {
	report.FormatConsole(cmd.OutOrStdout(), run)
	if output == "" {
		return nil
	}
	if err := report.WriteTextFile(output, run); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nResults saved to: %s\n", output)
	return nil
}

func init() {
	showCmd.Flags().String("output", "", "also write the plain-text report to this path")
	renderCmd.Flags().String("output", "", "also write the plain-text report to this path")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(renderCmd)
}
