// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/venue-overlap/internal/dblp"
	"github.com/pdiddy/venue-overlap/internal/overlap"
	"github.com/pdiddy/venue-overlap/internal/report"
	"github.com/pdiddy/venue-overlap/internal/store"
	"github.com/pdiddy/venue-overlap/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect both venues from DBLP and report their common first authors",
	Long: `Run queries DBLP year by year for both configured venues (POPL and ICLR by
default), keeps the first author of every qualifying paper, and prints the
authors found at both venues ranked by their combined paper count.

The report is written to --output, optionally exported as a YAML result file
with --export, and saved to the result store unless --no-store is given.
Years whose queries fail are reported and skipped; the run still completes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyRunFlags(cmd.Flags(), &cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		client := dblp.NewClient(cfg.HTTP)
		res, err := overlap.Run(ctx, cfg, client, slog.Default(), out)
		if err != nil {
			return err
		}

		report.FormatConsole(out, res.Run)

		if cfg.Output != "" {
			if err := report.WriteTextFile(cfg.Output, res.Run); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nResults saved to: %s\n", cfg.Output)
		}

		if export, _ := cmd.Flags().GetString("export"); export != "" {
			if err := report.WriteResultFile(export, cfg, res.Run); err != nil {
				return fmt.Errorf("exporting results: %w", err)
			}
			fmt.Fprintf(out, "Result file written to: %s\n", export)
		}

		if noStore, _ := cmd.Flags().GetBool("no-store"); noStore || cfg.Store.DSN == "" {
			return nil
		}
		if err := saveRun(cmd, cfg.Store, res.Run); err != nil {
			slog.Warn("run not saved to result store", "error", err)
			return nil
		}
		fmt.Fprintf(out, "Run %s saved to %s\n", res.Run.ID, cfg.Store.DSN)
		return nil
	},
}

func saveRun(cmd *cobra.Command, sc types.StoreConfig, run types.Run) error {
	s, err := store.Open(sc)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveRun(cmd.Context(), run)
}

// applyRunFlags copies explicitly set flags over cfg.
func applyRunFlags(fs *pflag.FlagSet, cfg *types.Config) {
	if fs.Changed("start-year") {
		cfg.StartYear, _ = fs.GetInt("start-year")
	}
	if fs.Changed("end-year") {
		cfg.EndYear, _ = fs.GetInt("end-year")
	}
	if fs.Changed("page-size") {
		cfg.PageSize, _ = fs.GetInt("page-size")
	}
	if fs.Changed("page-delay") {
		cfg.PageDelay, _ = fs.GetDuration("page-delay")
	}
	if fs.Changed("year-delay") {
		cfg.YearDelay, _ = fs.GetDuration("year-delay")
	}
	if fs.Changed("parallel") {
		cfg.Parallel, _ = fs.GetBool("parallel")
	}
	if fs.Changed("output") {
		cfg.Output, _ = fs.GetString("output")
	}
	if fs.Changed("base-url") {
		cfg.HTTP.BaseURL, _ = fs.GetString("base-url")
	}
}

func init() {
	def := types.DefaultConfig()
	runCmd.Flags().Int("start-year", def.StartYear, "first year of the window (inclusive)")
	runCmd.Flags().Int("end-year", def.EndYear, "last year of the window (inclusive)")
	runCmd.Flags().Int("page-size", def.PageSize, "hits requested per page")
	runCmd.Flags().Duration("page-delay", def.PageDelay, "pause between page requests")
	runCmd.Flags().Duration("year-delay", def.YearDelay, "pause between years")
	runCmd.Flags().Bool("parallel", false, "collect both venues concurrently")
	runCmd.Flags().String("output", def.Output, "path of the plain-text report")
	runCmd.Flags().String("export", "", "also write the full result as YAML to this path")
	runCmd.Flags().String("base-url", "", "publication search endpoint (default: DBLP)")
	runCmd.Flags().Bool("no-store", false, "do not save the run to the result store")

	rootCmd.AddCommand(runCmd)
}
