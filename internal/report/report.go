// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a comparison run as a plain-text report file, as
// console output, and as a YAML result file that can be rendered again
// without querying the API.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdiddy/venue-overlap/pkg/types"
)

const (
	fileRule    = 60
	consoleRule = 80
)

// ByYear returns a copy of papers sorted by ascending year, keeping the
// original order within a year.
func ByYear(papers []types.PaperRecord) []types.PaperRecord {
	out := make([]types.PaperRecord, len(papers))
	copy(out, papers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Year < out[j].Year
	})
	return out
}

// WriteText writes the report file body for run to w: a header, summary
// counts, and every match in rank order with both venues' papers by year.
func WriteText(w io.Writer, run types.Run) error {
	ew := &errWriter{w: w}
	ew.printf("Analysis of First Author Intersection between %s and %s\n", run.VenueA, run.VenueB)
	ew.printf("Authors with the same name may exist!\n")
	ew.printf("Time range: %d - %d\n", run.StartYear, run.EndYear)
	ew.printf("%s\n\n", strings.Repeat("=", fileRule))
	ew.printf("Statistics:\n")
	ew.printf("  %s first authors: %d\n", run.VenueA, run.AuthorsA)
	ew.printf("  %s first authors: %d\n", run.VenueB, run.AuthorsB)
	ew.printf("  Common authors: %d\n\n", len(run.Matches))

	if len(run.Matches) == 0 {
		return ew.err
	}

	ew.printf("Detailed list:\n")
	ew.printf("%s\n", strings.Repeat("=", fileRule))
	for i, m := range run.Matches {
		ew.printf("\n%d. %s\n", i+1, m.DisplayName)
		ew.printf("   DBLP PID: %s\n", m.Key)
		ew.printf("   %s (%d papers):\n", run.VenueA, m.CountA)
		writePapers(ew, m.PapersA)
		ew.printf("   %s (%d papers):\n", run.VenueB, m.CountB)
		writePapers(ew, m.PapersB)
	}
	return ew.err
}

// WriteTextFile writes the report for run to path.
func WriteTextFile(path string, run types.Run) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := WriteText(f, run); err != nil {
		f.Close()
		return fmt.Errorf("writing report file: %w", err)
	}
	return f.Close()
}

// FormatConsole writes a human-readable rendering of run to w.
func FormatConsole(w io.Writer, run types.Run) {
	rule := strings.Repeat("=", consoleRule)
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "Authors who published as first author in both %s and %s (%d-%d)\n",
		run.VenueA, run.VenueB, run.StartYear, run.EndYear)
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\nStatistics:\n")
	fmt.Fprintf(w, "  Total %s first authors: %d\n", run.VenueA, run.AuthorsA)
	fmt.Fprintf(w, "  Total %s first authors: %d\n", run.VenueB, run.AuthorsB)
	fmt.Fprintf(w, "  Common authors: %d\n", len(run.Matches))
	if run.FailedYears > 0 {
		fmt.Fprintf(w, "  Years with failed queries: %d (results may be incomplete)\n", run.FailedYears)
	}

	if len(run.Matches) == 0 {
		fmt.Fprintf(w, "\nNo authors found who published as first author in both conferences.\n")
		return
	}

	fmt.Fprintf(w, "\nDetailed list:\n")
	for i, m := range run.Matches {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, m.DisplayName)
		fmt.Fprintf(w, "   DBLP PID: %s\n", m.Key)
		fmt.Fprintf(w, "   %s first author papers (%d papers):\n", run.VenueA, m.CountA)
		for _, p := range ByYear(m.PapersA) {
			fmt.Fprintf(w, "      [%d] %s\n", p.Year, p.Title)
		}
		fmt.Fprintf(w, "   %s first author papers (%d papers):\n", run.VenueB, m.CountB)
		for _, p := range ByYear(m.PapersB) {
			fmt.Fprintf(w, "      [%d] %s\n", p.Year, p.Title)
		}
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "Total: %d authors\n", len(run.Matches))
	fmt.Fprintln(w, rule)
}

func writePapers(ew *errWriter, papers []types.PaperRecord) {
	for _, p := range ByYear(papers) {
		ew.printf("      [%d] %s\n", p.Year, p.Title)
	}
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
