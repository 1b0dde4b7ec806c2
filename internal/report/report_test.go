// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/venue-overlap/pkg/types"
)

func sampleRun() types.Run {
	return types.Run{
		ID:        "run-1",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		StartYear: 2016,
		EndYear:   2025,
		VenueA:    "POPL",
		VenueB:    "ICLR",
		AuthorsA:  120,
		AuthorsB:  4500,
		Matches: []types.MatchResult{
			{
				Key:         types.IdentityKey{Kind: types.KeyStableID, Value: "12/345"},
				DisplayName: "Alice Smith",
				PapersA: []types.PaperRecord{
					{Year: 2021, Title: "Later POPL"},
					{Year: 2018, Title: "Earlier POPL"},
				},
				PapersB: []types.PaperRecord{{Year: 2020, Title: "An ICLR Paper"}},
				CountA:  2,
				CountB:  1,
			},
			{
				Key:         types.IdentityKey{Kind: types.KeyNormalizedName, Value: "bob jones"},
				DisplayName: "Bob Jones",
				PapersA:     []types.PaperRecord{{Year: 2017, Title: "Bob POPL"}},
				PapersB:     []types.PaperRecord{{Year: 2019, Title: "Bob ICLR"}},
				CountA:      1,
				CountB:      1,
			},
		},
	}
}

func TestByYear(t *testing.T) {
	in := []types.PaperRecord{
		{Year: 2020, Title: "a"}, {Year: 2018, Title: "b"}, {Year: 2020, Title: "c"}, {Year: 2016, Title: "d"},
	}
	got := ByYear(in)
	var titles []string
	for _, p := range got {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, titles)
	assert.Equal(t, "a", in[0].Title, "input must not be reordered")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleRun()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Analysis of First Author Intersection between POPL and ICLR\n"))
	assert.Contains(t, out, "Authors with the same name may exist!")
	assert.Contains(t, out, "Time range: 2016 - 2025")
	assert.Contains(t, out, "  POPL first authors: 120\n")
	assert.Contains(t, out, "  ICLR first authors: 4500\n")
	assert.Contains(t, out, "  Common authors: 2\n")
	assert.Contains(t, out, "   DBLP PID: 12/345\n")
	assert.Contains(t, out, "   POPL (2 papers):\n")

	// Authors follow rank order and papers are year-ascending.
	alice := strings.Index(out, "1. Alice Smith")
	bob := strings.Index(out, "2. Bob Jones")
	require.True(t, alice >= 0 && bob > alice)
	earlier := strings.Index(out, "[2018] Earlier POPL")
	later := strings.Index(out, "[2021] Later POPL")
	require.True(t, earlier >= 0 && later > earlier)
}

func TestWriteTextNoMatches(t *testing.T) {
	run := sampleRun()
	run.Matches = nil
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, run))
	assert.Contains(t, buf.String(), "Common authors: 0")
	assert.NotContains(t, buf.String(), "Detailed list")
}

type failingWriter struct{ n int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.n++
	return 0, os.ErrClosed
}

func TestWriteTextStopsOnError(t *testing.T) {
	fw := &failingWriter{}
	err := WriteText(fw, sampleRun())
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.Equal(t, 1, fw.n)
}

func TestWriteTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "common_authors_result.txt")
	require.NoError(t, WriteTextFile(path, sampleRun()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1. Alice Smith")

	err = WriteTextFile(filepath.Join(t.TempDir(), "missing", "x.txt"), sampleRun())
	assert.Error(t, err)
}

func TestFormatConsole(t *testing.T) {
	var buf bytes.Buffer
	run := sampleRun()
	run.FailedYears = 1
	FormatConsole(&buf, run)
	out := buf.String()

	assert.Contains(t, out, "Authors who published as first author in both POPL and ICLR (2016-2025)")
	assert.Contains(t, out, "Total POPL first authors: 120")
	assert.Contains(t, out, "Years with failed queries: 1")
	assert.Contains(t, out, "POPL first author papers (2 papers):")
	assert.Contains(t, out, "Total: 2 authors")
}

func TestFormatConsoleNoMatches(t *testing.T) {
	var buf bytes.Buffer
	run := sampleRun()
	run.Matches = nil
	FormatConsole(&buf, run)
	assert.Contains(t, buf.String(), "No authors found who published as first author in both conferences.")
	assert.NotContains(t, buf.String(), "failed queries")
}

func TestResultFileRendersSameReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yaml")
	cfg := types.DefaultConfig()
	run := sampleRun()
	require.NoError(t, WriteResultFile(path, cfg, run))

	rf, err := ReadResultFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2016, rf.Config.StartYear)
	assert.Equal(t, "conf/popl", rf.Config.VenueA.StreamKey)
	assert.Equal(t, run.ID, rf.Run.ID)
	assert.False(t, rf.Written.IsZero())

	var want, got bytes.Buffer
	require.NoError(t, WriteText(&want, run))
	require.NoError(t, WriteText(&got, rf.Run))
	assert.Equal(t, want.String(), got.String())
}

func TestReadResultFileErrors(t *testing.T) {
	_, err := ReadResultFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading result file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("run: [unclosed"), 0o644))
	_, err = ReadResultFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing result file")
}
