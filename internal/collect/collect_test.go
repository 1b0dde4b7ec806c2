// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/venue-overlap/internal/dblp"
	"github.com/pdiddy/venue-overlap/internal/venue"
	"github.com/pdiddy/venue-overlap/pkg/types"
)

// --- fake fetcher ---

type call struct {
	kind   string // "stream" or "toc"
	key    string
	year   int
	offset int
}

type fakeFetcher struct {
	stream    map[int][]dblp.Record    // year → all records
	toc       map[string][]dblp.Record // toc key → all records
	streamErr map[int]error            // year → error
	errAt     map[int]int              // year → offset that fails
	calls     []call
}

func paginate(all []dblp.Record, offset, limit int) dblp.Page {
	if offset >= len(all) {
		return dblp.Page{Total: len(all)}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return dblp.Page{Records: all[offset:end], Total: len(all)}
}

func (f *fakeFetcher) SearchByStream(_ context.Context, streamKey string, year, offset, limit int) (dblp.Page, error) {
	f.calls = append(f.calls, call{kind: "stream", key: streamKey, year: year, offset: offset})
	if err := f.streamErr[year]; err != nil {
		return dblp.Page{}, err
	}
	if at, ok := f.errAt[year]; ok && at == offset {
		return dblp.Page{}, errors.New("connection reset")
	}
	return paginate(f.stream[year], offset, limit), nil
}

func (f *fakeFetcher) SearchByTOC(_ context.Context, tocKey string, offset, limit int) (dblp.Page, error) {
	f.calls = append(f.calls, call{kind: "toc", key: tocKey, offset: offset})
	return paginate(f.toc[tocKey], offset, limit), nil
}

func (f *fakeFetcher) count(kind string) int {
	n := 0
	for _, c := range f.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

// --- helpers ---

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCollector(f Fetcher, start, end, pageSize int) *Collector {
	return &Collector{
		Fetcher:   f,
		StartYear: start,
		EndYear:   end,
		PageSize:  pageSize,
		Logger:    quietLogger(),
	}
}

func paper(venueLabel, name, pid, title string) dblp.Record {
	entry := dblp.BareAuthor(name)
	if pid != "" {
		entry = dblp.Author(name, pid)
	}
	return dblp.Record{
		Title:   title,
		Venue:   dblp.Labels{venueLabel},
		Type:    "Conference and Workshop Papers",
		Authors: dblp.Authors{Author: dblp.AuthorList{entry}},
	}
}

func journalPaper(number, name, pid, title string) dblp.Record {
	r := paper("Proc. ACM Program. Lang.", name, pid, title)
	r.Type = "Journal Articles"
	r.Number = dblp.Text(number)
	return r
}

func classifier(t *testing.T, v types.VenueConfig) venue.Classifier {
	t.Helper()
	c, err := venue.New(v)
	require.NoError(t, err)
	return c
}

func key(kind types.KeyKind, v string) types.IdentityKey {
	return types.IdentityKey{Kind: kind, Value: v}
}

// --- tests ---

func TestCollectIndexesByIdentityKey(t *testing.T) {
	iclr := types.DefaultConfig().VenueB
	f := &fakeFetcher{stream: map[int][]dblp.Record{
		2019: {
			paper("ICLR", "Alice Smith", "a/1", "Paper One"),
			paper("ICLR", "Bob Jones", "", "Paper Two"),
			paper("ICLR (Workshop)", "Carol White", "c/1", "Workshop Paper"),
		},
		2020: {
			paper("ICLR", "ALICE SMITH", "a/1", "Paper Three"),
			paper("ICLR", "  bob   jones ", "", "Paper Four"),
			{Title: "No Authors", Venue: dblp.Labels{"ICLR"}},
		},
	}}

	res, err := testCollector(f, 2019, 2020, 100).Collect(context.Background(), iclr, classifier(t, iclr))
	require.NoError(t, err)

	idx := res.Index
	assert.Equal(t, types.Venue("ICLR"), idx.Venue())
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []types.IdentityKey{key(types.KeyStableID, "a/1"), key(types.KeyNormalizedName, "bob jones")}, idx.Keys())

	alice, ok := idx.Papers(key(types.KeyStableID, "a/1"))
	require.True(t, ok)
	require.Len(t, alice, 2)
	assert.Equal(t, 2019, alice[0].Year)
	assert.Equal(t, "Alice Smith", alice[0].AuthorName)
	assert.Equal(t, 2020, alice[1].Year)
	assert.Equal(t, "ALICE SMITH", alice[1].AuthorName)

	bob, _ := idx.Papers(key(types.KeyNormalizedName, "bob jones"))
	require.Len(t, bob, 2)
	for _, p := range bob {
		assert.Equal(t, "bob jones", p.NormalizedName)
		assert.Equal(t, types.Venue("ICLR"), p.Venue)
	}

	_, ok = idx.Papers(key(types.KeyStableID, "c/1"))
	assert.False(t, ok, "workshop paper should be excluded")

	require.Len(t, res.Years, 2)
	assert.Equal(t, 2, res.Years[0].Papers)
	assert.Equal(t, 2, res.Years[1].Papers)
}

func TestCollectPaginates(t *testing.T) {
	iclr := types.DefaultConfig().VenueB
	var recs []dblp.Record
	for i := 0; i < 7; i++ {
		recs = append(recs, paper("ICLR", "Author", "", "T"))
	}
	f := &fakeFetcher{stream: map[int][]dblp.Record{2021: recs}}

	res, err := testCollector(f, 2021, 2021, 3).Collect(context.Background(), iclr, classifier(t, iclr))
	require.NoError(t, err)

	var offsets []int
	for _, c := range f.calls {
		offsets = append(offsets, c.offset)
	}
	assert.Equal(t, []int{0, 3, 6}, offsets)
	papers, _ := res.Index.Papers(key(types.KeyNormalizedName, "author"))
	assert.Len(t, papers, 7)
}

func TestCollectStopsAtExactTotal(t *testing.T) {
	iclr := types.DefaultConfig().VenueB
	recs := []dblp.Record{paper("ICLR", "A", "", "1"), paper("ICLR", "B", "", "2")}
	f := &fakeFetcher{stream: map[int][]dblp.Record{2021: recs}}

	_, err := testCollector(f, 2021, 2021, 2).Collect(context.Background(), iclr, classifier(t, iclr))
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("stream"), "offset reaching total should end paging")
}

func TestCollectSurvivesFailedYear(t *testing.T) {
	iclr := types.DefaultConfig().VenueB
	f := &fakeFetcher{
		stream: map[int][]dblp.Record{
			2018: {paper("ICLR", "Alice", "a/1", "2018 paper")},
			2019: {paper("ICLR", "Bob", "b/1", "2019 paper")},
			2020: {paper("ICLR", "Carol", "c/1", "2020 paper")},
		},
		streamErr: map[int]error{2019: errors.New("HTTP 503")},
	}

	var logBuf bytes.Buffer
	c := testCollector(f, 2018, 2020, 100)
	c.Logger = slog.New(slog.NewTextHandler(&logBuf, nil))

	res, err := c.Collect(context.Background(), iclr, classifier(t, iclr))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Index.Len())
	_, ok := res.Index.Papers(key(types.KeyStableID, "b/1"))
	assert.False(t, ok)
	for _, k := range res.Index.Keys() {
		ps, _ := res.Index.Papers(k)
		for _, p := range ps {
			assert.NotEqual(t, 2019, p.Year)
		}
	}
	assert.Equal(t, 1, res.Failures())
	assert.True(t, res.Years[1].Failed)
	assert.Contains(t, logBuf.String(), "fetch failed")
	assert.Contains(t, logBuf.String(), "HTTP 503")
}

func TestCollectKeepsPagesBeforeFailure(t *testing.T) {
	iclr := types.DefaultConfig().VenueB
	f := &fakeFetcher{
		stream: map[int][]dblp.Record{2022: {
			paper("ICLR", "A", "", "1"), paper("ICLR", "B", "", "2"), paper("ICLR", "C", "", "3"),
		}},
		errAt: map[int]int{2022: 2},
	}

	res, err := testCollector(f, 2022, 2022, 2).Collect(context.Background(), iclr, classifier(t, iclr))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Index.Len())
	assert.Equal(t, 2, f.count("stream"), "failed page must not be retried")
}

func TestCollectTOCFallback(t *testing.T) {
	popl := types.DefaultConfig().VenueA
	f := &fakeFetcher{
		stream: map[int][]dblp.Record{
			2017: {paper("POPL", "Alice", "a/1", "Conference era")},
			2018: {journalPaper("POPL", "Carol", "c/1", "Tagged journal paper")},
			// 2019: stream returns only a satellite workshop entry.
			2019: {paper("PLMW@POPL", "Zed", "z/1", "Mentoring")},
		},
		toc: map[string][]dblp.Record{
			"db/journals/pacmpl/pacmpl3.bht": {
				journalPaper("POPL", "Alice", "a/1", "Journal era"),
				journalPaper("ICFP", "Bob", "b/1", "Not POPL"),
			},
		},
	}

	res, err := testCollector(f, 2017, 2019, 100).Collect(context.Background(), popl, classifier(t, popl))
	require.NoError(t, err)

	var tocCalls []call
	for _, c := range f.calls {
		if c.kind == "toc" {
			tocCalls = append(tocCalls, c)
		}
	}
	require.Len(t, tocCalls, 1, "only 2019 should fall back")
	assert.Equal(t, "db/journals/pacmpl/pacmpl3.bht", tocCalls[0].key)

	alice, ok := res.Index.Papers(key(types.KeyStableID, "a/1"))
	require.True(t, ok)
	require.Len(t, alice, 2)
	assert.Equal(t, "Conference era", alice[0].Title)
	assert.Equal(t, "Journal era", alice[1].Title)
	assert.Equal(t, 2019, alice[1].Year)

	_, ok = res.Index.Papers(key(types.KeyStableID, "b/1"))
	assert.False(t, ok)
	assert.True(t, res.Years[2].UsedTOC)
	assert.False(t, res.Years[1].UsedTOC)
}

func TestCollectNoFallbackBeforeTransitionYear(t *testing.T) {
	popl := types.DefaultConfig().VenueA
	f := &fakeFetcher{}

	res, err := testCollector(f, 2016, 2017, 100).Collect(context.Background(), popl, classifier(t, popl))
	require.NoError(t, err)
	assert.Equal(t, 0, f.count("toc"))
	assert.Equal(t, 0, res.Index.Len())
}

func TestCollectNoFallbackForTrackExclusionVenue(t *testing.T) {
	iclr := types.DefaultConfig().VenueB
	f := &fakeFetcher{}

	_, err := testCollector(f, 2020, 2021, 100).Collect(context.Background(), iclr, classifier(t, iclr))
	require.NoError(t, err)
	assert.Equal(t, 0, f.count("toc"))
	assert.Equal(t, 2, f.count("stream"))
}

func TestCollectProgress(t *testing.T) {
	iclr := types.DefaultConfig().VenueB
	f := &fakeFetcher{stream: map[int][]dblp.Record{2020: {paper("ICLR", "A", "", "1")}}}
	var buf bytes.Buffer
	c := testCollector(f, 2020, 2020, 10)
	c.Progress = &buf

	_, err := c.Collect(context.Background(), iclr, classifier(t, iclr))
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Fetching ICLR data...")
	assert.Contains(t, out, "2020... Found 1 papers")
	assert.Contains(t, out, "ICLR has 1 distinct first authors")
}

func TestCollectCancelled(t *testing.T) {
	iclr := types.DefaultConfig().VenueB
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testCollector(&fakeFetcher{}, 2020, 2022, 10)
	c.YearDelay = 1
	_, err := c.Collect(ctx, iclr, classifier(t, iclr))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromConfig(t *testing.T) {
	cfg := types.DefaultConfig()
	c := New(&fakeFetcher{}, cfg, nil, nil)
	assert.Equal(t, 2016, c.StartYear)
	assert.Equal(t, 2025, c.EndYear)
	assert.Equal(t, 1000, c.PageSize)
	assert.NotNil(t, c.logger())
	assert.Equal(t, io.Discard, c.progress())
}
