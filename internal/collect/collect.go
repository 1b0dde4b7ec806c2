// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect pulls one venue's records year by year, keeps the records
// its classifier qualifies, and indexes their first authors by identity key.
package collect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdiddy/venue-overlap/internal/author"
	"github.com/pdiddy/venue-overlap/internal/dblp"
	"github.com/pdiddy/venue-overlap/internal/httputil"
	"github.com/pdiddy/venue-overlap/internal/venue"
	"github.com/pdiddy/venue-overlap/pkg/types"
)

// Fetcher retrieves one page of search hits. *dblp.Client implements it.
type Fetcher interface {
	SearchByStream(ctx context.Context, streamKey string, year, offset, limit int) (dblp.Page, error)
	SearchByTOC(ctx context.Context, tocKey string, offset, limit int) (dblp.Page, error)
}

// Collector gathers per-venue author indices over a year window.
// A Collector holds no accumulation state and may be shared by goroutines
// collecting different venues.
type Collector struct {
	Fetcher   Fetcher
	StartYear int
	EndYear   int
	PageSize  int
	PageDelay time.Duration
	YearDelay time.Duration

	// Logger receives fetch failures. Nil uses slog.Default().
	Logger *slog.Logger

	// Progress receives one line per year. Nil discards progress.
	Progress io.Writer
}

// New returns a Collector configured from cfg.
func New(f Fetcher, cfg types.Config, logger *slog.Logger, progress io.Writer) *Collector {
	return &Collector{
		Fetcher:   f,
		StartYear: cfg.StartYear,
		EndYear:   cfg.EndYear,
		PageSize:  cfg.PageSize,
		PageDelay: cfg.PageDelay,
		YearDelay: cfg.YearDelay,
		Logger:    logger,
		Progress:  progress,
	}
}

// YearStat summarizes one year of collection.
type YearStat struct {
	Year    int
	Papers  int
	UsedTOC bool
	Failed  bool
}

// Result is a venue's author index and its per-year statistics.
type Result struct {
	Index *types.AuthorIndex
	Years []YearStat
}

// Failures returns the number of years in which at least one query failed.
func (r Result) Failures() int {
	n := 0
	for _, y := range r.Years {
		if y.Failed {
			n++
		}
	}
	return n
}

// Collect walks the year window in ascending order and indexes every
// qualifying record's first author. Fetch failures are logged and end the
// affected query; they never abort collection. The only error returned is
// the context's.
func (c *Collector) Collect(ctx context.Context, v types.VenueConfig, cls venue.Classifier) (Result, error) {
	res := Result{Index: types.NewAuthorIndex(v.Name)}
	w := c.progress()

	fmt.Fprintf(w, "Fetching %s data...\n", v.Name)
	for year := c.StartYear; year <= c.EndYear; year++ {
		if year > c.StartYear {
			if err := httputil.Pause(ctx, c.YearDelay); err != nil {
				return res, err
			}
		}

		stat := YearStat{Year: year}
		recs, failed, err := c.fetchAll(ctx, dblp.StreamQuery(v.StreamKey, year), func(ctx context.Context, offset, limit int) (dblp.Page, error) {
			return c.Fetcher.SearchByStream(ctx, v.StreamKey, year, offset, limit)
		})
		if err != nil {
			return res, err
		}
		stat.Failed = failed
		qualified := venue.Filter(cls, recs)

		if len(qualified) == 0 && v.HasTOCFallback() && year >= v.TransitionYear {
			tocKey := v.TOCKey(year)
			c.logger().Debug("stream query empty, using table of contents",
				"venue", v.Name, "year", year, "toc", tocKey)
			recs, failed, err := c.fetchAll(ctx, dblp.TOCQuery(tocKey), func(ctx context.Context, offset, limit int) (dblp.Page, error) {
				return c.Fetcher.SearchByTOC(ctx, tocKey, offset, limit)
			})
			if err != nil {
				return res, err
			}
			stat.UsedTOC = true
			stat.Failed = stat.Failed || failed
			qualified = venue.Filter(cls, recs)
		}

		for _, rec := range qualified {
			key, p, ok := author.NewPaperRecord(rec, year, v.Name)
			if !ok {
				continue
			}
			res.Index.Add(key, p)
			stat.Papers++
		}

		note := ""
		if stat.UsedTOC {
			note = " (table of contents)"
		}
		fmt.Fprintf(w, "  %d... Found %d papers%s\n", year, len(qualified), note)
		res.Years = append(res.Years, stat)
	}
	fmt.Fprintf(w, "%s has %d distinct first authors\n", v.Name, res.Index.Len())
	return res, nil
}

type pageFunc func(ctx context.Context, offset, limit int) (dblp.Page, error)

// fetchAll pages through a query until an empty or short page, or until the
// reported total is reached. A failed page ends the query with the records
// gathered so far and failed set.
func (c *Collector) fetchAll(ctx context.Context, query string, fetch pageFunc) (recs []dblp.Record, failed bool, err error) {
	limit := c.PageSize
	if limit <= 0 {
		limit = types.DefaultConfig().PageSize
	}
	for offset := 0; ; {
		page, ferr := fetch(ctx, offset, limit)
		if ferr != nil {
			if ctx.Err() != nil {
				return recs, true, ctx.Err()
			}
			c.logger().Warn("fetch failed, keeping partial results",
				"query", query, "offset", offset, "err", ferr)
			return recs, true, nil
		}
		if len(page.Records) == 0 {
			return recs, false, nil
		}
		recs = append(recs, page.Records...)

		offset += limit
		if offset >= page.Total || len(page.Records) < limit {
			return recs, false, nil
		}
		if err := httputil.Pause(ctx, c.PageDelay); err != nil {
			return recs, false, err
		}
	}
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Collector) progress() io.Writer {
	if c.Progress != nil {
		return c.Progress
	}
	return io.Discard
}
