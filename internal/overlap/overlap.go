// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package overlap runs a full comparison: it collects both venues' author
// indices and intersects them.
package overlap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/venue-overlap/internal/collect"
	"github.com/pdiddy/venue-overlap/internal/match"
	"github.com/pdiddy/venue-overlap/internal/venue"
	"github.com/pdiddy/venue-overlap/pkg/types"
)

// Result holds both venues' collections and the run summary built from them.
type Result struct {
	A   collect.Result
	B   collect.Result
	Run types.Run
}

// now is replaced in tests.
var now = time.Now

// Run collects venue A and venue B as configured by cfg and matches their
// first authors. With cfg.Parallel the venues are collected concurrently,
// each into its own index. Fetch failures never fail the run; only an invalid
// configuration or a cancelled context does.
func Run(ctx context.Context, cfg types.Config, f collect.Fetcher, logger *slog.Logger, progress io.Writer) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	clsA, err := venue.New(cfg.VenueA)
	if err != nil {
		return nil, err
	}
	clsB, err := venue.New(cfg.VenueB)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}

	started := now().UTC()
	res := &Result{}

	if cfg.Parallel {
		w := &syncWriter{w: progress}
		c := collect.New(f, cfg, logger, w)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			r, err := c.Collect(gctx, cfg.VenueA, clsA)
			res.A = r
			return err
		})
		g.Go(func() error {
			r, err := c.Collect(gctx, cfg.VenueB, clsB)
			res.B = r
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		c := collect.New(f, cfg, logger, progress)
		if res.A, err = c.Collect(ctx, cfg.VenueA, clsA); err != nil {
			return nil, err
		}
		if res.B, err = c.Collect(ctx, cfg.VenueB, clsB); err != nil {
			return nil, err
		}
	}

	res.Run = types.Run{
		ID:          uuid.NewString(),
		StartedAt:   started,
		StartYear:   cfg.StartYear,
		EndYear:     cfg.EndYear,
		VenueA:      cfg.VenueA.Name,
		VenueB:      cfg.VenueB.Name,
		AuthorsA:    res.A.Index.Len(),
		AuthorsB:    res.B.Index.Len(),
		PapersA:     res.A.Index.PaperCount(),
		PapersB:     res.B.Index.PaperCount(),
		FailedYears: res.A.Failures() + res.B.Failures(),
		Matches:     match.Match(res.A.Index, res.B.Index),
	}
	return res, nil
}

// syncWriter serializes writes from concurrent collectors so progress lines
// do not interleave mid-line.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
