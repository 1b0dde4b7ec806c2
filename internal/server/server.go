// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes stored comparison runs over a read-only JSON API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/venue-overlap/internal/store"
	"github.com/pdiddy/venue-overlap/pkg/types"
)

// latestID selects the most recent run in place of a run id.
const latestID = "latest"

// Reader is the subset of the result store the API needs.
type Reader interface {
	ListRuns(ctx context.Context) ([]store.RunSummary, error)
	LoadRun(ctx context.Context, id string) (*types.Run, error)
	LatestRun(ctx context.Context) (*types.Run, error)
}

// New returns a gin engine serving runs from r.
//
//	GET /health
//	GET /runs
//	GET /runs/:id          (id may be "latest")
//	GET /runs/:id/matches  (optional ?limit=N)
func New(r Reader, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{runs: r, logger: logger}

	e := gin.New()
	e.Use(gin.Recovery(), h.logRequests)

	e.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"healthy": true})
	})
	e.GET("/runs", h.listRuns)
	e.GET("/runs/:id", h.getRun)
	e.GET("/runs/:id/matches", h.getMatches)
	return e
}

type handler struct {
	runs   Reader
	logger *slog.Logger
}

func (h *handler) logRequests(c *gin.Context) {
	c.Next()
	h.logger.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status())
}

func (h *handler) listRuns(c *gin.Context) {
	runs, err := h.runs.ListRuns(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *handler) getRun(c *gin.Context) {
	run, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

type matchesQuery struct {
	Limit int `form:"limit" binding:"min=0"`
}

func (h *handler) getMatches(c *gin.Context) {
	var q matchesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	run, ok := h.load(c)
	if !ok {
		return
	}
	matches := run.Matches
	if q.Limit > 0 && q.Limit < len(matches) {
		matches = matches[:q.Limit]
	}
	if matches == nil {
		matches = []types.MatchResult{}
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":  run.ID,
		"total":   len(run.Matches),
		"matches": matches,
	})
}

func (h *handler) load(c *gin.Context) (*types.Run, bool) {
	id := c.Param("id")
	var (
		run *types.Run
		err error
	)
	if id == latestID {
		run, err = h.runs.LatestRun(c.Request.Context())
	} else {
		run, err = h.runs.LoadRun(c.Request.Context(), id)
	}
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return run, true
}

func (h *handler) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("store query failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
