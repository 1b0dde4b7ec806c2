// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dblp queries the DBLP publication search API by venue stream and
// by journal table of contents, one page of hits at a time.
package dblp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/venue-overlap/internal/httputil"
	"github.com/pdiddy/venue-overlap/pkg/types"
)

// DefaultBaseURL is the DBLP publication search endpoint.
const DefaultBaseURL = "https://dblp.org/search/publ/api"

// Page is one window of search hits and the total the API reports for the
// query.
type Page struct {
	Records []Record
	Total   int
}

// Client issues search requests against the publication search API.
// It is safe for concurrent use when its *http.Client is.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
}

// NewClient builds a Client from cfg, filling in the default endpoint.
func NewClient(cfg types.HTTPConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		BaseURL:   base,
		UserAgent: cfg.UserAgent,
	}
}

// StreamQuery returns the query string selecting a stream's records for year.
func StreamQuery(streamKey string, year int) string {
	return fmt.Sprintf("stream:%s: year:%d", streamKey, year)
}

// TOCQuery returns the query string selecting every entry of a table of contents.
func TOCQuery(tocKey string) string {
	return "toc:" + tocKey + ":"
}

// SearchByStream fetches one page of records published in streamKey during year.
func (c *Client) SearchByStream(ctx context.Context, streamKey string, year, offset, limit int) (Page, error) {
	return c.search(ctx, StreamQuery(streamKey, year), offset, limit)
}

// SearchByTOC fetches one page of the entries listed under tocKey.
func (c *Client) SearchByTOC(ctx context.Context, tocKey string, offset, limit int) (Page, error) {
	return c.search(ctx, TOCQuery(tocKey), offset, limit)
}

func (c *Client) search(ctx context.Context, q string, offset, limit int) (Page, error) {
	params := url.Values{
		"q":      {q},
		"format": {"json"},
		"h":      {strconv.Itoa(limit)},
		"f":      {strconv.Itoa(offset)},
	}
	reqURL := c.BaseURL + "?" + params.Encode()

	var sr searchResponse
	if err := httputil.GetJSON(ctx, c.HTTP, reqURL, c.UserAgent, &sr); err != nil {
		return Page{}, fmt.Errorf("dblp search %q: %w", q, err)
	}

	hits := sr.Result.Hits
	page := Page{
		Records: make([]Record, 0, len(hits.Hit)),
		Total:   hits.Total.Int(),
	}
	for _, h := range hits.Hit {
		page.Records = append(page.Records, h.Info)
	}
	return page, nil
}

// DBLP search API JSON structures.
type searchResponse struct {
	Result searchResult `json:"result"`
}

type searchResult struct {
	Hits searchHits `json:"hits"`
}

type searchHits struct {
	Total Text        `json:"@total"`
	Sent  Text        `json:"@sent"`
	First Text        `json:"@first"`
	Hit   []searchHit `json:"hit"`
}

type searchHit struct {
	ID   Text   `json:"@id"`
	Info Record `json:"info"`
}
