package types

import "time"

// Run is the outcome of one comparison between two venues.
type Run struct {
	// ID identifies the run in the result store.
	ID string `json:"id" yaml:"id"`

	// StartedAt is when collection began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	StartYear int `json:"start_year" yaml:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year"`

	VenueA Venue `json:"venue_a" yaml:"venue_a"`
	VenueB Venue `json:"venue_b" yaml:"venue_b"`

	// AuthorsA and AuthorsB count distinct first authors per venue.
	AuthorsA int `json:"authors_a" yaml:"authors_a"`
	AuthorsB int `json:"authors_b" yaml:"authors_b"`

	// PapersA and PapersB count qualifying first-authored papers per venue.
	PapersA int `json:"papers_a" yaml:"papers_a"`
	PapersB int `json:"papers_b" yaml:"papers_b"`

	// FailedYears counts years in which a query failed, across both venues.
	FailedYears int `json:"failed_years" yaml:"failed_years"`

	// Matches lists the common authors in rank order.
	Matches []MatchResult `json:"matches" yaml:"matches"`
}
