package types

import (
	"fmt"
	"strings"
	"time"
)

// HTTPConfig holds settings for requests to the bibliographic search API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "venue-overlap/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// BaseURL is the publication search endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// RuleKind selects the qualification rule applied to a venue's records.
type RuleKind string

const (
	// RuleJournalTransition models a conference whose proceedings moved
	// into a journal partway through the window.
	RuleJournalTransition RuleKind = "journal_transition"

	// RuleTrackExclusion models a conference with a stable stream whose
	// workshop and short-paper tracks must be dropped.
	RuleTrackExclusion RuleKind = "track_exclusion"
)

// VenueConfig describes how one venue's papers are queried and qualified.
type VenueConfig struct {
	// Name is the venue's short name as it appears in venue labels (e.g. "POPL").
	Name Venue `json:"name" yaml:"name"`

	// StreamKey is the source stream identifier (e.g. "conf/popl").
	StreamKey string `json:"stream_key" yaml:"stream_key"`

	// Rule selects the qualification rule for this venue.
	Rule RuleKind `json:"rule" yaml:"rule"`

	// ExcludeTypes lists publication types that never count as papers
	// (default "Editorship").
	ExcludeTypes []string `json:"exclude_types,omitempty" yaml:"exclude_types,omitempty"`

	// ExcludeMarkers lists venue-label substrings that mark workshop or
	// short-paper tracks. Used by the track-exclusion rule.
	ExcludeMarkers []string `json:"exclude_markers,omitempty" yaml:"exclude_markers,omitempty"`

	// JournalLabels lists venue-label substrings naming the host journal.
	// Used by the journal-transition rule.
	JournalLabels []string `json:"journal_labels,omitempty" yaml:"journal_labels,omitempty"`

	// TOCKeyTemplate is the table-of-contents key with a %d placeholder for
	// the volume (e.g. "db/journals/pacmpl/pacmpl%d.bht"). Empty disables
	// the fallback.
	TOCKeyTemplate string `json:"toc_key_template,omitempty" yaml:"toc_key_template,omitempty"`

	// TransitionYear is the first year the fallback may be used.
	TransitionYear int `json:"transition_year,omitempty" yaml:"transition_year,omitempty"`

	// BaseYear maps a year to a journal volume: volume = year - BaseYear.
	BaseYear int `json:"base_year,omitempty" yaml:"base_year,omitempty"`
}

// HasTOCFallback reports whether a table-of-contents lookup is configured.
func (v VenueConfig) HasTOCFallback() bool {
	return v.Rule == RuleJournalTransition && v.TOCKeyTemplate != ""
}

// TOCKey returns the table-of-contents key for year's journal volume.
func (v VenueConfig) TOCKey(year int) string {
	return fmt.Sprintf(v.TOCKeyTemplate, year-v.BaseYear)
}

// StoreConfig selects the database that keeps run results.
type StoreConfig struct {
	// Driver is "sqlite3" (default) or "postgres".
	Driver string `json:"driver" yaml:"driver"`

	// DSN is the database file path for sqlite3 or a connection string
	// for postgres. Empty disables persistence.
	DSN string `json:"dsn" yaml:"dsn"`
}

// Config groups all settings for a run.
type Config struct {
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// StartYear and EndYear bound the inclusive year window.
	StartYear int `json:"start_year" yaml:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year"`

	// PageSize is the number of hits requested per page (default 1000).
	PageSize int `json:"page_size" yaml:"page_size"`

	// PageDelay is the pause between consecutive page fetches (default 300ms).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// YearDelay is the pause between consecutive years (default 500ms).
	YearDelay time.Duration `json:"year_delay" yaml:"year_delay"`

	VenueA VenueConfig `json:"venue_a" yaml:"venue_a"`
	VenueB VenueConfig `json:"venue_b" yaml:"venue_b"`

	// Parallel collects both venues concurrently.
	Parallel bool `json:"parallel" yaml:"parallel"`

	// Output is the path of the plain-text report.
	Output string `json:"output" yaml:"output"`

	Store StoreConfig `json:"store" yaml:"store"`
}

// DefaultConfig returns the POPL/ICLR 2016-2025 configuration against DBLP.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "venue-overlap/0.1",
			BaseURL:   "https://dblp.org/search/publ/api",
		},
		StartYear: 2016,
		EndYear:   2025,
		PageSize:  1000,
		PageDelay: 300 * time.Millisecond,
		YearDelay: 500 * time.Millisecond,
		VenueA: VenueConfig{
			Name:           "POPL",
			StreamKey:      "conf/popl",
			Rule:           RuleJournalTransition,
			ExcludeTypes:   []string{"Editorship"},
			JournalLabels:  []string{"PACMPL", "Proc. ACM Program. Lang"},
			TOCKeyTemplate: "db/journals/pacmpl/pacmpl%d.bht",
			TransitionYear: 2018,
			BaseYear:       2016,
		},
		VenueB: VenueConfig{
			Name:           "ICLR",
			StreamKey:      "conf/iclr",
			Rule:           RuleTrackExclusion,
			ExcludeTypes:   []string{"Editorship"},
			ExcludeMarkers: []string{"Workshop", "Tiny"},
		},
		Output: "common_authors_result.txt",
		Store: StoreConfig{
			Driver: "sqlite3",
			DSN:    "venue-overlap.db",
		},
	}
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.StartYear <= 0 || c.EndYear <= 0 {
		return fmt.Errorf("start_year and end_year are required")
	}
	if c.StartYear > c.EndYear {
		return fmt.Errorf("start_year %d is after end_year %d", c.StartYear, c.EndYear)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.PageDelay < 0 || c.YearDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	for _, v := range []VenueConfig{c.VenueA, c.VenueB} {
		if err := v.validate(); err != nil {
			return err
		}
	}
	if c.VenueA.Name == c.VenueB.Name {
		return fmt.Errorf("venues must differ, both are %q", c.VenueA.Name)
	}
	return nil
}

func (v VenueConfig) validate() error {
	if v.Name == "" {
		return fmt.Errorf("venue name is required")
	}
	if v.StreamKey == "" {
		return fmt.Errorf("venue %s: stream_key is required", v.Name)
	}
	switch v.Rule {
	case RuleJournalTransition:
		if v.TOCKeyTemplate != "" && !strings.Contains(v.TOCKeyTemplate, "%d") {
			return fmt.Errorf("venue %s: toc_key_template %q has no %%d volume placeholder", v.Name, v.TOCKeyTemplate)
		}
	case RuleTrackExclusion:
	default:
		return fmt.Errorf("venue %s: unknown rule %q", v.Name, v.Rule)
	}
	return nil
}
