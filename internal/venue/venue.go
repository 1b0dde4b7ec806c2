// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package venue decides whether a raw record is a main-track paper of a venue.
// Each venue's rule is a Classifier built from its configuration, so the
// collector never branches on venue names.
package venue

import (
	"fmt"
	"strings"

	"github.com/pdiddy/venue-overlap/internal/dblp"
	"github.com/pdiddy/venue-overlap/pkg/types"
)

// satelliteMarker appears in venue labels of events co-located with a
// conference, such as "PLMW@POPL".
const satelliteMarker = "@"

// Classifier reports whether a record counts as a main-track paper.
type Classifier interface {
	Name() types.Venue
	Qualifies(rec dblp.Record) bool
}

// New returns the classifier selected by cfg.Rule.
func New(cfg types.VenueConfig) (Classifier, error) {
	switch cfg.Rule {
	case types.RuleJournalTransition:
		return &JournalTransitionRule{
			Venue:         cfg.Name,
			JournalLabels: cfg.JournalLabels,
			ExcludeTypes:  cfg.ExcludeTypes,
		}, nil
	case types.RuleTrackExclusion:
		return &TrackExclusionRule{
			Venue:          cfg.Name,
			ExcludeTypes:   cfg.ExcludeTypes,
			ExcludeMarkers: cfg.ExcludeMarkers,
		}, nil
	}
	return nil, fmt.Errorf("venue %s: unknown rule %q", cfg.Name, cfg.Rule)
}

// Filter returns the records c qualifies, preserving order.
func Filter(c Classifier, recs []dblp.Record) []dblp.Record {
	var out []dblp.Record
	for _, r := range recs {
		if c.Qualifies(r) {
			out = append(out, r)
		}
	}
	return out
}

// JournalTransitionRule qualifies papers of a conference whose proceedings
// moved into a journal. Before the move its papers carry the conference name
// as venue; afterwards they carry the journal name with the conference name
// in the issue number.
type JournalTransitionRule struct {
	Venue         types.Venue
	JournalLabels []string
	ExcludeTypes  []string
}

// Name returns the venue short name.
func (r *JournalTransitionRule) Name() types.Venue { return r.Venue }

// Qualifies reports whether rec is a main-track paper of r.Venue.
func (r *JournalTransitionRule) Qualifies(rec dblp.Record) bool {
	if hasType(rec, r.ExcludeTypes) {
		return false
	}
	short := string(r.Venue)
	inJournal := containsAny(rec.Venue, r.JournalLabels)

	if rec.Venue.Contains(short) && !inJournal && !rec.Venue.Contains(satelliteMarker) {
		return true
	}
	return inJournal && string(rec.Number) == short
}

// TrackExclusionRule qualifies every record of a conference stream except
// non-paper entries and records whose venue names an excluded track.
type TrackExclusionRule struct {
	Venue          types.Venue
	ExcludeTypes   []string
	ExcludeMarkers []string
}

// Name returns the venue short name.
func (r *TrackExclusionRule) Name() types.Venue { return r.Venue }

// Qualifies reports whether rec is a main-track paper of r.Venue.
func (r *TrackExclusionRule) Qualifies(rec dblp.Record) bool {
	if hasType(rec, r.ExcludeTypes) {
		return false
	}
	return !containsAny(rec.Venue, r.ExcludeMarkers)
}

func hasType(rec dblp.Record, excluded []string) bool {
	for _, t := range excluded {
		if strings.EqualFold(rec.Type, t) {
			return true
		}
	}
	return false
}

func containsAny(labels dblp.Labels, subs []string) bool {
	for _, s := range subs {
		if s != "" && labels.Contains(s) {
			return true
		}
	}
	return false
}
