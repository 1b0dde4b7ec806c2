// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package author extracts the first author from a raw publication record and
// derives the identity key that groups an author's papers.
package author

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/venue-overlap/internal/dblp"
	"github.com/pdiddy/venue-overlap/pkg/types"
)

// ExtractFirstAuthor returns the name and stable id of rec's first author.
// ok is false when the record has no usable first author. A structured entry
// with no display name falls back to its id. pid is empty for bare entries.
func ExtractFirstAuthor(rec dblp.Record) (name, pid string, ok bool) {
	authors := rec.Authors.Author
	if len(authors) == 0 {
		return "", "", false
	}
	first := authors[0]
	switch {
	case first.IsBare():
		name = first.Name
	case first.IsStructured():
		name, pid = first.Name, first.PID
		if name == "" {
			name = pid
		}
	default:
		return "", "", false
	}
	if name == "" {
		return "", "", false
	}
	return name, pid, true
}

// Normalize lowercases name and collapses every whitespace run to a single
// space, trimming both ends. It is idempotent.
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	lower := cases.Lower(language.Und).String(name)
	return strings.Join(strings.Fields(lower), " ")
}

// KeyFor returns the identity key for an author: the stable id when present,
// otherwise the normalized name.
func KeyFor(name, pid string) types.IdentityKey {
	if pid != "" {
		return types.IdentityKey{Kind: types.KeyStableID, Value: pid}
	}
	return types.IdentityKey{Kind: types.KeyNormalizedName, Value: Normalize(name)}
}

// NewPaperRecord extracts rec's first author and builds the paper record and
// identity key collected under year for venue. ok is false when the record
// has no first author.
func NewPaperRecord(rec dblp.Record, year int, venue types.Venue) (types.IdentityKey, types.PaperRecord, bool) {
	name, pid, ok := ExtractFirstAuthor(rec)
	if !ok {
		return types.IdentityKey{}, types.PaperRecord{}, false
	}
	title := rec.Title
	if title == "" {
		title = "Unknown"
	}
	p := types.PaperRecord{
		Year:           year,
		Title:          title,
		AuthorName:     name,
		NormalizedName: Normalize(name),
		PID:            pid,
		Venue:          venue,
	}
	return KeyFor(name, pid), p, true
}
