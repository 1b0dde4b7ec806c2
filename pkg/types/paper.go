// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the venue-overlap pipeline:
// the paper records retained per venue, the identity key that groups them,
// the per-venue author index, match results, and run configuration.
package types

// Venue identifies one of the two compared venues by its short name
// (e.g. "POPL", "ICLR").
type Venue string

// PaperRecord is a first-authored paper that passed a venue's qualification
// rule. It is immutable once created by the collector.
type PaperRecord struct {
	// Year is the iteration year the paper was collected under.
	Year int `json:"year" yaml:"year"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// AuthorName is the first author's name with its original casing.
	AuthorName string `json:"author_name" yaml:"author_name"`

	// NormalizedName is the lowercased, whitespace-collapsed author name.
	NormalizedName string `json:"normalized_name" yaml:"normalized_name"`

	// PID is the source's stable author identifier, empty when absent.
	PID string `json:"pid,omitempty" yaml:"pid,omitempty"`

	// Venue is the venue this paper was counted for.
	Venue Venue `json:"venue" yaml:"venue"`
}

// KeyKind says which field an IdentityKey was derived from.
type KeyKind string

const (
	KeyStableID       KeyKind = "pid"
	KeyNormalizedName KeyKind = "name"
)

// IdentityKey groups papers presumed to share an author. Keys of different
// kinds never compare equal, so a stable id never matches a bare name.
type IdentityKey struct {
	Kind  KeyKind `json:"kind" yaml:"kind"`
	Value string  `json:"value" yaml:"value"`
}

// String returns the key value.
func (k IdentityKey) String() string { return k.Value }

// IsZero reports whether the key carries no value.
func (k IdentityKey) IsZero() bool { return k.Value == "" }

// AuthorIndex maps identity keys to the papers collected for one venue.
// Keys are remembered in first-seen order so iteration is deterministic.
type AuthorIndex struct {
	venue  Venue
	papers map[IdentityKey][]PaperRecord
	order  []IdentityKey
}

// NewAuthorIndex returns an empty index for venue.
func NewAuthorIndex(venue Venue) *AuthorIndex {
	return &AuthorIndex{
		venue:  venue,
		papers: make(map[IdentityKey][]PaperRecord),
	}
}

// Venue returns the venue the index was built for.
func (x *AuthorIndex) Venue() Venue { return x.venue }

// Add appends p under key, creating the entry if absent. Records belonging
// to another venue are stamped with the index venue.
func (x *AuthorIndex) Add(key IdentityKey, p PaperRecord) {
	p.Venue = x.venue
	if _, ok := x.papers[key]; !ok {
		x.order = append(x.order, key)
	}
	x.papers[key] = append(x.papers[key], p)
}

// Papers returns the papers recorded under key.
func (x *AuthorIndex) Papers(key IdentityKey) ([]PaperRecord, bool) {
	p, ok := x.papers[key]
	return p, ok
}

// Keys returns the identity keys in first-seen order.
func (x *AuthorIndex) Keys() []IdentityKey {
	keys := make([]IdentityKey, len(x.order))
	copy(keys, x.order)
	return keys
}

// Len returns the number of distinct first authors.
func (x *AuthorIndex) Len() int { return len(x.order) }

// PaperCount returns the total number of papers across all keys.
func (x *AuthorIndex) PaperCount() int {
	n := 0
	for _, p := range x.papers {
		n += len(p)
	}
	return n
}

// MatchResult describes one author found in both venues.
type MatchResult struct {
	Key         IdentityKey   `json:"key" yaml:"key"`
	DisplayName string        `json:"display_name" yaml:"display_name"`
	PapersA     []PaperRecord `json:"papers_a" yaml:"papers_a"`
	PapersB     []PaperRecord `json:"papers_b" yaml:"papers_b"`
	CountA      int           `json:"count_a" yaml:"count_a"`
	CountB      int           `json:"count_b" yaml:"count_b"`
}

// Total returns the combined paper count used for ranking.
func (m MatchResult) Total() int { return m.CountA + m.CountB }
