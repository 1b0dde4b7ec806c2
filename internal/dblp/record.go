// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one publication as returned in a search hit's "info" object.
type Record struct {
	Title   string  `json:"title"`
	Venue   Labels  `json:"venue"`
	Type    string  `json:"type"`
	Key     string  `json:"key"`
	Year    Text    `json:"year"`
	Number  Text    `json:"number"`
	Volume  Text    `json:"volume"`
	Authors Authors `json:"authors"`
}

// Authors wraps the "authors" object, whose "author" member holds either a
// single entry or a list of entries.
type Authors struct {
	Author AuthorList `json:"author"`
}

type entryKind uint8

const (
	entryInvalid entryKind = iota
	entryBare
	entryStructured
)

// AuthorEntry is one author as the API encodes it: a bare name string or a
// {"@pid", "text"} object. Entries that match neither shape are kept in
// place as invalid so positions in the list are preserved.
type AuthorEntry struct {
	PID  string
	Name string
	kind entryKind
}

// BareAuthor returns an entry encoded as a plain name string.
func BareAuthor(name string) AuthorEntry {
	return AuthorEntry{Name: name, kind: entryBare}
}

// Author returns a structured entry with a display name and stable id.
func Author(name, pid string) AuthorEntry {
	return AuthorEntry{Name: name, PID: pid, kind: entryStructured}
}

// IsBare reports whether the entry was a plain string.
func (e AuthorEntry) IsBare() bool { return e.kind == entryBare }

// IsStructured reports whether the entry was a {"@pid", "text"} object.
func (e AuthorEntry) IsStructured() bool { return e.kind == entryStructured }

// UnmarshalJSON accepts a string or an object. Other shapes leave the entry
// invalid without failing the surrounding record.
func (e *AuthorEntry) UnmarshalJSON(data []byte) error {
	*e = decodeEntry(data)
	return nil
}

func decodeEntry(data []byte) AuthorEntry {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return AuthorEntry{}
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return AuthorEntry{}
		}
		return BareAuthor(s)
	case '{':
		var obj struct {
			PID  Text `json:"@pid"`
			Name Text `json:"text"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return AuthorEntry{}
		}
		return Author(string(obj.Name), string(obj.PID))
	}
	return AuthorEntry{}
}

// AuthorList is the ordered author sequence of a record.
type AuthorList []AuthorEntry

// UnmarshalJSON accepts a list of entries or a single entry. A malformed
// value decodes to an empty list.
func (l *AuthorList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = nil
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		out := make(AuthorList, 0, len(raw))
		for _, r := range raw {
			out = append(out, decodeEntry(r))
		}
		*l = out
	case '"', '{':
		*l = AuthorList{decodeEntry(data)}
	}
	return nil
}

// Labels holds a field the API returns either as one string or a list of
// strings, such as "venue".
type Labels []string

// UnmarshalJSON accepts a string, a list of strings, or null.
func (l *Labels) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = nil
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		var items []Text
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		for _, it := range items {
			*l = append(*l, string(it))
		}
		return nil
	}
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return nil
	}
	*l = Labels{string(t)}
	return nil
}

// Contains reports whether any label contains sub.
func (l Labels) Contains(sub string) bool {
	for _, s := range l {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// String joins the labels with ", ".
func (l Labels) String() string { return strings.Join(l, ", ") }

// Text is a scalar the API may encode as a string or a number.
type Text string

// UnmarshalJSON stores strings verbatim and numbers in their JSON spelling.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = ""
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	*t = Text(n.String())
	return nil
}

// Int parses the text as an integer, returning 0 when it is not one.
func (t Text) Int() int {
	n, err := strconv.Atoi(strings.TrimSpace(string(t)))
	if err != nil {
		return 0
	}
	return n
}
