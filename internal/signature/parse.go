// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package signature

import (
	"strings"
	"unicode"

	"github.com/goccy/go-json"
)

// entity is the shape of one element in the TMDB genres, keywords, cast
// and crew columns. Only the fields the signature needs are decoded.
type entity struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// decodeEntities parses a serialized entity list. The second return value
// is false when the input is present but cannot be parsed.
func decodeEntities(raw string) ([]entity, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	var list []entity
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, false
	}
	return list, true
}

// ParseNames extracts the name of every entity in a serialized list,
// collapsing each multi-word name into a single token. When limit is
// positive only the first limit entities are used; one with an empty
// name still counts toward the limit. Malformed or absent
// input yields an empty list; ok reports whether the input parsed.
func ParseNames(raw string, limit int) (names []string, ok bool) {
	list, ok := decodeEntities(raw)
	if !ok {
		return []string{}, false
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	names = make([]string, 0, len(list))
	for _, e := range list {
		if n := collapse(e.Name); n != "" {
			names = append(names, n)
		}
	}
	return names, true
}

// Director returns the collapsed name of the first crew member whose job
// is "Director", as a zero or one element list.
func Director(raw string) (names []string, ok bool) {
	list, ok := decodeEntities(raw)
	if !ok {
		return []string{}, false
	}
	for _, e := range list {
		if e.Job == "Director" {
			if n := collapse(e.Name); n != "" {
				return []string{n}, true
			}
			return []string{}, true
		}
	}
	return []string{}, true
}

// Tokenize splits free text on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// collapse removes all whitespace so "Christopher Nolan" becomes
// "ChristopherNolan".
func collapse(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
