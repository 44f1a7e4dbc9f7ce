// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package catalog holds the movie data model and the Record Merger, which
// joins the two raw per-movie sources (metadata and credits) into one
// record per movie.
//
// Raw sources can be CSV, XLSX or SQLite files; see ReadTable.
package catalog

// Item is one catalog entry. The position of an Item inside a Catalog is
// the only join key with the similarity matrix.
type Item struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Tags        string   `json:"tags"`
	VoteAverage *float64 `json:"vote_average,omitempty"`
	VoteCount   int      `json:"vote_count"`
	ReleaseDate string   `json:"release_date,omitempty"`
	PosterPath  string   `json:"poster_path,omitempty"`
}

// Year returns the release year, or "" when the release date does not
// start with a four digit year.
func (it *Item) Year() string {
	if len(it.ReleaseDate) < 4 {
		return ""
	}
	for _, c := range it.ReleaseDate[:4] {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return it.ReleaseDate[:4]
}

// Rating returns the vote average and whether it is present.
func (it *Item) Rating() (float64, bool) {
	if it.VoteAverage == nil {
		return 0, false
	}
	return *it.VoteAverage, true
}

// Catalog is an ordered sequence of items.
type Catalog []Item

// Titles returns the titles in catalog order.
func (c Catalog) Titles() []string {
	titles := make([]string, len(c))
	for i := range c {
		titles[i] = c[i].Title
	}
	return titles
}
