// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"math"
	"strconv"
	"strings"
)

// Canonical column names used after merging.
const (
	ColID          = "id"
	ColTitle       = "title"
	ColOverview    = "overview"
	ColGenres      = "genres"
	ColKeywords    = "keywords"
	ColCast        = "cast"
	ColCrew        = "crew"
	ColVoteAverage = "vote_average"
	ColVoteCount   = "vote_count"
	ColReleaseDate = "release_date"
	ColPosterPath  = "poster_path"
)

// MergeOptions names the identifier column of each source.
type MergeOptions struct {
	// LeftKey is the identifier column in the metadata source. Default: "id"
	LeftKey string
	// RightKey is the identifier column in the credits source. Default: "movie_id"
	RightKey string
}

// DefaultMergeOptions matches the TMDB 5000 movies/credits exports.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{LeftKey: ColID, RightKey: "movie_id"}
}

// Record is one merged row with the raw sub-fields the Signature Builder
// consumes and the parsed display attributes.
type Record struct {
	ID          int64
	Title       string
	Overview    string
	Genres      string
	Keywords    string
	Cast        string
	Crew        string
	VoteAverage *float64
	VoteCount   int
	ReleaseDate string
	PosterPath  string
}

// MergeStats reports what the join kept and dropped.
type MergeStats struct {
	LeftRows       int `json:"left_rows"`
	RightRows      int `json:"right_rows"`
	Joined         int `json:"joined"`
	LeftOnly       int `json:"left_only"`
	RightOnly      int `json:"right_only"`
	InvalidID      int `json:"invalid_id"`
	DuplicateRight int `json:"duplicate_right"`
}

// Merge inner-joins the metadata (left) and credits (right) tables on the
// item identifier. Both identifier columns are normalized to "id" first.
//
// Output follows left order. Items present in only one source are dropped
// and counted; so are rows whose identifier is not an integer. When the
// right source repeats an identifier the first row wins. For every field,
// including title, the left value is preferred and the right value fills
// in when the left one is absent. The poster column may be missing from
// both sources, in which case every record has an empty poster.
func Merge(left, right *Table, opts MergeOptions) ([]Record, MergeStats) {
	if opts.LeftKey == "" {
		opts.LeftKey = ColID
	}
	if opts.RightKey == "" {
		opts.RightKey = "movie_id"
	}

	stats := MergeStats{LeftRows: len(left.Rows), RightRows: len(right.Rows)}

	rightByID := make(map[int64]map[string]string, len(right.Rows))
	for _, row := range right.Rows {
		id, ok := parseID(row[opts.RightKey])
		if !ok {
			stats.InvalidID++
			continue
		}
		if _, dup := rightByID[id]; dup {
			stats.DuplicateRight++
			continue
		}
		rightByID[id] = row
	}

	matched := make(map[int64]bool, len(rightByID))
	records := make([]Record, 0, len(left.Rows))
	for _, lrow := range left.Rows {
		id, ok := parseID(lrow[opts.LeftKey])
		if !ok {
			stats.InvalidID++
			continue
		}
		rrow, ok := rightByID[id]
		if !ok {
			stats.LeftOnly++
			continue
		}
		matched[id] = true

		get := func(col string) string {
			if v, ok := lrow[col]; ok && strings.TrimSpace(v) != "" {
				return v
			}
			return rrow[col]
		}

		records = append(records, Record{
			ID:          id,
			Title:       strings.TrimSpace(get(ColTitle)),
			Overview:    get(ColOverview),
			Genres:      get(ColGenres),
			Keywords:    get(ColKeywords),
			Cast:        get(ColCast),
			Crew:        get(ColCrew),
			VoteAverage: parseFloatPtr(get(ColVoteAverage)),
			VoteCount:   parseCount(get(ColVoteCount)),
			ReleaseDate: strings.TrimSpace(get(ColReleaseDate)),
			PosterPath:  strings.TrimSpace(get(ColPosterPath)),
		})
	}

	stats.Joined = len(records)
	stats.RightOnly = len(rightByID) - len(matched)
	return records, stats
}

func parseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, true
	}
	// Spreadsheet and SQLite sources may hand integers over as "19995.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func parseFloatPtr(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}

func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
		return int(f)
	}
	return 0
}
