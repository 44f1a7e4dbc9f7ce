// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package signature builds the per-movie token signature ("tags") from the
// merged raw records: overview words, genres, keywords, top cast members
// and the director, joined with spaces and lowercased.
//
// Missing or malformed sub-fields are replaced by empty values and the
// item is kept; only items whose final signature is empty are dropped.
package signature

import (
	"context"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinematch/internal/catalog"
)

// DefaultCastLimit is the number of leading cast members kept.
const DefaultCastLimit = 3

// Options configures signature building.
type Options struct {
	// CastLimit is the number of leading cast members kept. Default: 3
	CastLimit int
	// Workers bounds the goroutines used. Default: runtime.NumCPU()
	Workers int
}

// Stats counts what happened to each record.
type Stats struct {
	Input            int            `json:"input"`
	Kept             int            `json:"kept"`
	DroppedEmpty     int            `json:"dropped_empty"`
	MalformedByField map[string]int `json:"malformed_by_field"`
}

type built struct {
	item      catalog.Item
	malformed []string
}

// Build composes the signature of every record and returns the catalog in
// record order, excluding records whose signature is empty.
func Build(ctx context.Context, records []catalog.Record, opts Options) (catalog.Catalog, Stats, error) {
	if opts.CastLimit <= 0 {
		opts.CastLimit = DefaultCastLimit
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	out := make([]built, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = buildOne(&records[i], opts.CastLimit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{Input: len(records), MalformedByField: map[string]int{}}
	cat := make(catalog.Catalog, 0, len(records))
	for _, b := range out {
		for _, f := range b.malformed {
			stats.MalformedByField[f]++
		}
		if b.item.Tags == "" {
			stats.DroppedEmpty++
			continue
		}
		cat = append(cat, b.item)
	}
	stats.Kept = len(cat)
	return cat, stats, nil
}

func buildOne(r *catalog.Record, castLimit int) built {
	var malformed []string
	field := func(name string, names []string, ok bool) []string {
		if !ok {
			malformed = append(malformed, name)
		}
		return names
	}

	names, ok := ParseNames(r.Genres, 0)
	genres := field(catalog.ColGenres, names, ok)
	names, ok = ParseNames(r.Keywords, 0)
	keywords := field(catalog.ColKeywords, names, ok)
	names, ok = ParseNames(r.Cast, castLimit)
	cast := field(catalog.ColCast, names, ok)
	names, ok = Director(r.Crew)
	director := field(catalog.ColCrew, names, ok)

	return built{
		item: catalog.Item{
			ID:          r.ID,
			Title:       r.Title,
			Tags:        Compose(Tokenize(r.Overview), genres, keywords, cast, director),
			VoteAverage: r.VoteAverage,
			VoteCount:   r.VoteCount,
			ReleaseDate: r.ReleaseDate,
			PosterPath:  r.PosterPath,
		},
		malformed: malformed,
	}
}

// Compose concatenates token groups in order, joins them with single
// spaces and lowercases the result.
func Compose(groups ...[]string) string {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	tokens := make([]string, 0, n)
	for _, g := range groups {
		tokens = append(tokens, g...)
	}
	return strings.ToLower(strings.Join(tokens, " "))
}
