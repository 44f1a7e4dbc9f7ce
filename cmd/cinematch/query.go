// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinematch/internal/artifact"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// loadBundle reads the persisted artifacts.
func (a *app) loadBundle(ctx context.Context) (*artifact.Bundle, error) {
	store, err := a.cfg.OpenArtifactStore()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Closing artifact store")
		}
	}()
	return store.Load(ctx)
}

// loadService reads the artifacts and builds the query service.
func (a *app) loadService(ctx context.Context) (*recommend.Service, error) {
	b, err := a.loadBundle(ctx)
	if err != nil {
		return nil, err
	}
	return recommend.FromBundle(b, a.cfg.RecommenderOptions(), logging.WithComponent("recommend"))
}

func newRecommendCmd(a *app) *cobra.Command {
	var n int
	var where string

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "List the movies most similar to a title",
		Long: `List the movies most similar to a title, most similar first.

The title must match exactly; use search to find it. Words after the
command are joined, so quoting is optional.

--where takes a CEL expression over item: id, title, year, vote_average,
rated, vote_count and score (similarity to the queried title). Unknown
release years are "".

Examples:
  cinematch recommend "The Dark Knight"
  cinematch recommend Avatar -n 10
  cinematch recommend Heat --where 'item.vote_average >= 7.0'
  cinematch recommend Heat --where 'item.year != "" && item.year < "2000"'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			if n <= 0 {
				n = a.cfg.Recommend.DefaultN
			}

			var filter *recommend.Filter
			if where != "" {
				f, err := recommend.CompileFilter(where)
				if err != nil {
					return err
				}
				filter = f
			}

			svc, err := a.loadService(cmd.Context())
			if err != nil {
				return err
			}
			recs, err := svc.RecommendWhere(title, n, filter)
			if err != nil {
				return err
			}

			out := models.RecommendResult{Title: title, N: n, Where: where, Results: recs}
			return a.output(out, func() {
				if len(recs) == 0 {
					a.outputHuman("No recommendations for %q\n", title)
					return
				}
				a.outputHuman("Because you liked %q:\n\n", title)
				for i, r := range recs {
					a.outputHuman("%3d. %s", i+1, r.Title)
					if y := year(r.ReleaseDate); y != "" {
						a.outputHuman(" (%s)", y)
					}
					a.outputHuman("  score %.4f", r.Score)
					if r.VoteAverage != nil {
						a.outputHuman("  rating %.1f", *r.VoteAverage)
					}
					a.outputHuman("\n")
				}
			})
		},
	}
	cmd.Flags().IntVarP(&n, "num", "n", 0, "Number of recommendations (default: recommend.default_n)")
	cmd.Flags().StringVar(&where, "where", "", "CEL filter over candidate items")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find titles containing a substring",
		Long: `Find titles containing a substring, ignoring case, in catalog order.

Examples:
  cinematch search dark
  cinematch search "star wars" --limit 20`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if limit <= 0 {
				limit = a.cfg.Recommend.DefaultSearchLimit
			}
			svc, err := a.loadService(cmd.Context())
			if err != nil {
				return err
			}
			titles := svc.Search(query, limit)

			out := models.SearchResult{Query: query, Limit: limit, Titles: titles}
			return a.output(out, func() {
				if len(titles) == 0 {
					a.outputHuman("No titles found\n")
					return
				}
				for _, t := range titles {
					a.outputHuman("%s\n", t)
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (default: recommend.default_search_limit)")
	return cmd
}

func newTopCmd(a *app) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the highest rated movies",
		Long: `List the highest rated movies with more votes than
recommend.vote_threshold (default 500).

Examples:
  cinematch top
  cinematch top -n 25 --human`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n <= 0 {
				n = recommend.DefaultLimit
			}
			svc, err := a.loadService(cmd.Context())
			if err != nil {
				return err
			}
			movies := svc.TopRated(n)

			out := models.TopRatedResult{MinVotes: a.cfg.Recommend.VoteThreshold, Movies: movies}
			return a.output(out, func() {
				if len(movies) == 0 {
					a.outputHuman("No movies with more than %d votes\n", out.MinVotes)
					return
				}
				for i, m := range movies {
					a.outputHuman("%3d. %-50s %4.1f  (%d votes)\n", i+1, m.Title, m.VoteAverage, m.VoteCount)
				}
			})
		},
	}
	cmd.Flags().IntVarP(&n, "num", "n", 0, "Number of movies (default 10)")
	return cmd
}
