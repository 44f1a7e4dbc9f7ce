// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinematch/internal/artifact"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/pipeline"
)

// buildResult is the output of the build command.
type buildResult struct {
	BuildID   string         `json:"build_id"`
	Items     int            `json:"items"`
	Artifacts string         `json:"artifacts"`
	Backend   string         `json:"backend"`
	Stats     pipeline.Stats `json:"stats"`
}

func newBuildCmd(a *app) *cobra.Command {
	var movies, credits, dir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the similarity index from the raw sources",
		Long: `Build the similarity index from the raw sources.

Reads the movies and credits tables (CSV, XLSX or SQLite), merges them on
the movie id, builds one signature per movie, vectorizes the signatures and
computes the cosine similarity matrix. The catalog, matrix, vocabulary and
manifest are saved together; a failed build leaves existing artifacts
untouched.

Examples:
  cinematch build
  cinematch build --movies data/tmdb_5000_movies.csv --credits data/tmdb_5000_credits.csv
  cinematch build --artifacts /var/lib/cinematch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if movies != "" {
				a.cfg.Data.MoviesPath = movies
			}
			if credits != "" {
				a.cfg.Data.CreditsPath = credits
			}
			if dir != "" {
				a.cfg.Artifacts.Dir = dir
			}
			return a.runBuild(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&movies, "movies", "", "Movies metadata source (overrides data.movies_path)")
	cmd.Flags().StringVar(&credits, "credits", "", "Credits source (overrides data.credits_path)")
	cmd.Flags().StringVar(&dir, "artifacts", "", "Artifact directory (overrides artifacts.dir)")
	return cmd
}

func (a *app) runBuild(ctx context.Context) error {
	unlock, err := artifact.Lock(a.cfg.Artifacts.Dir, a.cfg.Build.LockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	if a.human {
		a.outputHuman("[1/3] Loading and merging sources...\n")
	}
	res, err := pipeline.NewBuilder(a.cfg.PipelineOptions(), logging.WithComponent("build")).Run(ctx)
	if err != nil {
		return err
	}

	if a.human {
		a.outputHuman("[2/3] Built %d signatures, %d terms\n", len(res.Catalog), res.Stats.VocabularySize)
	}
	bundle := artifact.NewBundle(res.Catalog, res.Matrix, res.Vocabulary, a.cfg.Data.MoviesPath, a.cfg.Data.CreditsPath)

	store, err := a.cfg.OpenArtifactStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Closing artifact store")
		}
	}()
	if err := store.Save(ctx, bundle); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}
	logging.Info().
		Str("build_id", bundle.Manifest.BuildID).
		Int("items", len(res.Catalog)).
		Str("dir", a.cfg.Artifacts.Dir).
		Msg("Artifacts saved")

	out := buildResult{
		BuildID:   bundle.Manifest.BuildID,
		Items:     len(res.Catalog),
		Artifacts: a.cfg.Artifacts.Dir,
		Backend:   a.cfg.Artifacts.Backend,
		Stats:     res.Stats,
	}
	return a.output(out, func() {
		a.outputHuman("[3/3] Saved artifacts to %s (%s backend)\n\n", out.Artifacts, out.Backend)
		a.outputHuman("Build complete in %s\n", res.Stats.Duration.Round(time.Millisecond))
		a.outputHuman("  build id:     %s\n", out.BuildID)
		a.outputHuman("  items:        %d\n", out.Items)
		a.outputHuman("  dropped:      %d unmatched, %d empty\n",
			res.Stats.Merge.LeftOnly+res.Stats.Merge.RightOnly, res.Stats.Signature.DroppedEmpty)
		a.outputHuman("  zero vectors: %d\n", res.Stats.ZeroVectors)
	})
}
