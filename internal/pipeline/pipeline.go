// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package pipeline runs the offline index build:
//
//	raw sources -> Merge -> signature.Build -> vectorize.Fit/Encode -> similarity.Compute
//
// A build either returns a complete Result or an error; nothing partial is
// ever handed to a caller. Filtering of empty signatures happens before the
// matrix is computed, so catalog positions and matrix rows always agree.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/signature"
	"github.com/tomtom215/cinematch/internal/similarity"
	"github.com/tomtom215/cinematch/internal/vectorize"
)

// Options configures a build.
type Options struct {
	MoviesPath  string
	CreditsPath string
	Merge       catalog.MergeOptions
	CastLimit   int
	MaxFeatures int
	StopWords   string
	Workers     int
}

// Stats summarizes a build.
type Stats struct {
	Merge          catalog.MergeStats `json:"merge"`
	Signature      signature.Stats    `json:"signature"`
	VocabularySize int                `json:"vocabulary_size"`
	ZeroVectors    int                `json:"zero_vectors"`
	Duration       time.Duration      `json:"duration_ns"`
}

// Result is a completed build.
type Result struct {
	Catalog    catalog.Catalog
	Matrix     *similarity.Matrix
	Vocabulary *vectorize.Vocabulary
	Stats      Stats
}

// Builder runs builds with a component logger.
type Builder struct {
	opts   Options
	logger zerolog.Logger
}

// NewBuilder creates a builder.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBuilder(opts Options, logger zerolog.Logger) *Builder {
	return &Builder{
		opts:   opts,
		logger: logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run reads both raw sources and builds the index.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	movies, err := catalog.ReadTable(b.opts.MoviesPath)
	if err != nil {
		return nil, fmt.Errorf("read movies source: %w", err)
	}
	credits, err := catalog.ReadTable(b.opts.CreditsPath)
	if err != nil {
		return nil, fmt.Errorf("read credits source: %w", err)
	}
	metrics.RecordBuildStage("read", time.Since(start))
	b.logger.Info().
		Str("movies", b.opts.MoviesPath).
		Int("movie_rows", len(movies.Rows)).
		Str("credits", b.opts.CreditsPath).
		Int("credit_rows", len(credits.Rows)).
		Msg("Raw sources loaded")

	return b.FromTables(ctx, movies, credits)
}

// FromTables builds the index from already loaded tables.
func (b *Builder) FromTables(ctx context.Context, movies, credits *catalog.Table) (*Result, error) {
	start := time.Now()
	records, mstats := catalog.Merge(movies, credits, b.opts.Merge)
	metrics.RecordBuildStage("merge", time.Since(start))
	metrics.BuildItemsDropped.WithLabelValues("left_only").Add(float64(mstats.LeftOnly))
	metrics.BuildItemsDropped.WithLabelValues("right_only").Add(float64(mstats.RightOnly))
	metrics.BuildItemsDropped.WithLabelValues("invalid_id").Add(float64(mstats.InvalidID))
	b.logger.Info().
		Int("joined", mstats.Joined).
		Int("left_only", mstats.LeftOnly).
		Int("right_only", mstats.RightOnly).
		Int("invalid_id", mstats.InvalidID).
		Msg("Sources merged")

	res, err := b.FromRecords(ctx, records)
	if err != nil {
		return nil, err
	}
	res.Stats.Merge = mstats
	return res, nil
}

// FromRecords builds the index from merged records.
func (b *Builder) FromRecords(ctx context.Context, records []catalog.Record) (*Result, error) {
	buildStart := time.Now()

	start := time.Now()
	cat, sstats, err := signature.Build(ctx, records, signature.Options{
		CastLimit: b.opts.CastLimit,
		Workers:   b.opts.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("build signatures: %w", err)
	}
	metrics.RecordBuildStage("signature", time.Since(start))
	metrics.BuildItemsDropped.WithLabelValues("empty_signature").Add(float64(sstats.DroppedEmpty))
	for field, n := range sstats.MalformedByField {
		metrics.BuildMalformedFields.WithLabelValues(field).Add(float64(n))
		b.logger.Debug().Str("field", field).Int("items", n).Msg("Malformed sub-fields replaced by empty values")
	}
	b.logger.Info().
		Int("kept", sstats.Kept).
		Int("dropped_empty", sstats.DroppedEmpty).
		Msg("Signatures built")

	start = time.Now()
	docs := make([]string, len(cat))
	for i := range cat {
		docs[i] = cat[i].Tags
	}
	vocab, err := vectorize.Fit(docs, vectorize.Options{
		MaxFeatures: b.opts.MaxFeatures,
		StopWords:   b.opts.StopWords,
	})
	if err != nil {
		return nil, fmt.Errorf("fit vocabulary: %w", err)
	}
	vectors := vocab.EncodeAll(docs)
	zero := similarity.ZeroRows(vectors)
	metrics.RecordBuildStage("vectorize", time.Since(start))
	metrics.VocabularySize.Set(float64(vocab.Size()))
	metrics.ZeroVectors.Set(float64(zero))
	b.logger.Info().
		Int("vocabulary", vocab.Size()).
		Int("zero_vectors", zero).
		Msg("Signatures vectorized")

	start = time.Now()
	matrix, err := similarity.Compute(ctx, vectors, b.opts.Workers)
	if err != nil {
		return nil, err
	}
	metrics.RecordBuildStage("similarity", time.Since(start))
	b.logger.Info().
		Int("items", matrix.Size()).
		Dur("elapsed", time.Since(start)).
		Msg("Similarity matrix computed")

	return &Result{
		Catalog:    cat,
		Matrix:     matrix,
		Vocabulary: vocab,
		Stats: Stats{
			Signature:      sstats,
			VocabularySize: vocab.Size(),
			ZeroVectors:    zero,
			Duration:       time.Since(buildStart),
		},
	}, nil
}
