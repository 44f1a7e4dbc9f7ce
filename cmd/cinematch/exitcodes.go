// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"errors"

	"github.com/tomtom215/cinematch/internal/artifact"
	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Invalid configuration, missing raw sources or artifacts
	ExitDataError   = 3 // Unknown title, invalid filter, corrupt artifacts
)

// exitError pins an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, catalog.ErrInputMissing),
		errors.Is(err, artifact.ErrMissingArtifact),
		errors.Is(err, config.ErrInvalid):
		return ExitConfigError
	case errors.Is(err, recommend.ErrTitleNotFound),
		errors.Is(err, recommend.ErrInvalidFilter),
		errors.Is(err, artifact.ErrCorruptArtifact):
		return ExitDataError
	default:
		return ExitError
	}
}

// hint returns advice for errors the user can fix, or "".
func hint(err error) string {
	switch {
	case errors.Is(err, catalog.ErrInputMissing):
		return "Download the TMDB 5000 dataset from " + config.DatasetURL +
			" and place tmdb_5000_movies.csv and tmdb_5000_credits.csv in data/."
	case errors.Is(err, artifact.ErrMissingArtifact):
		return "Run `cinematch build` first."
	case errors.Is(err, recommend.ErrTitleNotFound):
		return "Use `cinematch search` to find valid titles."
	default:
		return ""
	}
}
