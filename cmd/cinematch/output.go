// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"fmt"

	"github.com/goccy/go-json"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"exit_code"`
	Hint  string `json:"hint,omitempty"`
}

// outputJSON writes v as indented JSON to stdout.
func (a *app) outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')
	_, err = a.stdout.Write(data)
	return err
}

// outputHuman writes formatted text to stdout.
func (a *app) outputHuman(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

// output writes v as JSON, or calls human in --human mode.
func (a *app) output(v any, human func()) error {
	if a.human {
		human()
		return nil
	}
	return a.outputJSON(v)
}

// fail reports err in the selected format and returns its exit code.
// JSON errors go to stdout so callers parse a single stream.
func (a *app) fail(err error) int {
	code := exitCode(err)
	tip := hint(err)
	if a.human {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		if tip != "" {
			fmt.Fprintf(a.stderr, "\n%s\n", tip)
		}
		return code
	}
	if encErr := a.outputJSON(errorResponse{Error: err.Error(), Code: code, Hint: tip}); encErr != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
	}
	return code
}

// year returns the year part of a release date, or "".
func year(releaseDate string) string {
	if len(releaseDate) < 4 {
		return ""
	}
	return releaseDate[:4]
}
