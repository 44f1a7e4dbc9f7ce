// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package main provides the cinematch CLI.
//
// cinematch builds the similarity index from the TMDB 5000 movies and
// credits exports and answers queries against the persisted artifacts:
//
//	cinematch build                      # data/*.csv -> artifacts/
//	cinematch recommend "The Dark Knight" -n 5
//	cinematch recommend Avatar --where 'item.vote_average >= 7.0'
//	cinematch search dark --limit 20
//	cinematch top -n 10
//	cinematch info
//	cinematch config
//
// Output is JSON on stdout by default; --human switches to plain text.
// Logs go to stderr. Configuration follows the server: defaults, then
// config.yaml (or --config / CONFIG_PATH), then environment variables, with
// a .env file in the working directory loaded first.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

// app carries what every subcommand needs: output streams, global flags
// and the loaded configuration.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	human      bool
	configPath string
	envFile    string
	cfg        *config.Config
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		return a.fail(err)
	}
	return ExitSuccess
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cinematch",
		Short: "Content-based movie similarity index",
		Long: `cinematch builds a content-based similarity index over the TMDB 5000
movie dataset and answers "more like this", title search and top-rated
queries from the persisted index.

All commands output JSON by default for easy scripting.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().BoolVar(&a.human, "human", false, "Use human-readable output instead of JSON")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: $CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before the configuration")

	root.AddCommand(
		newBuildCmd(a),
		newRecommendCmd(a),
		newSearchCmd(a),
		newTopCmd(a),
		newInfoCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads the env file and configuration, then initializes logging.
func (a *app) setup(*cobra.Command, []string) error {
	if a.envFile != "" {
		// Variables already set in the environment win over the file.
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &exitError{code: ExitConfigError, err: fmt.Errorf("load %s: %w", a.envFile, err)}
		}
	}

	path := a.configPath
	if path == "" {
		path = os.Getenv(config.ConfigPathEnvVar)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}
	a.cfg = cfg

	lc := cfg.LoggingOptions()
	lc.Output = a.stderr
	lc.Service = "cinematch"
	logging.Init(lc)
	return nil
}
