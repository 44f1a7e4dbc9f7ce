// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/artifact"
	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
)

const fixtureMovies = `id,title,overview,genres,keywords,vote_average,vote_count,release_date,poster_path
1,Interstellar,A team travels through a wormhole in space,"[{""name"": ""Science Fiction""}]","[{""name"": ""space travel""}]",8.1,10867,2014-11-05,/inter.jpg
2,Gravity,Astronauts stranded in space,"[{""name"": ""Science Fiction""}]","[{""name"": ""space""}]",7.2,5751,2013-09-27,/grav.jpg
3,Julie & Julia,Cooking recipes in Paris,"[{""name"": ""Drama""}]","[{""name"": ""cooking""}]",6.6,502,2009-08-06,
4,No Credits,Only in metadata,[],[],5.0,10,,
`

const fixtureCredits = `movie_id,title,cast,crew
1,Interstellar,"[{""name"": ""Matthew McConaughey""}]","[{""job"": ""Director"", ""name"": ""Christopher Nolan""}]"
2,Gravity,"[{""name"": ""Sandra Bullock""}]","[{""job"": ""Director"", ""name"": ""Alfonso Cuaron""}]"
3,Julie & Julia,"[{""name"": ""Meryl Streep""}]","[{""job"": ""Director"", ""name"": ""Nora Ephron""}]"
`

// isolate runs the test in an empty directory with no config-related
// environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, env := range []string{
		config.ConfigPathEnvVar, "MOVIES_PATH", "CREDITS_PATH", "ARTIFACTS_DIR",
		"ARTIFACTS_BACKEND", "VOTE_THRESHOLD", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
	return dir
}

func writeFixtures(t *testing.T, dir string) {
	t.Helper()
	data := filepath.Join(dir, "data")
	if err := os.MkdirAll(data, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"tmdb_5000_movies.csv":  fixtureMovies,
		"tmdb_5000_credits.csv": fixtureCredits,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(data, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

// cli runs the CLI and returns the exit code, stdout and stderr.
func cli(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return v
}

func mustBuild(t *testing.T) buildResult {
	t.Helper()
	code, out, errOut := cli(t, "build")
	if code != ExitSuccess {
		t.Fatalf("build exit = %d\nstdout: %s\nstderr: %s", code, out, errOut)
	}
	return decode[buildResult](t, out)
}

func TestBuild_MissingInput(t *testing.T) {
	isolate(t)

	code, out, _ := cli(t, "build")
	if code != ExitConfigError {
		t.Fatalf("exit = %d, want %d", code, ExitConfigError)
	}
	resp := decode[errorResponse](t, out)
	if !strings.Contains(resp.Hint, config.DatasetURL) {
		t.Errorf("hint = %q, want dataset URL", resp.Hint)
	}
	if resp.Code != ExitConfigError {
		t.Errorf("exit_code = %d", resp.Code)
	}
	if _, err := os.Stat("artifacts"); !os.IsNotExist(err) {
		t.Errorf("failed build left artifacts behind: %v", err)
	}
}

func TestBuild_MissingInput_Human(t *testing.T) {
	isolate(t)

	code, out, errOut := cli(t, "build", "--human")
	if code != ExitConfigError {
		t.Fatalf("exit = %d, want %d", code, ExitConfigError)
	}
	if strings.Contains(out, "{") {
		t.Errorf("human mode wrote JSON to stdout: %s", out)
	}
	if !strings.Contains(errOut, "error:") || !strings.Contains(errOut, "kaggle.com") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestBuildAndQuery(t *testing.T) {
	dir := isolate(t)
	writeFixtures(t, dir)

	built := mustBuild(t)
	if built.BuildID == "" {
		t.Error("build_id is empty")
	}
	if built.Items != 3 {
		t.Errorf("items = %d, want 3 (unmatched row dropped)", built.Items)
	}
	if built.Stats.Merge.LeftOnly != 1 {
		t.Errorf("left_only = %d, want 1", built.Stats.Merge.LeftOnly)
	}

	t.Run("recommend", func(t *testing.T) {
		code, out, errOut := cli(t, "recommend", "Interstellar", "-n", "1")
		if code != ExitSuccess {
			t.Fatalf("exit = %d: %s %s", code, out, errOut)
		}
		res := decode[models.RecommendResult](t, out)
		if len(res.Results) != 1 || res.Results[0].Title != "Gravity" {
			t.Errorf("results = %+v, want [Gravity]", res.Results)
		}
	})

	t.Run("recommend joins words", func(t *testing.T) {
		code, out, _ := cli(t, "recommend", "Julie", "&", "Julia")
		if code != ExitSuccess {
			t.Fatalf("exit = %d: %s", code, out)
		}
		res := decode[models.RecommendResult](t, out)
		if res.Title != "Julie & Julia" || len(res.Results) != 2 {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("recommend human", func(t *testing.T) {
		code, out, _ := cli(t, "recommend", "Interstellar", "--human")
		if code != ExitSuccess {
			t.Fatalf("exit = %d", code)
		}
		if !strings.Contains(out, "Because you liked \"Interstellar\"") || !strings.Contains(out, "Gravity (2013)") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("recommend where", func(t *testing.T) {
		code, out, _ := cli(t, "recommend", "Interstellar", "--where", "item.vote_count < 1000")
		if code != ExitSuccess {
			t.Fatalf("exit = %d: %s", code, out)
		}
		res := decode[models.RecommendResult](t, out)
		if len(res.Results) != 1 || res.Results[0].Title != "Julie & Julia" {
			t.Errorf("results = %+v", res.Results)
		}
	})

	t.Run("search", func(t *testing.T) {
		code, out, _ := cli(t, "search", "GRAV")
		if code != ExitSuccess {
			t.Fatalf("exit = %d", code)
		}
		res := decode[models.SearchResult](t, out)
		if len(res.Titles) != 1 || res.Titles[0] != "Gravity" {
			t.Errorf("titles = %v", res.Titles)
		}
	})

	t.Run("top", func(t *testing.T) {
		code, out, _ := cli(t, "top", "-n", "2")
		if code != ExitSuccess {
			t.Fatalf("exit = %d", code)
		}
		res := decode[models.TopRatedResult](t, out)
		var titles []string
		for _, m := range res.Movies {
			titles = append(titles, m.Title)
		}
		if fmt.Sprint(titles) != "[Interstellar Gravity]" {
			t.Errorf("top = %v", titles)
		}
		if res.MinVotes != recommend.DefaultVoteThreshold {
			t.Errorf("min_votes = %d", res.MinVotes)
		}
	})

	t.Run("info", func(t *testing.T) {
		code, out, _ := cli(t, "info")
		if code != ExitSuccess {
			t.Fatalf("exit = %d", code)
		}
		res := decode[infoResult](t, out)
		if res.CatalogSize != 3 || res.Manifest.BuildID != built.BuildID {
			t.Errorf("info = %+v, want 3 items and build %s", res, built.BuildID)
		}
	})
}

func TestQueryErrors(t *testing.T) {
	dir := isolate(t)
	writeFixtures(t, dir)
	mustBuild(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantHint string
	}{
		{"unknown title", []string{"recommend", "Nope"}, ExitDataError, "cinematch search"},
		{"invalid filter", []string{"recommend", "Gravity", "--where", "item.nope >"}, ExitDataError, ""},
		{"missing title arg", []string{"recommend"}, ExitError, ""},
		{"unknown command", []string{"train"}, ExitError, ""},
		{"missing config file", []string{"top", "--config", "nope.yaml"}, ExitConfigError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, _ := cli(t, tt.args...)
			if code != tt.wantCode {
				t.Fatalf("exit = %d, want %d (%s)", code, tt.wantCode, out)
			}
			resp := decode[errorResponse](t, out)
			if resp.Error == "" {
				t.Error("empty error message")
			}
			if tt.wantHint != "" && !strings.Contains(resp.Hint, tt.wantHint) {
				t.Errorf("hint = %q, want %q", resp.Hint, tt.wantHint)
			}
		})
	}
}

func TestQuery_MissingArtifacts(t *testing.T) {
	isolate(t)

	code, out, _ := cli(t, "search", "dark")
	if code != ExitConfigError {
		t.Fatalf("exit = %d, want %d", code, ExitConfigError)
	}
	resp := decode[errorResponse](t, out)
	if !strings.Contains(resp.Hint, "cinematch build") {
		t.Errorf("hint = %q", resp.Hint)
	}
}

func TestConfig_EnvFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("VOTE_THRESHOLD=1234\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	code, out, _ := cli(t, "config")
	if code != ExitSuccess {
		t.Fatalf("exit = %d: %s", code, out)
	}
	if !strings.Contains(out, "vote_threshold: 1234") {
		t.Errorf("config output missing .env override:\n%s", out)
	}
	if !strings.Contains(out, "max_features: 5000") {
		t.Errorf("config output missing defaults:\n%s", out)
	}
}

func TestConfig_InvalidFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	code, _, _ := cli(t, "config", "--config", path)
	if code != ExitConfigError {
		t.Errorf("exit = %d, want %d", code, ExitConfigError)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"input missing", fmt.Errorf("read: %w", catalog.ErrInputMissing), ExitConfigError},
		{"artifact missing", fmt.Errorf("load: %w", artifact.ErrMissingArtifact), ExitConfigError},
		{"title", &recommend.TitleNotFoundError{Title: "x"}, ExitDataError},
		{"corrupt", artifact.ErrCorruptArtifact, ExitDataError},
		{"pinned", &exitError{code: 7, err: catalog.ErrInputMissing}, 7},
		{"other", fmt.Errorf("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestYear(t *testing.T) {
	for in, want := range map[string]string{"2014-11-05": "2014", "": "", "20": ""} {
		if got := year(in); got != want {
			t.Errorf("year(%q) = %q, want %q", in, got, want)
		}
	}
}
