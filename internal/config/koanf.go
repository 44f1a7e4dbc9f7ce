// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/vectorize"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematch/config.yaml",
	"/etc/cinematch/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Dataset defaults.
const (
	DefaultMoviesPath  = "data/tmdb_5000_movies.csv"
	DefaultCreditsPath = "data/tmdb_5000_credits.csv"
	DatasetURL         = "https://www.kaggle.com/datasets/tmdb/tmdb-movie-metadata"
)

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			MoviesPath:  DefaultMoviesPath,
			CreditsPath: DefaultCreditsPath,
			MoviesKey:   "id",
			CreditsKey:  "movie_id",
		},
		Build: BuildConfig{
			MaxFeatures: vectorize.DefaultMaxFeatures,
			StopWords:   "english",
			CastLimit:   3,
			Workers:     0,
			LockTimeout: 30 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			Dir:     "artifacts",
			Backend: "file",
		},
		Recommend: RecommendConfig{
			VoteThreshold:      recommend.DefaultVoteThreshold,
			PosterBaseURL:      recommend.DefaultPosterBaseURL,
			DefaultN:           recommend.DefaultLimit,
			MaxN:               100,
			DefaultSearchLimit: recommend.DefaultLimit,
			MaxSearchLimit:     100,
		},
		Cache: CacheConfig{
			Backend:   cache.BackendMemory,
			Capacity:  cache.DefaultCapacity,
			TTL:       cache.DefaultTTL,
			RedisAddr: "",
			RedisDB:   0,
			KeyPrefix: "cinematch:",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			MaxFilterLength: 512,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration from defaults, the first config file
// found, and environment variables, in that order of increasing priority.
func LoadWithKoanf() (*Config, error) {
	return Load("")
}

// Load is LoadWithKoanf with an explicit config file. An explicit path
// that does not exist is an error; an empty path searches the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	} else {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated env values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"movies_path":  "data.movies_path",
	"credits_path": "data.credits_path",
	"movies_key":   "data.movies_key",
	"credits_key":  "data.credits_key",

	"max_features":       "build.max_features",
	"stop_words":         "build.stop_words",
	"cast_limit":         "build.cast_limit",
	"build_workers":      "build.workers",
	"build_lock_timeout": "build.lock_timeout",

	"artifacts_dir":     "artifacts.dir",
	"artifacts_backend": "artifacts.backend",

	"vote_threshold":       "recommend.vote_threshold",
	"poster_base_url":      "recommend.poster_base_url",
	"default_n":            "recommend.default_n",
	"max_n":                "recommend.max_n",
	"default_search_limit": "recommend.default_search_limit",
	"max_search_limit":     "recommend.max_search_limit",

	"cache_backend":    "cache.backend",
	"cache_capacity":   "cache.capacity",
	"cache_ttl":        "cache.ttl",
	"redis_addr":       "cache.redis_addr",
	"redis_password":   "cache.redis_password",
	"redis_db":         "cache.redis_db",
	"cache_key_prefix": "cache.key_prefix",

	"http_host":        "server.host",
	"http_port":        "server.port",
	"server_timeout":   "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"max_filter_length": "api.max_filter_length",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
//
// Examples:
//   - LOG_LEVEL -> logging.level
//   - ARTIFACTS_DIR -> artifacts.dir
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
