// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package config loads CineMatch configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in defaults from defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH, config.yaml, /etc/cinematch/config.yaml)
//  3. Environment Variables: override any mapped setting (see envTransformFunc)
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"time"

	"github.com/tomtom215/cinematch/internal/artifact"
	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/pipeline"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Data      DataConfig      `koanf:"data" yaml:"data"`
	Build     BuildConfig     `koanf:"build" yaml:"build"`
	Artifacts ArtifactsConfig `koanf:"artifacts" yaml:"artifacts"`
	Recommend RecommendConfig `koanf:"recommend" yaml:"recommend"`
	Cache     CacheConfig     `koanf:"cache" yaml:"cache"`
	Server    ServerConfig    `koanf:"server" yaml:"server"`
	API       APIConfig       `koanf:"api" yaml:"api"`
	Security  SecurityConfig  `koanf:"security" yaml:"security"`
	Logging   LoggingConfig   `koanf:"logging" yaml:"logging"`
}

// DataConfig locates the two raw sources.
//
// Environment Variables:
//   - MOVIES_PATH, CREDITS_PATH: source files (.csv, .xlsx, .db/.sqlite with optional #table)
//   - MOVIES_KEY, CREDITS_KEY: join columns (default: id, movie_id)
type DataConfig struct {
	MoviesPath  string `koanf:"movies_path" yaml:"movies_path" validate:"required"`
	CreditsPath string `koanf:"credits_path" yaml:"credits_path" validate:"required"`
	MoviesKey   string `koanf:"movies_key" yaml:"movies_key" validate:"required"`
	CreditsKey  string `koanf:"credits_key" yaml:"credits_key" validate:"required"`
}

// BuildConfig tunes the offline build. Workers 0 means runtime.NumCPU().
type BuildConfig struct {
	MaxFeatures int           `koanf:"max_features" yaml:"max_features" validate:"min=1,max=1000000"`
	StopWords   string        `koanf:"stop_words" yaml:"stop_words" validate:"stopwords"`
	CastLimit   int           `koanf:"cast_limit" yaml:"cast_limit" validate:"min=0,max=100"`
	Workers     int           `koanf:"workers" yaml:"workers" validate:"min=0,max=1024"`
	LockTimeout time.Duration `koanf:"lock_timeout" yaml:"lock_timeout"`
}

// ArtifactsConfig says where builds are persisted.
type ArtifactsConfig struct {
	Dir     string `koanf:"dir" yaml:"dir" validate:"required"`
	Backend string `koanf:"backend" yaml:"backend" validate:"oneof=file badger"`
}

// RecommendConfig holds query defaults and limits.
type RecommendConfig struct {
	VoteThreshold      int    `koanf:"vote_threshold" yaml:"vote_threshold" validate:"min=0"`
	PosterBaseURL      string `koanf:"poster_base_url" yaml:"poster_base_url" validate:"omitempty,url"`
	DefaultN           int    `koanf:"default_n" yaml:"default_n" validate:"min=1"`
	MaxN               int    `koanf:"max_n" yaml:"max_n" validate:"min=1,max=1000"`
	DefaultSearchLimit int    `koanf:"default_search_limit" yaml:"default_search_limit" validate:"min=1"`
	MaxSearchLimit     int    `koanf:"max_search_limit" yaml:"max_search_limit" validate:"min=1,max=10000"`
}

// CacheConfig selects the API result cache.
//
// Environment Variables:
//   - CACHE_BACKEND: none, memory or redis (default: memory)
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: Redis connection
type CacheConfig struct {
	Backend       string        `koanf:"backend" yaml:"backend" validate:"oneof=none memory redis"`
	Capacity      int           `koanf:"capacity" yaml:"capacity" validate:"min=1"`
	TTL           time.Duration `koanf:"ttl" yaml:"ttl"`
	RedisAddr     string        `koanf:"redis_addr" yaml:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string        `koanf:"redis_password" yaml:"redis_password"`
	RedisDB       int           `koanf:"redis_db" yaml:"redis_db" validate:"min=0,max=15"`
	KeyPrefix     string        `koanf:"key_prefix" yaml:"key_prefix"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host" yaml:"host"`
	Port            int           `koanf:"port" yaml:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout" yaml:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
	Environment     string        `koanf:"environment" yaml:"environment" validate:"oneof=development staging production"`
}

// APIConfig bounds request processing.
type APIConfig struct {
	MaxFilterLength int `koanf:"max_filter_length" yaml:"max_filter_length" validate:"min=1"`
}

// SecurityConfig holds CORS and rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins" yaml:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" yaml:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" yaml:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled" yaml:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller" yaml:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// PipelineOptions converts the data and build sections for pipeline.NewBuilder.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		MoviesPath:  c.Data.MoviesPath,
		CreditsPath: c.Data.CreditsPath,
		Merge: catalog.MergeOptions{
			LeftKey:  c.Data.MoviesKey,
			RightKey: c.Data.CreditsKey,
		},
		CastLimit:   c.Build.CastLimit,
		MaxFeatures: c.Build.MaxFeatures,
		StopWords:   c.Build.StopWords,
		Workers:     c.Build.Workers,
	}
}

// RecommenderOptions converts the recommend section for recommend.New.
func (c *Config) RecommenderOptions() recommend.Config {
	return recommend.Config{
		VoteThreshold: c.Recommend.VoteThreshold,
		PosterBaseURL: c.Recommend.PosterBaseURL,
	}
}

// CacheOptions converts the cache section for cache.New.
func (c *Config) CacheOptions() cache.Config {
	return cache.Config{
		Backend:  c.Cache.Backend,
		Capacity: c.Cache.Capacity,
		TTL:      c.Cache.TTL,
		Redis: cache.RedisConfig{
			Addr:      c.Cache.RedisAddr,
			Password:  c.Cache.RedisPassword,
			DB:        c.Cache.RedisDB,
			KeyPrefix: c.Cache.KeyPrefix,
			TTL:       c.Cache.TTL,
		},
	}
}

// LoggingOptions converts the logging section for logging.Init.
func (c *Config) LoggingOptions() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	return lc
}

// OpenArtifactStore opens the configured artifact backend.
func (c *Config) OpenArtifactStore() (artifact.Store, error) {
	return artifact.Open(c.Artifacts.Backend, c.Artifacts.Dir)
}
