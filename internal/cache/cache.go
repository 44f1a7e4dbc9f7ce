// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package cache stores encoded API query results.
//
// Results are keyed by the build id of the loaded artifacts, so a rebuild
// never serves stale answers. Two backends exist: an in-process LRU and a
// shared Redis instance guarded by a circuit breaker. A Redis failure is
// treated as a miss; the cache never fails a query.
package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// Backend names.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Defaults.
const (
	DefaultCapacity = 10000
	DefaultTTL      = 5 * time.Minute
)

// Cache stores opaque result bytes.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Name() string
	Close() error
}

// Config selects and sizes a backend.
type Config struct {
	Backend  string
	Capacity int
	TTL      time.Duration
	Redis    RedisConfig
}

// New returns the configured backend, or nil for BackendNone.
func New(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, nil
	case "", BackendMemory:
		return NewLRUCache(cfg.Capacity, cfg.TTL), nil
	case BackendRedis:
		r := cfg.Redis
		if r.TTL <= 0 {
			r.TTL = cfg.TTL
		}
		return NewRedis(ctx, r)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key builds a cache key for one query against one build. Parameters are
// hashed so keys stay short whatever the query text.
func Key(buildID, operation string, params ...string) string {
	h := fnv.New64a()
	for _, p := range params {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	var b strings.Builder
	b.WriteString(buildID)
	b.WriteByte(':')
	b.WriteString(operation)
	b.WriteByte(':')
	fmt.Fprintf(&b, "%016x", h.Sum64())
	return b.String()
}
