// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// RedisConfig configures the shared Redis cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
	// Timeout bounds every Redis round trip.
	Timeout time.Duration
	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
}

const breakerName = "redis-cache"

// Redis is a Cache backed by Redis. Calls go through a circuit breaker so
// an unavailable server costs one fast rejection per lookup instead of a
// network timeout.
type Redis struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
	cfg    RedisConfig
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 500 * time.Millisecond
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "cinematch:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	return newRedisWithClient(client, cfg), nil
}

func newRedisWithClient(client *redis.Client, cfg RedisConfig) *Redis {
	metrics.CacheBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Cache circuit breaker state change")
			metrics.CacheBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return &Redis{client: client, cb: cb, cfg: cfg}
}

// Name implements Cache.
func (r *Redis) Name() string { return BackendRedis }

// Get implements Cache. Errors and an open breaker count as misses.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	found := false
	val, err := r.cb.Execute(func() ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
		v, err := r.client.Get(ctx, r.cfg.KeyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		found = true
		return v, nil
	})
	if err != nil {
		logFailure("get", err)
	}
	hit := err == nil && found
	metrics.RecordCacheLookup(BackendRedis, hit)
	return val, hit
}

// Set implements Cache. Failures are logged and dropped.
func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	_, err := r.cb.Execute(func() ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
		return nil, r.client.Set(ctx, r.cfg.KeyPrefix+key, value, r.cfg.TTL).Err()
	})
	if err != nil {
		logFailure("set", err)
	}
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func logFailure(op string, err error) {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logging.Debug().Str("op", op).Err(err).Msg("Cache request rejected by circuit breaker")
		return
	}
	logging.Warn().Str("op", op).Err(err).Msg("Cache request failed")
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
