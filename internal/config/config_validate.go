// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/cinematch/internal/validation"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks field rules, then the cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, verr.Error())
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultN > c.Recommend.MaxN {
		return fmt.Errorf("%w: recommend.default_n (%d) exceeds recommend.max_n (%d)",
			ErrInvalid, c.Recommend.DefaultN, c.Recommend.MaxN)
	}
	if c.Recommend.DefaultSearchLimit > c.Recommend.MaxSearchLimit {
		return fmt.Errorf("%w: recommend.default_search_limit (%d) exceeds recommend.max_search_limit (%d)",
			ErrInvalid, c.Recommend.DefaultSearchLimit, c.Recommend.MaxSearchLimit)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("%w: REDIS_ADDR is required when CACHE_BACKEND=redis", ErrInvalid)
	}
	if c.Cache.Backend != "none" && c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache.ttl must be positive", ErrInvalid)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("%w: server.timeout must be positive", ErrInvalid)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must be positive", ErrInvalid)
	}
	return nil
}

// Rate limit bounds.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("%w: RATE_LIMIT_REQUESTS must be between %d and %d",
			ErrInvalid, minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("%w: RATE_LIMIT_WINDOW must be between %v and %v",
			ErrInvalid, minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any origin is "*".
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// YAML renders the effective configuration with secrets masked.
func (c *Config) YAML() ([]byte, error) {
	redacted := *c
	if redacted.Cache.RedisPassword != "" {
		redacted.Cache.RedisPassword = "********"
	}
	return yaml.Marshal(&redacted)
}
