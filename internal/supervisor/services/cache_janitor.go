// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpiredCleaner drops expired entries and reports how many went.
// *cache.LRUCache satisfies it.
type ExpiredCleaner interface {
	CleanupExpired() int
}

// CacheJanitorService periodically purges expired result-cache entries.
// The LRU only expires entries lazily on Get, so without the janitor a
// query nobody repeats keeps its slot until evicted.
type CacheJanitorService struct {
	cleaner  ExpiredCleaner
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheJanitorService creates a janitor. interval <= 0 means one minute.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCacheJanitorService(cleaner ExpiredCleaner, interval time.Duration, logger zerolog.Logger) *CacheJanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheJanitorService{
		cleaner:  cleaner,
		interval: interval,
		logger:   logger.With().Str("component", "cache-janitor").Logger(),
	}
}

// Serve implements suture.Service.
func (j *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := j.cleaner.CleanupExpired(); n > 0 {
				j.logger.Debug().Int("removed", n).Msg("Expired cache entries removed")
			}
		}
	}
}

func (j *CacheJanitorService) String() string {
	return "cache-janitor"
}
