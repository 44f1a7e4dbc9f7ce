// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package models

import (
	"time"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status       string     `json:"status"` // "healthy" or "degraded"
	Version      string     `json:"version"`
	CatalogSize  int        `json:"catalog_size"`
	BuildID      string     `json:"build_id,omitempty"`
	BuiltAt      *time.Time `json:"built_at,omitempty"`
	CacheBackend string     `json:"cache_backend"`
	Uptime       float64    `json:"uptime_seconds"`
}

// CatalogCount answers GET /api/v1/movies/count.
type CatalogCount struct {
	Count int `json:"count"`
}

// SearchResult answers GET /api/v1/movies/search.
// Titles is never null; no match is an empty list.
type SearchResult struct {
	Query  string   `json:"query"`
	Limit  int      `json:"limit"`
	Titles []string `json:"titles"`
}

// TopRatedResult answers GET /api/v1/movies/top.
type TopRatedResult struct {
	MinVotes int                   `json:"min_votes"`
	Movies   []recommend.RatedItem `json:"movies"`
}

// RecommendResult answers GET /api/v1/movies/recommend.
type RecommendResult struct {
	Title   string                     `json:"title"`
	N       int                        `json:"n"`
	Where   string                     `json:"where,omitempty"`
	Results []recommend.Recommendation `json:"results"`
}
