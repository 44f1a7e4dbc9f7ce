// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

// Request structs carry the static rules; configured upper bounds (max_n,
// max_search_limit, max_filter_length) are checked by the handlers.

// SearchRequest is the query of GET /api/v1/movies/search.
type SearchRequest struct {
	Query string `json:"q" validate:"required,max=200,nocontrol"`
	Limit int    `json:"limit" validate:"min=1"`
}

// TopRatedRequest is the query of GET /api/v1/movies/top.
type TopRatedRequest struct {
	N int `json:"n" validate:"min=1"`
}

// RecommendRequest is the query of GET /api/v1/movies/recommend.
type RecommendRequest struct {
	Title string `json:"title" validate:"required,max=500,nocontrol"`
	N     int    `json:"n" validate:"min=1"`
	Where string `json:"where" validate:"omitempty,nocontrol"`
}
