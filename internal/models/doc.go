// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package models defines the JSON shapes served by the HTTP API and printed by
the CLI.

Key Components:

  - APIResponse: the envelope every endpoint returns
  - Metadata: timing, cache and build information for a response
  - APIError: machine-readable error code plus message and details
  - Payloads: HealthStatus, CatalogCount, SearchResult, TopRatedResult,
    RecommendResult

Payloads embed the recommender's own result types (recommend.Recommendation,
recommend.RatedItem) rather than copying their fields, so the API and the
CLI always agree on field names.

Error codes used by the API:

  - VALIDATION_ERROR: malformed or out-of-range query parameters
  - INVALID_FILTER: a where expression failed to compile or evaluate
  - TITLE_NOT_FOUND: recommend was asked about an unknown title
  - NOT_FOUND, METHOD_NOT_ALLOWED: routing errors
  - RATE_LIMIT_EXCEEDED: httprate rejected the request
  - INTERNAL_ERROR: anything else
*/
package models
