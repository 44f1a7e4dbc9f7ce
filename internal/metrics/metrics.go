// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package metrics provides Prometheus instrumentation for the index build,
// the recommender queries, the result cache and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Build Metrics
	BuildStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_build_stage_duration_seconds",
			Help:    "Duration of index build stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"}, // "read", "merge", "signature", "vectorize", "similarity", "save", "load"
	)

	BuildItemsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_build_items_dropped_total",
			Help: "Items dropped during the build, by reason",
		},
		[]string{"reason"}, // "left_only", "right_only", "invalid_id", "empty_signature"
	)

	BuildMalformedFields = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_build_malformed_fields_total",
			Help: "Per-item sub-fields that failed to parse and were replaced by empty values",
		},
		[]string{"field"},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_catalog_items",
			Help: "Number of items in the loaded catalog",
		},
	)

	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_vocabulary_tokens",
			Help: "Number of tokens in the fitted vocabulary",
		},
	)

	ZeroVectors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_zero_vectors",
			Help: "Items whose encoded signature is entirely out of vocabulary",
		},
	)

	// Query Metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_queries_total",
			Help: "Total number of recommender queries",
		},
		[]string{"operation", "outcome"}, // outcome: "ok", "not_found", "error"
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_query_duration_seconds",
			Help:    "Recommender query duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"operation"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_cache_hits_total",
			Help: "Total number of result cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_cache_misses_total",
			Help: "Total number of result cache misses",
		},
		[]string{"backend"},
	)

	CacheBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinematch_cache_breaker_state",
			Help: "Circuit breaker state of the remote cache (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordBuildStage records the duration of one build stage.
func RecordBuildStage(stage string, d time.Duration) {
	BuildStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordQuery records the outcome and latency of a recommender query.
func RecordQuery(operation, outcome string, d time.Duration) {
	QueriesTotal.WithLabelValues(operation, outcome).Inc()
	QueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(backend string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(backend).Inc()
		return
	}
	CacheMisses.WithLabelValues(backend).Inc()
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint string, statusCode int, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}
