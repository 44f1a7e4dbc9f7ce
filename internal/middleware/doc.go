// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package middleware provides the infrastructure HTTP middleware mounted by the
API router.

Key Components:

  - RequestID: accepts or generates an X-Request-ID and stores it in the
    request context for logging.Ctx
  - PrometheusMetrics: request counters and latency histograms labelled by
    the chi route pattern, so path parameters and query strings do not
    explode label cardinality
  - AccessLog: one structured zerolog line per request

All three have the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/movies/search", h.Search)
	})

RequestID must run before AccessLog so the log line carries the id.
*/
package middleware
