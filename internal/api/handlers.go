// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"time"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Version is reported by the health endpoint. Overridden at link time.
var Version = "dev"

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response writing, parameter parsing, caching
//   - handlers_health.go: health and routing fallbacks
//   - handlers_movies.go: count, search, top and recommend
type Handler struct {
	svc       *recommend.Service
	cache     cache.Cache // nil when caching is disabled
	config    *config.Config
	builtAt   time.Time
	startTime time.Time
}

// NewHandler creates the API handler. c may be nil to disable result
// caching; builtAt is the manifest creation time, zero when unknown.
//
// Example:
//
//	handler := api.NewHandler(svc, resultCache, cfg, bundle.Manifest.CreatedAt)
//	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg))
//	srv := &http.Server{Handler: router.Setup()}
func NewHandler(svc *recommend.Service, c cache.Cache, cfg *config.Config, builtAt time.Time) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{
		svc:       svc,
		cache:     c,
		config:    cfg,
		builtAt:   builtAt,
		startTime: time.Now(),
	}
}

func (h *Handler) cacheBackend() string {
	if h.cache == nil {
		return cache.BackendNone
	}
	return h.cache.Name()
}
