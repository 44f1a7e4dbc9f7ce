// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/models"
)

// Health handles GET /api/v1/health.
//
// The service is immutable once constructed, so the only degraded state is
// an empty catalog.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	size := h.svc.CatalogSize()
	status := "healthy"
	if size == 0 {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:       status,
		Version:      Version,
		CatalogSize:  size,
		BuildID:      h.svc.BuildID(),
		CacheBackend: h.cacheBackend(),
		Uptime:       time.Since(h.startTime).Seconds(),
	}
	if !h.builtAt.IsZero() {
		builtAt := h.builtAt
		health.BuiltAt = &builtAt
	}

	respondJSON(w, r, http.StatusOK, models.NewSuccess(health, models.Metadata{}))
}

// NotFound is the router's fallback for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, &models.APIError{
		Code:    models.ErrCodeNotFound,
		Message: "Not found",
	}, nil)
}

// MethodNotAllowed is the router's fallback for known paths with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, &models.APIError{
		Code:    models.ErrCodeMethodNotAllowed,
		Message: "Method not allowed",
	}, nil)
}
