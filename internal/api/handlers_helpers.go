// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	if response.Metadata.RequestID == "" && r != nil {
		response.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
	}

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")
	if status == http.StatusOK {
		w.Header().Set("Cache-Control", "public, max-age=60")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondError sends an error response. err, when set, is logged but never
// sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError, err error) {
	if err != nil {
		event := logging.Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Error()
		}
		if r != nil {
			event = event.Str("request_id", logging.RequestIDFromContext(r.Context()))
		}
		event.Str("code", apiErr.Code).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}
	respondJSON(w, r, status, models.NewError(apiErr, models.Metadata{}))
}

// respondQueryError maps recommender errors onto HTTP errors.
func respondQueryError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *recommend.TitleNotFoundError
	switch {
	case errors.As(err, &notFound):
		respondError(w, r, http.StatusNotFound, &models.APIError{
			Code:    models.ErrCodeTitleNotFound,
			Message: notFound.Error(),
			Details: map[string]interface{}{"title": notFound.Title},
		}, nil)
	case errors.Is(err, recommend.ErrInvalidFilter):
		respondError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    models.ErrCodeInvalidFilter,
			Message: err.Error(),
		}, nil)
	default:
		respondError(w, r, http.StatusInternalServerError, &models.APIError{
			Code:    models.ErrCodeInternal,
			Message: "Internal server error",
		}, err)
	}
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// parseIntParam reads an integer query parameter. An absent parameter yields
// defaultValue; a present but non-integer one is a validation error.
func parseIntParam(r *http.Request, key string, defaultValue int) (int, *models.APIError) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: key + " must be an integer",
			Details: map[string]interface{}{"field": key, "value": sanitizeLogValue(value)},
		}
	}
	return n, nil
}

// checkMax reports a validation error when v exceeds a configured maximum.
func checkMax(field string, v, maximum int) *models.APIError {
	if v <= maximum {
		return nil
	}
	return &models.APIError{
		Code:    models.ErrCodeValidation,
		Message: fmt.Sprintf("%s must be at most %d", field, maximum),
		Details: map[string]interface{}{"field": field, "max": maximum},
	}
}

// serveCached answers from the result cache when possible. On a miss it runs
// compute, caches the encoded data on success and responds.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, compute func() (interface{}, error)) {
	meta := models.Metadata{BuildID: h.svc.BuildID()}

	if h.cache != nil {
		if raw, ok := h.cache.Get(r.Context(), key); ok {
			meta.Cached = true
			respondJSON(w, r, http.StatusOK, models.NewSuccess(json.RawMessage(raw), meta))
			return
		}
	}

	start := time.Now()
	data, err := compute()
	if err != nil {
		respondQueryError(w, r, err)
		return
	}
	meta.QueryTimeMS = time.Since(start).Milliseconds()

	if h.cache != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to encode result for cache")
		} else {
			h.cache.Set(r.Context(), key, raw)
		}
	}
	respondJSON(w, r, http.StatusOK, models.NewSuccess(data, meta))
}
