// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package models

import (
	"time"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidFilter    = "INVALID_FILTER"
	ErrCodeTitleNotFound    = "TITLE_NOT_FOUND"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"title": "Avatar", "results": [...]},
//	  "metadata": {
//	    "timestamp": "2026-10-19T12:00:00Z",
//	    "query_time_ms": 1,
//	    "build_id": "6f1c..."
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {
//	    "code": "TITLE_NOT_FOUND",
//	    "message": "\"Avatr\" not found. Use search to find valid titles.",
//	    "details": {"title": "Avatr"}
//	  },
//	  "metadata": {"timestamp": "2026-10-19T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
//
// Cached responses report QueryTimeMS 0 and Cached true. BuildID names the
// artifact build that produced the data, so clients can tell when the index
// behind the API has been rebuilt.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	BuildID     string    `json:"build_id,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface so handlers can pass an APIError around.
func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// NewSuccess wraps data in a success envelope stamped with the current time.
func NewSuccess(data interface{}, meta Metadata) *APIResponse {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	return &APIResponse{
		Status:   StatusSuccess,
		Data:     data,
		Metadata: meta,
	}
}

// NewError wraps an APIError in an error envelope.
func NewError(apiErr *APIError, meta Metadata) *APIResponse {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	return &APIResponse{
		Status:   StatusError,
		Data:     nil,
		Metadata: meta,
		Error:    apiErr,
	}
}
