// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Count handles GET /api/v1/movies/count.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, models.NewSuccess(
		models.CatalogCount{Count: h.svc.CatalogSize()},
		models.Metadata{BuildID: h.svc.BuildID()},
	))
}

// Search handles GET /api/v1/movies/search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	limit, apiErr := parseIntParam(r, "limit", h.config.Recommend.DefaultSearchLimit)
	if apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	req := SearchRequest{Query: r.URL.Query().Get("q"), Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	if apiErr := checkMax("limit", req.Limit, h.config.Recommend.MaxSearchLimit); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	key := cache.Key(h.svc.BuildID(), "search", req.Query, strconv.Itoa(req.Limit))
	h.serveCached(w, r, key, func() (interface{}, error) {
		return models.SearchResult{
			Query:  req.Query,
			Limit:  req.Limit,
			Titles: h.svc.Search(req.Query, req.Limit),
		}, nil
	})
}

// TopRated handles GET /api/v1/movies/top?n=.
func (h *Handler) TopRated(w http.ResponseWriter, r *http.Request) {
	n, apiErr := parseIntParam(r, "n", h.config.Recommend.DefaultN)
	if apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	req := TopRatedRequest{N: n}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	if apiErr := checkMax("n", req.N, h.config.Recommend.MaxN); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	key := cache.Key(h.svc.BuildID(), "top", strconv.Itoa(req.N))
	h.serveCached(w, r, key, func() (interface{}, error) {
		return models.TopRatedResult{
			MinVotes: h.config.Recommend.VoteThreshold,
			Movies:   h.svc.TopRated(req.N),
		}, nil
	})
}

// Recommend handles GET /api/v1/movies/recommend?title=&n=&where=.
//
// An unknown title is 404 TITLE_NOT_FOUND; a where expression that does not
// compile, or fails on a candidate, is 400 INVALID_FILTER.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, apiErr := parseIntParam(r, "n", h.config.Recommend.DefaultN)
	if apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	req := RecommendRequest{Title: q.Get("title"), N: n, Where: q.Get("where")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	if apiErr := checkMax("n", req.N, h.config.Recommend.MaxN); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	if apiErr := checkMax("where length", len(req.Where), h.config.API.MaxFilterLength); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	var filter *recommend.Filter
	if req.Where != "" {
		f, err := recommend.CompileFilter(req.Where)
		if err != nil {
			respondQueryError(w, r, err)
			return
		}
		filter = f
	}

	key := cache.Key(h.svc.BuildID(), "recommend", req.Title, strconv.Itoa(req.N), req.Where)
	h.serveCached(w, r, key, func() (interface{}, error) {
		results, err := h.svc.RecommendWhere(req.Title, req.N, filter)
		if err != nil {
			return nil, err
		}
		return models.RecommendResult{
			Title:   req.Title,
			N:       req.N,
			Where:   req.Where,
			Results: results,
		}, nil
	})
}
