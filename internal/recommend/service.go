// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend answers queries against a loaded catalog and its
// precomputed similarity matrix.
//
// A Service is built once from a catalog and matrix and is read-only
// afterwards, so it is safe for any number of concurrent readers without
// locks. Titles are not unique in the source data: the title index keeps
// the last item for a repeated title, while Search lists each distinct
// title once in order of first appearance.
package recommend

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/tomtom215/cinematch/internal/artifact"
	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/similarity"
)

// Defaults.
const (
	DefaultVoteThreshold = 500
	DefaultPosterBaseURL = "https://image.tmdb.org/t/p/w300"
	DefaultLimit         = 10
)

var (
	// ErrTitleNotFound matches every *TitleNotFoundError.
	ErrTitleNotFound = errors.New("title not found")

	// ErrSizeMismatch is returned by New when the catalog and matrix disagree.
	ErrSizeMismatch = errors.New("catalog and similarity matrix sizes differ")
)

// TitleNotFoundError reports a recommend query for a title that is not in
// the catalog.
type TitleNotFoundError struct {
	Title string
}

func (e *TitleNotFoundError) Error() string {
	return fmt.Sprintf("%q not found. Use search to find valid titles.", e.Title)
}

// Is makes errors.Is(err, ErrTitleNotFound) hold.
func (e *TitleNotFoundError) Is(target error) bool {
	return target == ErrTitleNotFound
}

// Config holds query-time settings.
type Config struct {
	// VoteThreshold is the strict lower bound on vote_count for TopRated.
	VoteThreshold int
	// PosterBaseURL is prefixed to poster paths. Empty disables poster URLs.
	PosterBaseURL string
}

// DefaultConfig returns the default query settings.
func DefaultConfig() Config {
	return Config{
		VoteThreshold: DefaultVoteThreshold,
		PosterBaseURL: DefaultPosterBaseURL,
	}
}

// Recommendation is one result of Recommend.
type Recommendation struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	VoteAverage *float64 `json:"vote_average"`
	VoteCount   int      `json:"vote_count"`
	ReleaseDate string   `json:"release_date,omitempty"`
	PosterPath  string   `json:"poster_path,omitempty"`
	PosterURL   string   `json:"poster_url,omitempty"`
	Score       float64  `json:"score"`
}

// RatedItem is one result of TopRated.
type RatedItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

type titleEntry struct {
	title  string
	folded string
}

// Service answers recommend, search and top-rated queries.
type Service struct {
	cfg     Config
	logger  zerolog.Logger
	catalog catalog.Catalog
	matrix  *similarity.Matrix
	buildID string

	index  map[string]int
	titles []titleEntry
}

// New creates a service over a catalog and its matrix.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cat catalog.Catalog, m *similarity.Matrix, cfg Config, logger zerolog.Logger) (*Service, error) {
	if m == nil || m.Size() != len(cat) {
		size := -1
		if m != nil {
			size = m.Size()
		}
		return nil, fmt.Errorf("%w: %d items, matrix size %d", ErrSizeMismatch, len(cat), size)
	}
	if cfg.VoteThreshold < 0 {
		cfg.VoteThreshold = 0
	}

	s := &Service{
		cfg:     cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
		catalog: cat,
		matrix:  m,
		index:   make(map[string]int, len(cat)),
	}
	fold := cases.Fold()
	for i := range cat {
		t := cat[i].Title
		if _, seen := s.index[t]; !seen {
			s.titles = append(s.titles, titleEntry{title: t, folded: fold.String(t)})
		}
		s.index[t] = i
	}
	if dup := len(cat) - len(s.index); dup > 0 {
		s.logger.Debug().Int("duplicate_titles", dup).Msg("Repeated titles resolve to their last item")
	}
	metrics.CatalogSize.Set(float64(len(cat)))
	return s, nil
}

// FromBundle creates a service from a loaded artifact bundle.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func FromBundle(b *artifact.Bundle, cfg Config, logger zerolog.Logger) (*Service, error) {
	s, err := New(b.Catalog, b.Matrix, cfg, logger)
	if err != nil {
		return nil, err
	}
	s.buildID = b.Manifest.BuildID
	return s, nil
}

// BuildID identifies the loaded build, or "" when unknown.
func (s *Service) BuildID() string { return s.buildID }

// CatalogSize returns the number of items.
func (s *Service) CatalogSize() int { return len(s.catalog) }

// Item returns the item a title resolves to.
func (s *Service) Item(title string) (catalog.Item, bool) {
	i, ok := s.index[title]
	if !ok {
		return catalog.Item{}, false
	}
	return s.catalog[i], true
}

// Recommend returns the n items most similar to title, most similar first.
// n is clamped to [1, CatalogSize()-1].
func (s *Service) Recommend(title string, n int) ([]Recommendation, error) {
	return s.RecommendWhere(title, n, nil)
}

// RecommendWhere is Recommend restricted to candidates that satisfy f.
// A nil filter accepts every candidate.
func (s *Service) RecommendWhere(title string, n int, f *Filter) ([]Recommendation, error) {
	start := time.Now()
	op := "recommend"
	if f != nil {
		op = "recommend_where"
	}

	i, ok := s.index[title]
	if !ok {
		metrics.RecordQuery(op, "not_found", time.Since(start))
		return nil, &TitleNotFoundError{Title: title}
	}

	n = clamp(n, 1, len(s.catalog)-1)
	order := s.rank(i)
	row := s.matrix.Row(i)

	out := make([]Recommendation, 0, n)
	for _, j := range order {
		if len(out) == n {
			break
		}
		score := float64(row[j])
		if f != nil {
			match, err := f.Match(&s.catalog[j], score)
			if err != nil {
				metrics.RecordQuery(op, "error", time.Since(start))
				return nil, err
			}
			if !match {
				continue
			}
		}
		out = append(out, s.recommendation(j, score))
	}

	metrics.RecordQuery(op, "ok", time.Since(start))
	return out, nil
}

// rank orders every other position by descending similarity to i.
// Equal scores keep catalog order.
func (s *Service) rank(i int) []int {
	row := s.matrix.Row(i)
	order := make([]int, 0, len(row))
	for j := range row {
		if j != i {
			order = append(order, j)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case row[a] > row[b]:
			return -1
		case row[a] < row[b]:
			return 1
		default:
			return 0
		}
	})
	return order
}

func (s *Service) recommendation(j int, score float64) Recommendation {
	it := &s.catalog[j]
	return Recommendation{
		ID:          it.ID,
		Title:       it.Title,
		VoteAverage: it.VoteAverage,
		VoteCount:   it.VoteCount,
		ReleaseDate: it.ReleaseDate,
		PosterPath:  it.PosterPath,
		PosterURL:   s.PosterURL(it.PosterPath),
		Score:       roundScore(score),
	}
}

// PosterURL joins the configured base with a poster path.
func (s *Service) PosterURL(path string) string {
	if path == "" || s.cfg.PosterBaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.cfg.PosterBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Search returns up to limit distinct titles containing query, compared
// with Unicode case folding, in catalog order.
func (s *Service) Search(query string, limit int) []string {
	start := time.Now()
	limit = max(limit, 1)
	q := cases.Fold().String(query)

	out := make([]string, 0, min(limit, len(s.titles)))
	for _, t := range s.titles {
		if len(out) == limit {
			break
		}
		if strings.Contains(t.folded, q) {
			out = append(out, t.title)
		}
	}
	metrics.RecordQuery("search", "ok", time.Since(start))
	return out
}

// TopRated returns up to n rated items with more votes than the configured
// threshold, highest rating first. Equal ratings keep catalog order.
func (s *Service) TopRated(n int) []RatedItem {
	start := time.Now()
	n = max(n, 1)

	rated := make([]RatedItem, 0)
	for i := range s.catalog {
		it := &s.catalog[i]
		avg, ok := it.Rating()
		if !ok || it.VoteCount <= s.cfg.VoteThreshold {
			continue
		}
		rated = append(rated, RatedItem{ID: it.ID, Title: it.Title, VoteAverage: avg, VoteCount: it.VoteCount})
	}
	slices.SortStableFunc(rated, func(a, b RatedItem) int {
		switch {
		case a.VoteAverage > b.VoteAverage:
			return -1
		case a.VoteAverage < b.VoteAverage:
			return 1
		default:
			return 0
		}
	})
	if len(rated) > n {
		rated = rated[:n]
	}
	metrics.RecordQuery("top_rated", "ok", time.Since(start))
	return rated
}

func roundScore(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return hi
	}
	return min(max(v, lo), hi)
}
