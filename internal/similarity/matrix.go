// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package similarity computes the dense pairwise cosine similarity matrix
// of the encoded catalog.
//
// The matrix is square and symmetric with entries in [0, 1]. A zero vector
// has similarity 0 with every item, itself included; every other item has
// a self-similarity of exactly 1.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinematch/internal/vectorize"
)

// ErrDimension is returned when raw matrix data does not describe an n×n matrix.
var ErrDimension = errors.New("matrix data is not square")

// Matrix is a row-major n×n float32 matrix. It is read-only once built.
type Matrix struct {
	n    int
	data []float32
}

// FromData wraps row-major data of an n×n matrix without copying.
func FromData(n int, data []float32) (*Matrix, error) {
	if n < 0 || len(data) != n*n {
		return nil, fmt.Errorf("%w: n=%d len=%d", ErrDimension, n, len(data))
	}
	return &Matrix{n: n, data: data}, nil
}

// Size returns n.
func (m *Matrix) Size() int {
	return m.n
}

// At returns M[i][j].
func (m *Matrix) At(i, j int) float32 {
	return m.data[i*m.n+j]
}

// Row returns row i. The slice aliases the matrix and must not be modified.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.n : (i+1)*m.n]
}

// Data returns the row-major backing slice for persistence.
func (m *Matrix) Data() []float32 {
	return m.data
}

// Cosine returns dot(a, b) / (|a| * |b|) for sparse vectors with
// precomputed norms, or 0 when either norm is 0.
func Cosine(a, b vectorize.Vector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Counts[i] * b.Counts[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return clamp(dot / (normA * normB))
}

func clamp(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Compute builds the similarity matrix. Rows of the upper triangle are
// spread across workers goroutines and mirrored into the lower triangle;
// every cell is written by exactly one goroutine.
func Compute(ctx context.Context, vectors []vectorize.Vector, workers int) (*Matrix, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	n := len(vectors)
	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = v.Norm()
	}

	m := &Matrix{n: n, data: make([]float32, n*n)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if norms[i] != 0 {
				m.data[i*n+i] = 1
			}
			for j := i + 1; j < n; j++ {
				s := float32(Cosine(vectors[i], vectors[j], norms[i], norms[j]))
				m.data[i*n+j] = s
				m.data[j*n+i] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute similarity: %w", err)
	}
	return m, nil
}

// ZeroRows counts rows whose vector was degenerate (all zero).
func ZeroRows(vectors []vectorize.Vector) int {
	n := 0
	for _, v := range vectors {
		if v.IsZero() {
			n++
		}
	}
	return n
}
