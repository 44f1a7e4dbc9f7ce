// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package vectorize turns item signatures into bag-of-tokens count vectors
// over a vocabulary fitted once per build.
//
// The Vocabulary is a plain value: it is returned by Fit, threaded through
// the build and persisted with the artifacts. There is no package-level
// fitted state.
package vectorize

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 5000

// ErrUnknownStopWords is returned for a stop-word language that is not built in.
var ErrUnknownStopWords = errors.New("unknown stop-word list")

// Options configures vocabulary fitting.
type Options struct {
	// MaxFeatures keeps only the most frequent tokens. Default: 5000
	MaxFeatures int
	// StopWords names the stop-word list: "english" or "none". Default: english
	StopWords string
}

// Vocabulary is the ordered token set vectors are encoded against.
// Column order is alphabetical.
type Vocabulary struct {
	Tokens      []string `json:"tokens"`
	MaxFeatures int      `json:"max_features"`
	StopWords   string   `json:"stop_words"`

	index map[string]int
	stop  map[string]struct{}
}

// Vector is a sparse count vector: Indices ascend and Counts[i] is the
// number of occurrences of Tokens[Indices[i]].
type Vector struct {
	Indices []int
	Counts  []float64
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var s float64
	for _, c := range v.Counts {
		s += c * c
	}
	return math.Sqrt(s)
}

// IsZero reports whether the vector has no non-zero entry.
func (v Vector) IsZero() bool {
	return len(v.Indices) == 0
}

// Fit builds the vocabulary from the full corpus: the MaxFeatures tokens
// with the highest total count, ties broken alphabetically.
func Fit(docs []string, opts Options) (*Vocabulary, error) {
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = DefaultMaxFeatures
	}
	if opts.StopWords == "" {
		opts.StopWords = "english"
	}
	stop, ok := StopWords(opts.StopWords)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStopWords, opts.StopWords)
	}

	freq := make(map[string]int)
	for _, doc := range docs {
		for _, tok := range analyze(doc, stop) {
			freq[tok]++
		}
	}

	tokens := make([]string, 0, len(freq))
	for tok := range freq {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if freq[tokens[i]] != freq[tokens[j]] {
			return freq[tokens[i]] > freq[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})
	if len(tokens) > opts.MaxFeatures {
		tokens = tokens[:opts.MaxFeatures]
	}
	sort.Strings(tokens)

	v := &Vocabulary{Tokens: tokens, MaxFeatures: opts.MaxFeatures, StopWords: opts.StopWords}
	v.prepare(stop)
	return v, nil
}

func (v *Vocabulary) prepare(stop map[string]struct{}) {
	v.stop = stop
	v.index = make(map[string]int, len(v.Tokens))
	for i, tok := range v.Tokens {
		v.index[tok] = i
	}
}

// UnmarshalJSON restores a persisted vocabulary and its lookup tables.
func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	type plain Vocabulary
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	stop, ok := StopWords(p.StopWords)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStopWords, p.StopWords)
	}
	*v = Vocabulary(p)
	v.prepare(stop)
	return nil
}

// Size returns the number of columns.
func (v *Vocabulary) Size() int {
	return len(v.Tokens)
}

// Index returns the column of a token.
func (v *Vocabulary) Index(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

// Encode counts the vocabulary tokens of one document. Tokens outside the
// vocabulary contribute nothing.
func (v *Vocabulary) Encode(doc string) Vector {
	counts := make(map[int]float64)
	for _, tok := range analyze(doc, v.stop) {
		if i, ok := v.index[tok]; ok {
			counts[i]++
		}
	}
	vec := Vector{Indices: make([]int, 0, len(counts)), Counts: make([]float64, 0, len(counts))}
	for i := range counts {
		vec.Indices = append(vec.Indices, i)
	}
	sort.Ints(vec.Indices)
	for _, i := range vec.Indices {
		vec.Counts = append(vec.Counts, counts[i])
	}
	return vec
}

// EncodeAll encodes every document in order.
func (v *Vocabulary) EncodeAll(docs []string) []Vector {
	out := make([]Vector, len(docs))
	for i, d := range docs {
		out[i] = v.Encode(d)
	}
	return out
}

// analyze lowercases a document, splits it into runs of letters, digits and
// underscores, keeps runs of at least two characters and drops stop words.
func analyze(doc string, stop map[string]struct{}) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		if _, isStop := stop[f]; isStop {
			continue
		}
		out = append(out, f)
	}
	return out
}
