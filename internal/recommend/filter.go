// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/tomtom215/cinematch/internal/catalog"
)

// ErrInvalidFilter is returned for filter expressions that fail to compile,
// do not evaluate to a bool, or fail at evaluation time.
var ErrInvalidFilter = errors.New("invalid filter expression")

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Filter is a compiled CEL predicate over recommendation candidates.
// The expression sees one variable, item, with the fields
//
//	item.id            int
//	item.title         string
//	item.vote_average  double (0 when the item is unrated)
//	item.rated         bool
//	item.vote_count    int
//	item.year          string ("" when unknown)
//	item.score         double, similarity to the queried title
//
// Example: item.vote_count > 1000 && item.year >= "2000".
// A Filter is safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

// CompileFilter parses and type-checks expr.
func CompileFilter(expr string) (*Filter, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: expression must return bool, got %s", ErrInvalidFilter, t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Match evaluates the filter for one candidate.
func (f *Filter) Match(it *catalog.Item, score float64) (bool, error) {
	avg, rated := it.Rating()
	out, _, err := f.prg.Eval(map[string]any{
		"item": map[string]any{
			"id":           it.ID,
			"title":        it.Title,
			"vote_average": avg,
			"rated":        rated,
			"vote_count":   int64(it.VoteCount),
			"year":         it.Year(),
			"score":        roundScore(score),
		},
	})
	if err != nil {
		return false, fmt.Errorf("%w: %q: %v", ErrInvalidFilter, f.expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q returned %T, want bool", ErrInvalidFilter, f.expr, out.Value())
	}
	return b, nil
}
