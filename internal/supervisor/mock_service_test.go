// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// fakeService implements suture.Service. It fails the first failures
// calls to Serve, then runs until its context is canceled.
type fakeService struct {
	name     string
	failures int32
	starts   atomic.Int32
	running  chan struct{}
}

func newFakeService(name string, failures int32) *fakeService {
	return &fakeService{name: name, failures: failures, running: make(chan struct{}, 1)}
}

func (f *fakeService) Serve(ctx context.Context) error {
	if n := f.starts.Add(1); n <= f.failures {
		return errors.New("simulated failure")
	}
	select {
	case f.running <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeService) String() string { return f.name }
