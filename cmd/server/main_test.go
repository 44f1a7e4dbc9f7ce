// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cinematch/internal/api"
	"github.com/tomtom215/cinematch/internal/artifact"
	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/similarity"
	"github.com/tomtom215/cinematch/internal/vectorize"
)

func init() {
	logging.SetLogger(logging.NewTestLogger(io.Discard))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Artifacts.Dir = filepath.Join(t.TempDir(), "artifacts")
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 18080
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Security.RateLimitDisabled = true
	return cfg
}

func saveFixture(t *testing.T, cfg *config.Config) *artifact.Bundle {
	t.Helper()
	cat := catalog.Catalog{
		{ID: 1, Title: "Heat", Tags: "crime heist losangeles alpacino robertdeniro"},
		{ID: 2, Title: "Ronin", Tags: "crime heist paris robertdeniro"},
		{ID: 3, Title: "Ratatouille", Tags: "animation cooking paris rat"},
	}
	docs := make([]string, len(cat))
	for i := range cat {
		docs[i] = cat[i].Tags
	}
	vocab, err := vectorize.Fit(docs, vectorize.Options{})
	if err != nil {
		t.Fatal(err)
	}
	m, err := similarity.Compute(context.Background(), vocab.EncodeAll(docs), 1)
	if err != nil {
		t.Fatal(err)
	}
	b := artifact.NewBundle(cat, m, vocab)
	store, err := cfg.OpenArtifactStore()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.Save(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestLoadService(t *testing.T) {
	cfg := testConfig(t)
	b := saveFixture(t, cfg)

	svc, builtAt, err := loadService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("loadService() error = %v", err)
	}
	if svc.CatalogSize() != 3 {
		t.Errorf("CatalogSize() = %d, want 3", svc.CatalogSize())
	}
	if svc.BuildID() != b.Manifest.BuildID {
		t.Errorf("BuildID() = %q, want %q", svc.BuildID(), b.Manifest.BuildID)
	}
	if !builtAt.Equal(b.Manifest.CreatedAt) {
		t.Errorf("builtAt = %v, want %v", builtAt, b.Manifest.CreatedAt)
	}
}

func TestLoadService_Missing(t *testing.T) {
	cfg := testConfig(t)

	svc, _, err := loadService(context.Background(), cfg)
	if !errors.Is(err, artifact.ErrMissingArtifact) {
		t.Fatalf("loadService() error = %v, want ErrMissingArtifact", err)
	}
	if svc != nil {
		t.Error("service returned alongside an error")
	}
}

func TestNewHTTPServer(t *testing.T) {
	cfg := testConfig(t)
	saveFixture(t, cfg)
	svc, builtAt, err := loadService(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	server := newHTTPServer(cfg, api.NewHandler(svc, nil, cfg, builtAt))
	if server.Addr != "127.0.0.1:18080" {
		t.Errorf("Addr = %q", server.Addr)
	}
	if server.WriteTimeout != cfg.Server.Timeout {
		t.Errorf("WriteTimeout = %v", server.WriteTimeout)
	}

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies/recommend?title=Heat&n=1", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

// stubServer blocks until Shutdown.
type stubServer struct {
	started  chan struct{}
	stop     chan struct{}
	shutdown atomic.Bool
}

func (s *stubServer) ListenAndServe() error {
	close(s.started)
	<-s.stop
	return http.ErrServerClosed
}

func (s *stubServer) Shutdown(context.Context) error {
	if s.shutdown.CompareAndSwap(false, true) {
		close(s.stop)
	}
	return nil
}

func TestBuildTree(t *testing.T) {
	tests := []struct {
		name  string
		cache cache.Cache
	}{
		{"memory cache", cache.NewLRUCache(10, time.Minute)},
		{"no cache", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			srv := &stubServer{started: make(chan struct{}), stop: make(chan struct{})}

			tree, err := buildTree(cfg, srv, tt.cache)
			if err != nil {
				t.Fatalf("buildTree() error = %v", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			errCh := tree.ServeBackground(ctx)
			select {
			case <-srv.started:
			case <-time.After(2 * time.Second):
				t.Fatal("HTTP service never started")
			}
			cancel()
			<-errCh

			if !srv.shutdown.Load() {
				t.Error("server was not shut down")
			}
		})
	}
}

func TestRunTree_ReturnsAfterCancel(t *testing.T) {
	cfg := testConfig(t)
	srv := &stubServer{started: make(chan struct{}), stop: make(chan struct{})}
	tree, err := buildTree(cfg, srv, cache.NewLRUCache(10, time.Minute))
	if err != nil {
		t.Fatalf("buildTree() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan []string, 1)
	go func() { done <- runTree(ctx, tree) }()

	select {
	case <-srv.started:
	case <-time.After(2 * time.Second):
		t.Fatal("HTTP service never started")
	}
	cancel()

	select {
	case unstopped := <-done:
		if len(unstopped) != 0 {
			t.Errorf("unstopped services = %v", unstopped)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runTree did not return after cancel")
	}
	if !srv.shutdown.Load() {
		t.Error("server was not shut down")
	}
}
