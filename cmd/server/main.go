// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/cinematch/internal/api"
	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/supervisor"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	lc := cfg.LoggingOptions()
	lc.Service = "cinematch-server"
	logging.Init(lc)

	logging.Info().
		Str("version", api.Version).
		Str("artifacts", cfg.Artifacts.Dir).
		Str("backend", cfg.Artifacts.Backend).
		Str("environment", cfg.Server.Environment).
		Msg("Starting CineMatch server")
	if cfg.IsProduction() && cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, builtAt, err := loadService(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load artifacts; run `cinematch build` first")
	}

	resultCache, err := cache.New(ctx, cfg.CacheOptions())
	if err != nil {
		logging.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("Failed to initialize result cache")
	}
	defer func() {
		if resultCache == nil {
			return
		}
		if err := resultCache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing result cache")
		}
	}()

	handler := api.NewHandler(svc, resultCache, cfg, builtAt)
	server := newHTTPServer(cfg, handler)

	tree, err := buildTree(cfg, server, resultCache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		// A second signal falls through to the default handler and kills
		// the process.
		signal.Stop(sigCh)
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	for _, name := range runTree(ctx, tree) {
		logging.Warn().Str("service", name).Msg("Service failed to stop within timeout")
	}
	logging.Info().Msg("Server stopped gracefully")
}

// runTree serves the tree until ctx is canceled or the root supervisor
// gives up, and returns the names of services that did not stop in time.
// ServeBackground delivers exactly one value and never closes its channel.
func runTree(ctx context.Context, tree *supervisor.SupervisorTree) []string {
	errCh := tree.ServeBackground(ctx)

	var err error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, err := tree.UnstoppedServiceReport()
	if err != nil {
		logging.Warn().Err(err).Msg("Could not collect unstopped services")
	}
	names := make([]string, 0, len(unstopped))
	for _, s := range unstopped {
		names = append(names, s.Name)
	}
	return names
}

// loadService reads the persisted build and constructs the recommender.
// It returns the build time from the manifest.
func loadService(ctx context.Context, cfg *config.Config) (*recommend.Service, time.Time, error) {
	store, err := cfg.OpenArtifactStore()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("open artifact store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing artifact store")
		}
	}()

	start := time.Now()
	bundle, err := store.Load(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	svc, err := recommend.FromBundle(bundle, cfg.RecommenderOptions(), logging.WithComponent("recommend"))
	if err != nil {
		return nil, time.Time{}, err
	}

	logging.Info().
		Str("build_id", bundle.Manifest.BuildID).
		Time("built_at", bundle.Manifest.CreatedAt).
		Int("items", svc.CatalogSize()).
		Int("vocabulary", bundle.Manifest.VocabularySize).
		Dur("elapsed", time.Since(start)).
		Msg("Artifacts loaded")
	return svc, bundle.Manifest.CreatedAt, nil
}

// newHTTPServer wires the router into an http.Server.
func newHTTPServer(cfg *config.Config, handler *api.Handler) *http.Server {
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg))
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
}

// buildTree assembles the supervisor tree. The janitor only runs for the
// in-process cache; Redis expires keys itself.
func buildTree(cfg *config.Config, server services.HTTPServer, c cache.Cache) (*supervisor.SupervisorTree, error) {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return nil, err
	}

	if cleaner, ok := c.(services.ExpiredCleaner); ok {
		interval := max(cfg.Cache.TTL/2, time.Second)
		tree.AddMaintenanceService(services.NewCacheJanitorService(cleaner, interval, logging.WithComponent("cache")))
		logging.Info().Dur("interval", interval).Msg("Cache janitor enabled")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	return tree, nil
}
