// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package testinfra provides container helpers for integration tests.
//
// It uses testcontainers-go to run the external services CineMatch talks
// to, currently Redis for the shared result cache:
//
//	func TestRedisCache(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    rc, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, rc)
//
//	    c, err := cache.NewRedis(ctx, cache.RedisConfig{Addr: rc.Addr})
//	    // ...
//	}
//
// Every file except this one carries the integration build tag:
//
//	go test -tags integration ./internal/cache/...
//
// Tests skip when Docker is unavailable. The first run pulls images.
package testinfra
