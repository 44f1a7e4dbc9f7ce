// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package main is the entry point for the CineMatch HTTP server.

The server loads a build produced by `cinematch build`, constructs the
read-only recommender over it and serves the query API under a Suture v4
supervisor tree:

	RootSupervisor ("cinematch")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── CacheJanitorService (CACHE_BACKEND=memory)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Artifacts: catalog and similarity matrix from the file or Badger backend
 4. Recommender: title index built once, immutable afterwards
 5. Result cache: in-process LRU, Redis, or none
 6. HTTP Server: Chi router with middleware stack
 7. Supervisor Tree: Suture v4 process supervision

Missing artifacts are fatal: the server never starts over a partial build.

# Endpoints

	GET /api/v1/health
	GET /api/v1/movies/count
	GET /api/v1/movies/search?q=dark&limit=10
	GET /api/v1/movies/top?n=10
	GET /api/v1/movies/recommend?title=Heat&n=5&where=item.vote_average>7.0
	GET /metrics

# Example Usage

	cinematch build
	ARTIFACTS_DIR=./artifacts HTTP_PORT=8080 ./cinematch-server

With a shared Redis result cache:

	CACHE_BACKEND=redis REDIS_ADDR=redis:6379 ./cinematch-server

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops
accepting connections and drains in-flight requests within
SHUTDOWN_TIMEOUT; services that miss the deadline are logged.
*/
package main
