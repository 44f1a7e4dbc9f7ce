// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package api provides the HTTP REST API for CineMatch.

The API exposes the four recommender queries as read-only JSON endpoints over
an immutable recommend.Service:

  - GET /api/v1/health: service status, catalog size and build id
  - GET /api/v1/movies/count: catalog size
  - GET /api/v1/movies/search?q=&limit=: case-insensitive title search
  - GET /api/v1/movies/top?n=: best rated movies above the vote threshold
  - GET /api/v1/movies/recommend?title=&n=&where=: most similar movies,
    optionally filtered by a CEL expression
  - GET /metrics: Prometheus exposition

Every JSON response uses the models.APIResponse envelope and carries an
FNV-1a ETag of the body.

Middleware stack, outermost first: RequestID, RealIP, Recoverer, AccessLog,
CORS, Compress. Routes under /api/v1 add rate limiting (go-chi/httprate) and
Prometheus request metrics.

Result caching:

Search, top and recommend results are cached through cache.Cache when one is
configured. Keys include the build id (cache.Key), so a rebuilt index never
serves stale entries even from a shared Redis. Cached responses set
metadata.cached to true. Errors are never cached.

Thread Safety:

Handler holds only read-only state; all handlers are safe for concurrent use.
*/
package api
