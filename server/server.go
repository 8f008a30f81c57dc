// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/searchdeck/cache"
	"github.com/poiesic/searchdeck/core"
	"github.com/poiesic/searchdeck/rank"
	"github.com/poiesic/searchdeck/ratelimit"
	"github.com/poiesic/searchdeck/token"
)

const (
	// DefaultWritePoolSize bounds the goroutines performing write-behind
	// cache population.
	DefaultWritePoolSize = 4

	// cacheWriteTimeout bounds a single write-behind cache store.
	cacheWriteTimeout = 5 * time.Second
)

// SearchClient fetches normalized, deduplicated results for a query.
type SearchClient interface {
	FetchResults(ctx context.Context, query string, limit int) ([]core.SearchResult, error)
}

// Server is the HTTP relay in front of the search upstream. It
// authenticates requests, enforces per-identity rate limits, consults
// the result cache, and ranks whatever it serves.
//
// Upstream failures degrade to an empty result list and ranking
// failures degrade to upstream order; after authentication and rate
// limiting, a request always gets a 200.
type Server struct {
	authority *token.Authority
	limiter   *ratelimit.Limiter
	upstream  SearchClient
	ranker    rank.Ranker
	cache     cache.ResultCache
	metrics   *Metrics
	writePool *ants.Pool
	logger    *slog.Logger

	router     *mux.Router
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server) error

// WithCache enables the query result cache. Without this option the
// server fetches from the upstream on every request.
func WithCache(c cache.ResultCache) Option {
	return func(s *Server) error {
		s.cache = c
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithWritePoolSize sets the size of the write-behind cache pool.
// Default is DefaultWritePoolSize.
func WithWritePoolSize(size int) Option {
	return func(s *Server) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.writePool.Release()
		s.writePool = pool
		return nil
	}
}

// New creates a Server over the given collaborators. The cache is
// optional; everything else is required.
func New(authority *token.Authority, limiter *ratelimit.Limiter, upstream SearchClient, ranker rank.Ranker, opts ...Option) (*Server, error) {
	if authority == nil {
		return nil, ErrAuthorityRequired
	}
	if limiter == nil {
		return nil, ErrLimiterRequired
	}
	if upstream == nil {
		return nil, ErrUpstreamRequired
	}
	if ranker == nil {
		return nil, ErrRankerRequired
	}

	pool, err := ants.NewPool(DefaultWritePoolSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		authority: authority,
		limiter:   limiter,
		upstream:  upstream,
		ranker:    ranker,
		metrics:   NewMetrics(),
		writePool: pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			pool.Release()
			return nil, err
		}
	}

	s.router = mux.NewRouter()
	s.router.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP on addr until Shutdown is called or the listener
// fails.
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("search relay listening", "addr", addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP listener and the write-behind
// pool. In-flight cache writes are abandoned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.writePool.Release()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Missing the query parameter.", http.StatusBadRequest)
		return
	}

	credential := r.URL.Query().Get("token")
	if !s.authority.Verify(credential) {
		http.Error(w, "Unauthorized.", http.StatusUnauthorized)
		return
	}

	if err := s.limiter.Consume(clientIdentity(r, credential)); err != nil {
		http.Error(w, "Too many requests.", http.StatusTooManyRequests)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results := s.lookupResults(r.Context(), query, limit)
	s.metrics.IncrementSearches()

	ranked, err := s.ranker.Rank(r.Context(), query, results)
	if err != nil {
		s.logger.Error("ranking failed, serving upstream order", "query", query, "err", err)
		ranked = results
	}
	if ranked == nil {
		// The body is always a JSON array, never null.
		ranked = []core.SearchResult{}
	}

	s.respondJSON(w, ranked)
}

// lookupResults serves the query from the cache when possible, falling
// back to the upstream. Upstream failures degrade to an empty list so
// the endpoint stays available; a fetched list is cached write-behind.
func (s *Server) lookupResults(ctx context.Context, query string, limit int) []core.SearchResult {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, query)
		if err == nil {
			s.logger.Debug("cache hit", "query", query, "count", len(cached))
			return cached
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Error("cache lookup failed", "query", query, "err", err)
		}
	}

	results, err := s.upstream.FetchResults(ctx, query, limit)
	if err != nil {
		s.logger.Error("upstream search failed", "query", query, "err", err)
		return []core.SearchResult{}
	}

	if s.cache != nil {
		s.storeWriteBehind(query, results)
	}
	return results
}

// storeWriteBehind hands the cache write to the pool so the response is
// not delayed by cache latency. When the pool cannot take the task the
// write happens inline.
func (s *Server) storeWriteBehind(query string, results []core.SearchResult) {
	store := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := s.cache.Set(ctx, query, results); err != nil {
			s.logger.Error("cache store failed", "query", query, "err", err)
		}
	}

	if err := s.writePool.Submit(store); err != nil {
		s.logger.Warn("write pool rejected task, storing inline", "err", err)
		store()
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, s.metrics.Snapshot())
}

func (s *Server) respondJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("cannot encode response", "err", err)
	}
}
