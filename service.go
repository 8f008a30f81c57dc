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


package searchdeck

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/poiesic/searchdeck/ai"
	"github.com/poiesic/searchdeck/ai/openai"
	"github.com/poiesic/searchdeck/cache"
	badgercache "github.com/poiesic/searchdeck/cache/badger"
	"github.com/poiesic/searchdeck/rank"
	"github.com/poiesic/searchdeck/ratelimit"
	"github.com/poiesic/searchdeck/searxng"
	"github.com/poiesic/searchdeck/server"
	"github.com/poiesic/searchdeck/token"
)

// Config holds the assembled relay's settings. Start from DefaultConfig
// and override fields rather than building one from scratch.
type Config struct {
	// Host and Port form the listen address.
	Host string
	Port int

	// TokenFile is where the deployment secret lives. Empty selects the
	// token package default under os.TempDir.
	TokenFile string

	// RateLimitPoints requests are allowed per RateLimitWindow for each
	// identity.
	RateLimitPoints int
	RateLimitWindow time.Duration

	// SearxngURL is the upstream search endpoint; SearxngEngines selects
	// the engine category preset for this deployment.
	SearxngURL     string
	SearxngEngines string

	// CacheEnabled turns on the query result cache at CachePath with
	// entries living for CacheTTL.
	CacheEnabled bool
	CachePath    string
	CacheTTL     time.Duration

	// AI configures the embedding provider behind the ranker.
	AI *ai.Config
}

// DefaultConfig returns the settings for a local single-instance deploy.
func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            3000,
		RateLimitPoints: 10,
		RateLimitWindow: 10 * time.Second,
		SearxngURL:      searxng.DefaultEndpoint,
		SearxngEngines:  searxng.DefaultEngines,
		CachePath:       filepath.Join(os.TempDir(), "searchdeck-cache"),
		CacheTTL:        badgercache.DefaultTTL,
		AI:              ai.DefaultConfig(),
	}
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Service wires the relay together: token authority, rate limiter,
// upstream client, optional result cache, embedding ranker and the HTTP
// server in front of them.
type Service struct {
	config    *Config
	authority *token.Authority
	cache     cache.ResultCache
	server    *server.Server
	logger    *slog.Logger
}

// NewService assembles a Service from config. The embedding provider is
// not contacted here; the ranker connects on the first ranked request.
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}

	logger := slog.Default()

	authority, err := token.NewAuthority(config.TokenFile, token.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	limiter, err := ratelimit.NewLimiter(config.RateLimitPoints, config.RateLimitWindow)
	if err != nil {
		return nil, err
	}

	upstream, err := searxng.NewClient(config.SearxngURL,
		searxng.WithEngines(config.SearxngEngines),
		searxng.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	aiConfig := config.AI
	if aiConfig == nil {
		aiConfig = ai.DefaultConfig()
	}
	if err := aiConfig.Validate(); err != nil {
		return nil, err
	}

	ranker, err := rank.NewEmbeddingRanker(func() (ai.Embedder, error) {
		return openai.NewEmbedder(aiConfig)
	}, rank.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var resultCache cache.ResultCache
	serverOpts := []server.Option{server.WithLogger(logger)}
	if config.CacheEnabled {
		resultCache, err = openResultCache(config, logger)
		if err != nil {
			return nil, err
		}
		serverOpts = append(serverOpts, server.WithCache(resultCache))
	}

	srv, err := server.New(authority, limiter, upstream, ranker, serverOpts...)
	if err != nil {
		if resultCache != nil {
			resultCache.Close()
		}
		return nil, err
	}

	return &Service{
		config:    config,
		authority: authority,
		cache:     resultCache,
		server:    srv,
		logger:    logger,
	}, nil
}

func openResultCache(config *Config, logger *slog.Logger) (cache.ResultCache, error) {
	backend, err := badgercache.OpenBackend(config.CachePath, false)
	if err != nil {
		return nil, fmt.Errorf("opening result cache at %s: %w", config.CachePath, err)
	}

	resultCache, err := badgercache.NewResultCache(backend,
		badgercache.WithTTL(config.CacheTTL),
		badgercache.WithLogger(logger),
	)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return resultCache, nil
}

// Authority exposes the token authority, mainly for the CLI's token
// commands.
func (s *Service) Authority() *token.Authority {
	return s.authority
}

// Run serves HTTP on the configured address until Shutdown.
func (s *Service) Run() error {
	return s.server.Run(s.config.Addr())
}

// Shutdown stops the HTTP server and then releases the cache backend.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)

	if s.cache != nil {
		if closeErr := s.cache.Close(); closeErr != nil {
			s.logger.Error("error closing result cache", "err", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}
	return err
}
