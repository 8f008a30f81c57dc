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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/searchdeck"
	"github.com/poiesic/searchdeck/ai"
	"github.com/poiesic/searchdeck/searxng"
	"github.com/poiesic/searchdeck/token"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "searchdeck",
		Usage: "Token-gated search relay in front of SearXNG",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the search relay server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "host",
						Usage:   "Listen address",
						Value:   "0.0.0.0",
						EnvVars: []string{"HOST"},
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Listen port",
						Value:   3000,
						EnvVars: []string{"PORT"},
					},
					&cli.StringFlag{
						Name:    "searxng-url",
						Usage:   "SearXNG search endpoint",
						Value:   searxng.DefaultEndpoint,
						EnvVars: []string{"SEARXNG_URL"},
					},
					&cli.StringFlag{
						Name:    "searxng-engines",
						Usage:   "SearXNG engine category preset",
						Value:   searxng.DefaultEngines,
						EnvVars: []string{"SEARXNG_ENGINES"},
					},
					&cli.BoolFlag{
						Name:    "cache",
						Usage:   "Enable the query result cache",
						EnvVars: []string{"CACHE_ENABLED"},
					},
					&cli.StringFlag{
						Name:    "cache-path",
						Usage:   "Directory for the result cache",
						Value:   filepath.Join(os.TempDir(), "searchdeck-cache"),
						EnvVars: []string{"CACHE_PATH"},
					},
					&cli.DurationFlag{
						Name:    "cache-ttl",
						Usage:   "Lifetime of a cached result list",
						Value:   time.Hour,
						EnvVars: []string{"CACHE_TTL"},
					},
					&cli.IntFlag{
						Name:    "rate-limit-points",
						Usage:   "Requests allowed per identity per window",
						Value:   10,
						EnvVars: []string{"RATE_LIMIT_POINTS"},
					},
					&cli.DurationFlag{
						Name:    "rate-limit-window",
						Usage:   "Rate limit window",
						Value:   10 * time.Second,
						EnvVars: []string{"RATE_LIMIT_WINDOW"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						Value:   "embeddinggemma",
						EnvVars: []string{"EMBEDDING_MODEL"},
					},
					&cli.StringFlag{
						Name:    "token-file",
						Usage:   "Path of the deployment token file",
						EnvVars: []string{"TOKEN_FILE"},
					},
				},
			},
			{
				Name:  "token",
				Usage: "Manage the deployment token",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the current token, generating one if absent",
						Action: tokenShowCommand,
						Flags:  tokenFlags(),
					},
					{
						Name:   "regenerate",
						Usage:  "Replace the token with a fresh one and print it",
						Action: tokenRegenerateCommand,
						Flags:  tokenFlags(),
					},
					{
						Name:   "credential",
						Usage:  "Print a client credential derived from the current token",
						Action: tokenCredentialCommand,
						Flags:  tokenFlags(),
					},
				},
			},
		},
	}
}

func tokenFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "token-file",
			Usage:   "Path of the deployment token file",
			EnvVars: []string{"TOKEN_FILE"},
		},
	}
}

func serveCommand(c *cli.Context) error {
	config := searchdeck.DefaultConfig()
	config.Host = c.String("host")
	config.Port = c.Int("port")
	config.TokenFile = c.String("token-file")
	config.RateLimitPoints = c.Int("rate-limit-points")
	config.RateLimitWindow = c.Duration("rate-limit-window")
	config.SearxngURL = c.String("searxng-url")
	config.SearxngEngines = c.String("searxng-engines")
	config.CacheEnabled = c.Bool("cache")
	config.CachePath = c.String("cache-path")
	config.CacheTTL = c.Duration("cache-ttl")
	config.AI = ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	service, err := searchdeck.NewService(config)
	if err != nil {
		return fmt.Errorf("failed to assemble service: %w", err)
	}

	// Make sure the deployment token exists before accepting traffic.
	if _, err := service.Authority().Token(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- service.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return service.Shutdown(shutdownCtx)
}

func tokenShowCommand(c *cli.Context) error {
	authority, err := token.NewAuthority(c.String("token-file"))
	if err != nil {
		return err
	}

	secret, err := authority.Token()
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, secret)
	return nil
}

func tokenRegenerateCommand(c *cli.Context) error {
	authority, err := token.NewAuthority(c.String("token-file"))
	if err != nil {
		return err
	}

	secret, err := authority.Regenerate()
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, secret)
	return nil
}

func tokenCredentialCommand(c *cli.Context) error {
	authority, err := token.NewAuthority(c.String("token-file"))
	if err != nil {
		return err
	}

	secret, err := authority.Token()
	if err != nil {
		return err
	}

	credential, err := token.EncodeSecret(secret)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, credential)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
