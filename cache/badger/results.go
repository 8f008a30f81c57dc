package badger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/searchdeck/cache"
	"github.com/poiesic/searchdeck/core"
)

// DefaultTTL is how long a cached result list stays live.
const DefaultTTL = time.Hour

// ResultCache implements cache.ResultCache on a BadgerDB backend.
type ResultCache struct {
	backend *Backend
	ttl     time.Duration
	logger  *slog.Logger
}

var _ cache.ResultCache = (*ResultCache)(nil)

// Option configures a ResultCache.
type Option func(*ResultCache) error

// WithTTL sets the entry lifetime. Default is DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *ResultCache) error {
		if ttl > 0 {
			c.ttl = ttl
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *ResultCache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewResultCache creates a result cache on the given backend.
func NewResultCache(backend *Backend, opts ...Option) (*ResultCache, error) {
	c := &ResultCache{
		backend: backend,
		ttl:     DefaultTTL,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Get returns the cached result list for the query. Expired or absent
// entries return cache.ErrCacheMiss; so does a corrupt stored value,
// which is logged and left to age out rather than failing the request.
func (c *ResultCache) Get(ctx context.Context, query string) ([]core.SearchResult, error) {
	if c.backend.IsClosed() {
		return nil, cache.ErrCacheClosed
	}

	var value []byte
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeQueryResultKey(query))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	}, false)

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, cache.ErrCacheMiss
		}
		return nil, err
	}

	results, err := cache.UnmarshalResults(value)
	if err != nil {
		c.logger.Warn("corrupt cache entry treated as miss", "query", query, "err", err)
		return nil, cache.ErrCacheMiss
	}

	return results, nil
}

// Set stores the result list for the query with the configured TTL,
// replacing any previous entry (last write wins).
func (c *ResultCache) Set(ctx context.Context, query string, results []core.SearchResult) error {
	if c.backend.IsClosed() {
		return cache.ErrCacheClosed
	}

	entry := badger.NewEntry(makeQueryResultKey(query), cache.MarshalResults(results)).
		WithTTL(c.ttl)

	return c.backend.WithTx(func(tx *badger.Txn) error {
		return tx.SetEntry(entry)
	}, true)
}

// Close closes the underlying backend.
func (c *ResultCache) Close() error {
	return c.backend.Close()
}
