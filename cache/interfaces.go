package cache

import (
	"context"

	"github.com/poiesic/searchdeck/core"
)

// ResultCache stores normalized result lists keyed by query, with a TTL.
// Implementations must be thread-safe and support concurrent access.
//
// The cache is an optional collaborator: callers that run without one hold
// no ResultCache at all rather than a no-op implementation.
type ResultCache interface {
	// Get returns the cached result list for the query.
	// Returns ErrCacheMiss when no live entry exists. A corrupt stored
	// value is reported as a miss, never as a fatal error.
	Get(ctx context.Context, query string) ([]core.SearchResult, error)

	// Set stores the result list for the query, replacing any previous
	// entry. The entry expires after the backend's configured TTL;
	// entries are never explicitly invalidated.
	Set(ctx context.Context, query string, results []core.SearchResult) error

	// Close closes the cache backend and releases resources.
	Close() error
}
