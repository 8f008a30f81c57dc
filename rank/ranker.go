package rank

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/searchdeck/ai"
	"github.com/poiesic/searchdeck/core"
)

// Ranker orders a result list by relevance to a query.
// Ranking is a best-effort enhancement: when a Ranker returns an error the
// caller serves the input order instead of failing the request.
type Ranker interface {
	// Rank returns a new list sorted by descending relevance to the query.
	// The input list is never mutated. Results with equal scores keep
	// their relative input order.
	Rank(ctx context.Context, query string, results []core.SearchResult) ([]core.SearchResult, error)
}

// EmbeddingRanker ranks results by cosine similarity between the query
// embedding and each result's document embedding.
//
// The embedder is a process-wide resource initialized lazily on the first
// ranked request: a failed initialization leaves the ranker uninitialized
// so a later request can retry, while a success is cached for the process
// lifetime. Initialization is guarded so concurrent first use builds the
// embedder exactly once.
type EmbeddingRanker struct {
	factory ai.EmbedderFactory
	logger  *slog.Logger

	mu       sync.Mutex
	embedder ai.Embedder
}

var _ Ranker = (*EmbeddingRanker)(nil)

// Option configures an EmbeddingRanker.
type Option func(*EmbeddingRanker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *EmbeddingRanker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewEmbeddingRanker creates a ranker that builds its embedder from
// factory on first use.
func NewEmbeddingRanker(factory ai.EmbedderFactory, opts ...Option) (*EmbeddingRanker, error) {
	if factory == nil {
		return nil, ErrEmbedderFactoryRequired
	}

	r := &EmbeddingRanker{
		factory: factory,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Rank embeds the lower-cased query and every result document in one
// batched call per side, scores each result by cosine similarity, and
// returns a copy of the list stable-sorted by descending score.
func (r *EmbeddingRanker) Rank(ctx context.Context, query string, results []core.SearchResult) ([]core.SearchResult, error) {
	if len(results) == 0 {
		return results, nil
	}

	embedder, err := r.sharedEmbedder()
	if err != nil {
		return nil, err
	}

	queryEmbedding, err := embedder.EmbedText(ctx, strings.ToLower(query))
	if err != nil {
		return nil, err
	}

	documents := make([]string, len(results))
	for i := range results {
		documents[i] = results[i].Document()
	}

	documentEmbeddings, err := embedder.EmbedTexts(ctx, documents)
	if err != nil {
		return nil, err
	}
	if len(documentEmbeddings) != len(results) {
		return nil, ErrEmbeddingCountMismatch
	}

	scores := make([]float32, len(results))
	for i, documentEmbedding := range documentEmbeddings {
		scores[i] = CosineSimilarity(queryEmbedding, documentEmbedding)
	}

	// Sort into a copy; the caller may still hold the upstream-order list.
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranked := make([]core.SearchResult, len(results))
	for i, idx := range order {
		ranked[i] = results[idx]
	}

	r.logger.Debug("ranked results", "query", query, "count", len(ranked))
	return ranked, nil
}

// sharedEmbedder returns the process-wide embedder, building it on first
// use. Failure does not poison later attempts.
func (r *EmbeddingRanker) sharedEmbedder() (ai.Embedder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.embedder != nil {
		return r.embedder, nil
	}

	embedder, err := r.factory()
	if err != nil {
		return nil, err
	}

	r.embedder = embedder
	return embedder, nil
}
