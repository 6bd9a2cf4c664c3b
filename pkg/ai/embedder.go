package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrEmbeddingUnavailable marks embedding failures and timeouts so callers
// can tell a degraded embedding service apart from an empty result and fall
// back to full-text search.
var ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

// Embedder produces an embedding vector for one input text.
type Embedder interface {
	Embedding(ctx context.Context, input string, model string) ([]float64, error)
}

// Cache memoizes embedding vectors by normalized query text. It is advisory:
// a miss always falls through to recomputation, and implementations never
// return stale or partial vectors.
type Cache interface {
	Get(key string) ([]float64, bool)
	Add(key string, value []float64)
}

type lruCache struct {
	inner *lru.Cache[string, []float64]
}

// NewLRUCache returns a bounded LRU embedding cache.
func NewLRUCache(size int) (Cache, error) {
	inner, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, err
	}
	return &lruCache{inner: inner}, nil
}

func (c *lruCache) Get(key string) ([]float64, bool) { return c.inner.Get(key) }
func (c *lruCache) Add(key string, value []float64)  { c.inner.Add(key, value) }

// NopCache never stores anything; it substitutes for the LRU in tests.
type NopCache struct{}

func (NopCache) Get(string) ([]float64, bool) { return nil, false }
func (NopCache) Add(string, []float64)        {}

// CachedEmbedder bounds embedding latency with a timeout and memoizes
// vectors through an injected cache.
type CachedEmbedder struct {
	inner   Embedder
	cache   Cache
	timeout time.Duration
	logger  *log.Logger
}

func NewCachedEmbedder(logger *log.Logger, inner Embedder, cache Cache, timeout time.Duration) *CachedEmbedder {
	if cache == nil {
		cache = NopCache{}
	}
	return &CachedEmbedder{
		inner:   inner,
		cache:   cache,
		timeout: timeout,
		logger:  logger,
	}
}

func (e *CachedEmbedder) Embedding(ctx context.Context, input string, model string) ([]float64, error) {
	key := cacheKey(input, model)
	if vector, ok := e.cache.Get(key); ok {
		return vector, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vector, err := e.inner.Embedding(ctx, input, model)
	if err != nil {
		e.logger.Warn("Embedding call failed", "error", err, "model", model)
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	e.cache.Add(key, vector)
	return vector, nil
}

// cacheKey normalizes the input so trivially different spellings of the same
// query share a cache entry.
func cacheKey(input, model string) string {
	return model + "|" + strings.Join(strings.Fields(strings.ToLower(input)), " ")
}
