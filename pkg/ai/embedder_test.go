package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	calls  int
	vector []float64
	err    error
	delay  time.Duration
}

func (s *stubEmbedder) Embedding(ctx context.Context, input string, model string) ([]float64, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func TestCachedEmbedderMemoizes(t *testing.T) {
	stub := &stubEmbedder{vector: []float64{0.1, 0.2}}
	cache, err := NewLRUCache(8)
	require.NoError(t, err)
	embedder := NewCachedEmbedder(log.Default(), stub, cache, time.Second)

	first, err := embedder.Embedding(context.Background(), "매장 전환율", "test-model")
	require.NoError(t, err)
	second, err := embedder.Embedding(context.Background(), "매장  전환율", "test-model")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls, "normalized queries share one cache entry")
}

func TestCachedEmbedderTimeout(t *testing.T) {
	stub := &stubEmbedder{vector: []float64{0.1}, delay: 200 * time.Millisecond}
	embedder := NewCachedEmbedder(log.Default(), stub, NopCache{}, 10*time.Millisecond)

	_, err := embedder.Embedding(context.Background(), "질문", "test-model")

	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestCachedEmbedderWrapsUpstreamError(t *testing.T) {
	stub := &stubEmbedder{err: errors.New("boom")}
	embedder := NewCachedEmbedder(log.Default(), stub, NopCache{}, time.Second)

	_, err := embedder.Embedding(context.Background(), "질문", "test-model")

	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestNopCacheAlwaysRecomputes(t *testing.T) {
	stub := &stubEmbedder{vector: []float64{0.5}}
	embedder := NewCachedEmbedder(log.Default(), stub, nil, time.Second)

	for i := 0; i < 3; i++ {
		_, err := embedder.Embedding(context.Background(), "같은 질문", "test-model")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, stub.calls)
}

func TestCacheKeyIncludesModel(t *testing.T) {
	assert.NotEqual(t, cacheKey("query", "model-a"), cacheKey("query", "model-b"))
	assert.Equal(t, cacheKey("A  B", "m"), cacheKey("a b", "m"))
}
