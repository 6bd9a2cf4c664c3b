package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/searchctx"
)

type stubProvider struct {
	sourceType searchctx.SourceType
	results    []searchctx.RawResult
	err        error
	delay      time.Duration
}

func (s stubProvider) Type() searchctx.SourceType { return s.sourceType }

func (s stubProvider) Search(ctx context.Context, query string) ([]searchctx.RawResult, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.results, s.err
}

func TestAggregatorGathersAllProviders(t *testing.T) {
	a := NewAggregator(log.Default(), time.Second,
		stubProvider{sourceType: searchctx.SourceWeb, results: []searchctx.RawResult{{Title: "웹"}}},
		stubProvider{sourceType: searchctx.SourceNews, results: []searchctx.RawResult{{Title: "뉴스"}}},
	)

	sources := a.Search(context.Background(), "전환율")

	require.Len(t, sources, 2)
	assert.Equal(t, searchctx.SourceWeb, sources[0].Type)
	assert.Equal(t, searchctx.SourceNews, sources[1].Type)
}

func TestAggregatorIsolatesFailures(t *testing.T) {
	a := NewAggregator(log.Default(), time.Second,
		stubProvider{sourceType: searchctx.SourceWeb, err: errors.New("quota exceeded")},
		stubProvider{sourceType: searchctx.SourceNews, results: []searchctx.RawResult{{Title: "뉴스"}}},
	)

	sources := a.Search(context.Background(), "전환율")

	require.Len(t, sources, 1)
	assert.Equal(t, searchctx.SourceNews, sources[0].Type)
}

func TestAggregatorTimesOutSlowProvider(t *testing.T) {
	a := NewAggregator(log.Default(), 20*time.Millisecond,
		stubProvider{sourceType: searchctx.SourceWeb, delay: 500 * time.Millisecond,
			results: []searchctx.RawResult{{Title: "느린 웹"}}},
		stubProvider{sourceType: searchctx.SourceNews, results: []searchctx.RawResult{{Title: "뉴스"}}},
	)

	start := time.Now()
	sources := a.Search(context.Background(), "전환율")

	require.Len(t, sources, 1)
	assert.Equal(t, searchctx.SourceNews, sources[0].Type)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestAggregatorEmptyProviders(t *testing.T) {
	a := NewAggregator(log.Default(), time.Second)
	assert.Empty(t, a.Search(context.Background(), "질문"))
}

func TestNaverProviderParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id", r.Header.Get("X-Naver-Client-Id"))
		assert.Equal(t, "secret", r.Header.Get("X-Naver-Client-Secret"))
		assert.Equal(t, "전환율", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":"<b>전환율</b> 올리기 &amp; 유지하기","link":"https://example.com/a","description":"매장 <b>전환율</b> 개선 사례"}
		]}`))
	}))
	defer server.Close()

	provider, err := NewNaverProvider(server.Client(), "id", "secret", searchctx.SourceWeb)
	require.NoError(t, err)
	provider.baseURL = server.URL

	results, err := provider.Search(context.Background(), "전환율")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "전환율 올리기 & 유지하기", results[0].Title)
	assert.Equal(t, "매장 전환율 개선 사례", results[0].Snippet)
	assert.Equal(t, "https://example.com/a", results[0].URL)
}

func TestNaverProviderRejectsUnknownSource(t *testing.T) {
	_, err := NewNaverProvider(nil, "id", "secret", searchctx.SourceType("radio"))
	assert.Error(t, err)
}

func TestNaverProviderNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider, err := NewNaverProvider(server.Client(), "id", "secret", searchctx.SourceNews)
	require.NoError(t, err)
	provider.baseURL = server.URL

	_, err = provider.Search(context.Background(), "질문")
	assert.Error(t, err)
}
