package searchctx

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longSnippet = "매장 전환율을 높이는 방법에 대한 상세한 설명이 들어 있는 본문입니다"

func TestFilterDedupesByNormalizedURL(t *testing.T) {
	sources := []SourceResults{
		{Type: SourceWeb, Results: []RawResult{
			{Title: "a", Snippet: longSnippet, URL: "https://example.com/post/1?utm_source=x"},
			{Title: "b", Snippet: longSnippet, URL: "http://www.example.com/post/1/"},
			{Title: "c", Snippet: longSnippet, URL: "https://example.com/post/2"},
		}},
	}

	filtered := Filter("전환율", sources)

	require.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].Title)
}

func TestFilterDropsSpamAndShortSnippets(t *testing.T) {
	sources := []SourceResults{
		{Type: SourceWeb, Results: []RawResult{
			{Title: "spam", Snippet: longSnippet, URL: "https://link.coupang.com/deal"},
			{Title: "thin", Snippet: "짧음", URL: "https://example.com/thin"},
			{Title: "ok", Snippet: longSnippet, URL: "https://example.com/ok"},
		}},
	}

	filtered := Filter("전환율", sources)

	require.Len(t, filtered, 1)
	assert.Equal(t, "ok", filtered[0].Title)
}

func TestFilterScoresKeywordMatches(t *testing.T) {
	sources := []SourceResults{
		{Type: SourceWeb, Results: []RawResult{
			{Title: "관련 없는 글", Snippet: longSnippet, URL: "https://example.com/1"},
			{Title: "전환율 개선 가이드", Snippet: longSnippet, URL: "https://example.com/2"},
		}},
	}

	filtered := Filter("전환율 개선", sources)

	require.Len(t, filtered, 2)
	assert.Equal(t, "전환율 개선 가이드", filtered[0].Title)
	assert.Greater(t, filtered[0].RelevanceScore, filtered[1].RelevanceScore)
}

func TestFilterPenalizesSocialDomains(t *testing.T) {
	sources := []SourceResults{
		{Type: SourceSNS, Results: []RawResult{
			{Title: "insta", Snippet: longSnippet, URL: "https://www.instagram.com/p/abc"},
		}},
		{Type: SourceWeb, Results: []RawResult{
			{Title: "web", Snippet: longSnippet, URL: "https://retailnews.example.com/article"},
		}},
	}

	filtered := Filter("매장", sources)

	require.Len(t, filtered, 2)
	assert.Equal(t, "web", filtered[0].Title)
}

func TestFilterCapsAtSix(t *testing.T) {
	var results []RawResult
	for i := 0; i < 10; i++ {
		results = append(results, RawResult{
			Title:   fmt.Sprintf("result %d", i),
			Snippet: longSnippet,
			URL:     fmt.Sprintf("https://example.com/%d", i),
		})
	}

	filtered := Filter("매장", []SourceResults{{Type: SourceWeb, Results: results}})
	assert.Len(t, filtered, 6)
}

func TestFilterScoreStaysInRange(t *testing.T) {
	snippet := strings.Repeat("전환율 객단가 매출 체류시간 분석 ", 10)
	sources := []SourceResults{
		{Type: SourceWeb, Results: []RawResult{
			{Title: snippet, Snippet: snippet, URL: "https://example.com/max"},
		}},
	}

	filtered := Filter("전환율 객단가 매출 체류시간 분석", sources)

	require.Len(t, filtered, 1)
	assert.LessOrEqual(t, filtered[0].RelevanceScore, 1.0)
	assert.GreaterOrEqual(t, filtered[0].RelevanceScore, 0.0)
}

func TestQueryKeywords(t *testing.T) {
	keywords := QueryKeywords("전환율 AI 분석 to store")

	assert.Contains(t, keywords, "전환율")
	assert.Contains(t, keywords, "분석")
	assert.Contains(t, keywords, "store")
	// Latin tokens under three characters are noise.
	assert.NotContains(t, keywords, "ai")
	assert.NotContains(t, keywords, "to")
}

func TestRenderContextGroupsBySource(t *testing.T) {
	results := []FilteredResult{
		{Title: "sns글", Snippet: "SNS 후기", URL: "https://sns.example.com/1", Source: SourceSNS},
		{Title: "기사", Snippet: "뉴스 본문", URL: "https://news.example.com/1", Source: SourceNews},
		{Title: "블로그", Snippet: "웹 본문", URL: "https://web.example.com/1", Source: SourceWeb},
	}

	rendered := RenderContext(results)

	webIdx := strings.Index(rendered, "[웹 검색]")
	newsIdx := strings.Index(rendered, "[뉴스]")
	snsIdx := strings.Index(rendered, "[SNS]")
	require.True(t, webIdx >= 0 && newsIdx >= 0 && snsIdx >= 0)
	assert.Less(t, webIdx, newsIdx)
	assert.Less(t, newsIdx, snsIdx)
	assert.Contains(t, rendered, "https://web.example.com/1")
}

func TestRenderContextRespectsCharBudget(t *testing.T) {
	var results []FilteredResult
	for i := 0; i < 6; i++ {
		results = append(results, FilteredResult{
			Title:   fmt.Sprintf("result %d", i),
			Snippet: strings.Repeat("본문 ", 200),
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Source:  SourceWeb,
		})
	}

	rendered := RenderContext(results)
	assert.LessOrEqual(t, len([]rune(rendered)), maxContextChars)
}
