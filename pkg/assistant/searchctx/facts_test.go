package searchctx

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFactsStat(t *testing.T) {
	results := []FilteredResult{
		result("https://a.example.com/1", "히트맵 도입 후 전환율 18% 상승이라는 결과가 나왔다"),
	}

	facts := ExtractFacts(results, nil)

	require.NotEmpty(t, facts)
	assert.Equal(t, FactStat, facts[0].Type)
	assert.Contains(t, facts[0].Text, "18%")
	assert.Greater(t, facts[0].Confidence, 0.5)
	assert.LessOrEqual(t, facts[0].Confidence, 1.0)
}

func TestExtractFactsCase(t *testing.T) {
	results := []FilteredResult{
		result("https://a.example.com/1", "Nike 매장은 히트맵 도입으로 매출 개선을 달성했다. 날씨 이야기."),
	}

	facts := ExtractFacts(results, nil)

	var caseFacts []ExtractedFact
	for _, f := range facts {
		if f.Type == FactCase {
			caseFacts = append(caseFacts, f)
		}
	}
	require.NotEmpty(t, caseFacts)
	assert.Contains(t, caseFacts[0].Text, "Nike")
}

func TestExtractFactsTrend(t *testing.T) {
	results := []FilteredResult{
		result("https://a.example.com/1", "최근 오프라인 리테일에서 매장 분석 트렌드가 확산되고 있다"),
	}

	facts := ExtractFacts(results, nil)

	var trendFacts []ExtractedFact
	for _, f := range facts {
		if f.Type == FactTrend {
			trendFacts = append(trendFacts, f)
		}
	}
	require.NotEmpty(t, trendFacts)
}

func TestExtractFactsFoldsVerified(t *testing.T) {
	verified := []VerifiedFact{
		{Keyword: "전환율", Confidence: ConfidenceHigh, Summary: "전환율: 18~19% (3개 소스)"},
		{Keyword: "매출", Confidence: ConfidenceMedium, Summary: "매출: 10~15억 (2개 소스)"},
	}

	facts := ExtractFacts(nil, verified)

	require.Len(t, facts, 2)
	// Verified facts rank by their fixed tier confidence.
	assert.Equal(t, "전환율: 18~19% (3개 소스)", facts[0].Text)
	assert.Equal(t, 0.95, facts[0].Confidence)
	assert.Equal(t, 0.7, facts[1].Confidence)
	assert.Equal(t, "cross_verified", facts[0].Source)
}

func TestExtractFactsDedupes(t *testing.T) {
	snippet := "히트맵 도입 후 전환율 18% 상승이라는 결과가 나왔다"
	results := []FilteredResult{
		result("https://a.example.com/1", snippet),
		result("https://b.example.com/2", snippet),
	}

	facts := ExtractFacts(results, nil)

	keys := map[string]int{}
	for _, f := range facts {
		keys[dedupKey(f.Text)]++
	}
	for key, count := range keys {
		assert.Equal(t, 1, count, "duplicate key %q", key)
	}
}

func TestExtractFactsCapsAtEight(t *testing.T) {
	var results []FilteredResult
	for i := 0; i < 12; i++ {
		results = append(results, result(
			fmt.Sprintf("https://a.example.com/%d", i),
			fmt.Sprintf("사례 %d번 매장에서 전환율 %d%% 상승 결과", i, 10+i),
		))
	}

	facts := ExtractFacts(results, nil)
	assert.LessOrEqual(t, len(facts), 8)
}

func TestDedupKeyNormalizes(t *testing.T) {
	a := dedupKey("전환율 18% 상승!")
	b := dedupKey("전환율  18%  상승")
	assert.Equal(t, a, b)
}

func TestRenderFactsGroupCaps(t *testing.T) {
	var facts []ExtractedFact
	for i := 0; i < 6; i++ {
		facts = append(facts, ExtractedFact{Type: FactStat, Text: fmt.Sprintf("수치 %d", i), Confidence: 0.8})
	}
	facts = append(facts,
		ExtractedFact{Type: FactCase, Text: "사례 하나", Confidence: 0.7},
		ExtractedFact{Type: FactTrend, Text: "트렌드 하나", Confidence: 0.6},
	)

	rendered := RenderFacts(facts)

	assert.Equal(t, maxStatLines, strings.Count(rendered, "- 수치"))
	assert.Contains(t, rendered, "[핵심 수치]")
	assert.Contains(t, rendered, "[사례]")
	assert.Contains(t, rendered, "[트렌드]")
}

func TestRenderFactsEmpty(t *testing.T) {
	assert.Empty(t, RenderFacts(nil))
}
