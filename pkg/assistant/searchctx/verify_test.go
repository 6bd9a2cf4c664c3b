package searchctx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(url, snippet string) FilteredResult {
	return FilteredResult{Title: "제목", Snippet: snippet, URL: url, Source: SourceWeb}
}

func TestCrossVerifyThreeAgreeingSources(t *testing.T) {
	results := []FilteredResult{
		result("https://a.example.com/1", "매장 개선 후 전환율 18% 달성"),
		result("https://b.example.com/2", "평균적으로 전환율 18% 수준이다"),
		result("https://c.example.com/3", "업계 전환율 19% 기록"),
	}

	facts := CrossVerify(results)

	require.Len(t, facts, 1)
	fact := facts[0]
	assert.Equal(t, "전환율", fact.Keyword)
	assert.Equal(t, 3, fact.SourceCount)
	assert.Equal(t, ConfidenceHigh, fact.Confidence)
	assert.Equal(t, "전환율: 18~19% (3개 소스)", fact.Summary)
}

func TestCrossVerifySingleSourceNeverVerified(t *testing.T) {
	results := []FilteredResult{
		result("https://a.example.com/1", "전환율 18% 달성 사례"),
	}

	assert.Empty(t, CrossVerify(results))
}

func TestCrossVerifyTwoSourcesSpreadGrading(t *testing.T) {
	agreeing := CrossVerify([]FilteredResult{
		result("https://a.example.com/1", "체류시간 10분 수준"),
		result("https://b.example.com/2", "체류시간 12분으로 측정"),
	})
	require.Len(t, agreeing, 1)
	// (12-10)/10 = 0.2 < 0.3 → high even with two sources.
	assert.Equal(t, ConfidenceHigh, agreeing[0].Confidence)

	disagreeing := CrossVerify([]FilteredResult{
		result("https://a.example.com/1", "체류시간 10분 수준"),
		result("https://b.example.com/2", "체류시간 20분으로 측정"),
	})
	require.Len(t, disagreeing, 1)
	assert.Equal(t, ConfidenceMedium, disagreeing[0].Confidence)
}

func TestCrossVerifyIgnoresNumbersFarFromAnchor(t *testing.T) {
	padding := "이 문장은 기준 키워드와 숫자 사이의 거리를 사십 글자 이상으로 벌리기 위한 긴 내용입니다 정말로 깁니다"
	results := []FilteredResult{
		result("https://a.example.com/1", "전환율 "+padding+" 18%"),
		result("https://b.example.com/2", "전환율 "+padding+" 19%"),
	}

	assert.Empty(t, CrossVerify(results))
}

func TestCrossVerifySynonymsCollapse(t *testing.T) {
	results := []FilteredResult{
		result("https://a.example.com/1", "conversion rate 18% reported"),
		result("https://b.example.com/2", "구매전환율 19% 기록"),
	}

	facts := CrossVerify(results)

	require.Len(t, facts, 1)
	assert.Equal(t, "전환율", facts[0].Keyword)
	assert.Equal(t, 2, facts[0].SourceCount)
}

func TestRenderVerificationRanksByConfidence(t *testing.T) {
	facts := []VerifiedFact{
		{Keyword: "매출", Confidence: ConfidenceMedium, Summary: "매출: 10~15억 (2개 소스)"},
		{Keyword: "전환율", Confidence: ConfidenceHigh, Summary: "전환율: 18~19% (3개 소스)"},
	}

	rendered := RenderVerification(facts)

	require.Contains(t, rendered, "전환율")
	require.Contains(t, rendered, "매출")
	assert.Less(t, strings.Index(rendered, "전환율"), strings.Index(rendered, "매출"))
	assert.Contains(t, rendered, "신뢰도 높음")
	assert.Contains(t, rendered, "신뢰도 중간")
}

func TestRenderVerificationEmpty(t *testing.T) {
	assert.Empty(t, RenderVerification(nil))
}
