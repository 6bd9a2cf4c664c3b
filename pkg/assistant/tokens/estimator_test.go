package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateEmpty(t *testing.T) {
	e := NewEstimator()
	assert.Equal(t, 0, e.Estimate(""))
}

func TestEstimateLatinVsKorean(t *testing.T) {
	e := NewEstimator()

	latin := strings.Repeat("a", 83)
	korean := strings.Repeat("가", 83)

	latinTokens := e.Estimate(latin)
	koreanTokens := e.Estimate(korean)

	// 83 chars / 0.83 = 100 tokens for Latin, 83 / 0.63 ≈ 132 for Korean.
	assert.Equal(t, 100, latinTokens)
	assert.Equal(t, 132, koreanTokens)
	assert.Greater(t, koreanTokens, latinTokens)
}

func TestEstimateFloorsCharsPerToken(t *testing.T) {
	e := NewEstimator()
	e.KoreanWeight = 0.5 // would push the divisor to 0.33 without the floor

	tokens := e.Estimate(strings.Repeat("가", 100))
	assert.Equal(t, 200, tokens) // 100 / 0.5 floor
}

func TestTrimToBudgetKeepsWholeLines(t *testing.T) {
	e := NewEstimator()

	lines := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}
	text := strings.Join(lines, "\n")

	perLine := e.Estimate(lines[0] + "\n")
	trimmed := e.TrimToBudget(text, perLine*2)

	assert.Equal(t, lines[0]+"\n"+lines[1], trimmed)
	assert.NotContains(t, trimmed, "c")
}

func TestTrimToBudgetNoTrimWhenItFits(t *testing.T) {
	e := NewEstimator()
	text := "short line\nanother short line"
	assert.Equal(t, text, e.TrimToBudget(text, 10_000))
}

func TestTrimToBudgetZeroBudget(t *testing.T) {
	e := NewEstimator()
	assert.Equal(t, "", e.TrimToBudget("anything", 0))
	assert.Equal(t, "", e.TrimToBudget("", 100))
}
