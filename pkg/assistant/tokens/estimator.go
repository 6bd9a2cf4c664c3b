// Package tokens estimates language-model token counts from raw text and trims
// text blocks to a token budget. Estimates are heuristic, not billing-accurate:
// they exist so the context assembler can make consistent include/trim/omit
// decisions without calling a real tokenizer.
package tokens

import (
	"math"
	"strings"
	"unicode"
)

// Estimator converts character counts into approximate token counts.
// Korean text packs more tokens per character than Latin text, so the
// chars-per-token divisor shrinks as the Korean ratio of the input grows.
// The constants are calibrated policy, not a tokenizer contract.
type Estimator struct {
	// BaseCharsPerToken is the divisor for pure Latin text.
	BaseCharsPerToken float64
	// KoreanWeight is subtracted per unit of Korean character ratio.
	KoreanWeight float64
	// MinCharsPerToken floors the divisor for fully-CJK input.
	MinCharsPerToken float64
}

// NewEstimator returns an estimator with the default calibration.
func NewEstimator() Estimator {
	return Estimator{
		BaseCharsPerToken: 0.83,
		KoreanWeight:      0.2,
		MinCharsPerToken:  0.5,
	}
}

// Estimate returns the approximate token count of text.
// Empty input is zero tokens.
func (e Estimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	total := 0
	korean := 0
	for _, r := range text {
		total++
		if unicode.Is(unicode.Hangul, r) {
			korean++
		}
	}
	ratio := float64(korean) / float64(total)
	charsPerToken := e.BaseCharsPerToken - e.KoreanWeight*ratio
	if charsPerToken < e.MinCharsPerToken {
		charsPerToken = e.MinCharsPerToken
	}
	return int(math.Ceil(float64(total) / charsPerToken))
}

// TrimToBudget keeps whole lines from the top of text while the running token
// estimate stays within maxTokens. It never cuts mid-line; the first line that
// would push the estimate over the budget is dropped along with everything
// after it.
func (e Estimator) TrimToBudget(text string, maxTokens int) string {
	if text == "" || maxTokens <= 0 {
		return ""
	}
	if e.Estimate(text) <= maxTokens {
		return text
	}
	lines := strings.Split(text, "\n")
	var kept []string
	used := 0
	for _, line := range lines {
		// +1 for the newline that rejoins the block
		cost := e.Estimate(line + "\n")
		if used+cost > maxTokens {
			break
		}
		used += cost
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
