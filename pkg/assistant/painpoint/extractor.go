package painpoint

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/neuraltwin/assistant-engine/pkg/helpers"
)

// Result is the per-message classification outcome. PrimaryPain is nil when
// nothing matched; the zero Result is the valid "no signal" answer.
type Result struct {
	PainPoints      []Category `json:"painPoints"`
	PrimaryPain     *Category  `json:"primaryPain"`
	Confidence      float64    `json:"confidence"`
	MatchedKeywords []string   `json:"matchedKeywords"`
	Summary         string     `json:"summary"`
}

// Config holds the scoring policy. The values are heuristic business rules;
// keep overrides to tests and calibration work.
type Config struct {
	EnglishExactFactor     float64
	EnglishSubstringFactor float64
	KoreanFactor           float64
	HistoryEnglishFactor   float64
	HistoryKoreanFactor    float64
	SentimentMultiplier    float64
	SecondaryThreshold     float64
	MaxPainPoints          int
	ConfidenceCeiling      float64
	HistoryTurns           int
}

func DefaultConfig() Config {
	return Config{
		EnglishExactFactor:     2.0,
		EnglishSubstringFactor: 1.0,
		KoreanFactor:           2.5,
		HistoryEnglishFactor:   0.3,
		HistoryKoreanFactor:    0.5,
		SentimentMultiplier:    1.3,
		SecondaryThreshold:     0.4,
		MaxPainPoints:          3,
		ConfidenceCeiling:      20,
		HistoryTurns:           2,
	}
}

// Negative-sentiment indicators. Any hit multiplies every category score,
// since complaints make weak keyword evidence much more likely to be a real
// pain point.
var sentimentIndicators = []string{
	"problem", "struggle", "struggling", "issue", "worried", "concern", "frustrat", "difficult",
	"고민", "문제", "어려", "힘들", "걱정", "답답", "안 나와", "안나와", "모르겠",
}

type Extractor struct {
	cfg Config
}

func NewExtractor() *Extractor {
	return &Extractor{cfg: DefaultConfig()}
}

func NewExtractorWithConfig(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract scores every category against the message and the most recent
// history turns and ranks the winners. It is a total function: empty or
// irrelevant input yields a zero-confidence Result, never an error. Identical
// input always yields identical output.
func (e *Extractor) Extract(message string, history []string) Result {
	lowerMsg := strings.ToLower(message)
	recent := helpers.SafeLastN(history, e.cfg.HistoryTurns)

	type scored struct {
		spec    categorySpec
		score   float64
		matched []string
	}

	var hits []scored
	for _, spec := range categoryTable {
		score := 0.0
		var matched []string

		for _, kw := range spec.keywordsEN {
			switch matchEnglish(lowerMsg, kw) {
			case matchWholeWord:
				score += e.cfg.EnglishExactFactor * spec.weight
				matched = append(matched, kw)
			case matchSubstring:
				score += e.cfg.EnglishSubstringFactor * spec.weight
				matched = append(matched, kw)
			}
			for _, turn := range recent {
				if matchEnglish(strings.ToLower(turn), kw) != matchNone {
					score += e.cfg.HistoryEnglishFactor * spec.weight
				}
			}
		}
		for _, kw := range spec.keywordsKO {
			if strings.Contains(message, kw) {
				score += e.cfg.KoreanFactor * spec.weight
				matched = append(matched, kw)
			}
			for _, turn := range recent {
				if strings.Contains(turn, kw) {
					score += e.cfg.HistoryKoreanFactor * spec.weight
				}
			}
		}

		if score > 0 {
			hits = append(hits, scored{spec: spec, score: score, matched: matched})
		}
	}

	if len(hits) == 0 {
		return Result{PainPoints: []Category{}, MatchedKeywords: []string{}}
	}

	if hasNegativeSentiment(message) {
		for i := range hits {
			hits[i].score *= e.cfg.SentimentMultiplier
		}
	}

	// Stable rank: score descending, table order as tie-break. hits is built
	// in table order, so a stable sort keeps ties deterministic.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	primary := hits[0]
	threshold := primary.score * e.cfg.SecondaryThreshold

	var categories []Category
	var keywords []string
	for _, h := range hits {
		if h.score < threshold || len(categories) >= e.cfg.MaxPainPoints {
			break
		}
		categories = append(categories, h.spec.category)
		keywords = append(keywords, h.matched...)
	}

	return Result{
		PainPoints:      categories,
		PrimaryPain:     helpers.Ptr(primary.spec.category),
		Confidence:      helpers.Clamp(primary.score/e.cfg.ConfidenceCeiling, 0, 1),
		MatchedKeywords: lo.Uniq(keywords),
		Summary:         buildSummary(categories),
	}
}

func buildSummary(categories []Category) string {
	if len(categories) == 0 {
		return ""
	}
	summary := fmt.Sprintf("주요 고민: %s", DisplayName(categories[0]))
	if len(categories) > 1 {
		others := lo.Map(categories[1:], func(c Category, _ int) string { return DisplayName(c) })
		summary += fmt.Sprintf(" (연관: %s)", strings.Join(others, ", "))
	}
	return summary
}

func hasNegativeSentiment(message string) bool {
	lower := strings.ToLower(message)
	for _, indicator := range sentimentIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

type matchKind int

const (
	matchNone matchKind = iota
	matchSubstring
	matchWholeWord
)

// matchEnglish reports how keyword appears in text (both already lowercased).
// A whole-word hit requires non-letter neighbors on both sides.
func matchEnglish(text, keyword string) matchKind {
	keyword = strings.ToLower(keyword)
	idx := strings.Index(text, keyword)
	if idx < 0 {
		return matchNone
	}
	for idx >= 0 {
		before := idx == 0 || !isWordRune(rune(text[idx-1]))
		afterIdx := idx + len(keyword)
		after := afterIdx >= len(text) || !isWordRune(rune(text[afterIdx]))
		if before && after {
			return matchWholeWord
		}
		next := strings.Index(text[idx+1:], keyword)
		if next < 0 {
			break
		}
		idx = idx + 1 + next
	}
	return matchSubstring
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
