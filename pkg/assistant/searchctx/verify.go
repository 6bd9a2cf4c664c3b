package searchctx

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Confidence grades how strongly independent sources agree on a claim.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// VerifiedFact is a numeric claim confirmed by at least two distinct sources.
type VerifiedFact struct {
	Keyword     string     `json:"keyword"`
	Values      []float64  `json:"values"`
	Unit        string     `json:"unit"`
	SourceCount int        `json:"sourceCount"`
	Confidence  Confidence `json:"confidence"`
	Summary     string     `json:"summary"`
}

// Canonical keyword anchors. Synonyms collapse into one canonical name so the
// same metric reported in different words still groups together.
var keywordAnchors = []struct {
	canonical string
	synonyms  []string
}{
	{"전환율", []string{"전환율", "구매전환율", "conversion rate", "conversion"}},
	{"객단가", []string{"객단가", "평균 구매액", "average order value", "aov"}},
	{"매출", []string{"매출", "매출액", "revenue", "sales"}},
	{"체류시간", []string{"체류시간", "체류 시간", "dwell time"}},
	{"ROI", []string{"roi", "투자수익률", "투자 대비"}},
	{"평당 매출", []string{"평당 매출", "평당매출", "sales per pyeong"}},
}

// numberPattern captures a value and its unit near a keyword anchor.
// Units cover percentages, Korean currency, multiples and durations.
var numberPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(%|퍼센트|만원|억원|억|원|배|분|초|시간)`)

// anchorWindow is how many runes around an anchor occurrence a number may sit
// in and still count as a claim about that anchor.
const anchorWindow = 40

// minVerificationSources is the floor below which a claim is never verified.
const minVerificationSources = 2

// spreadRatioHighCutoff grades a two-source group: below this spread the
// sources effectively agree.
const spreadRatioHighCutoff = 0.3

type claim struct {
	value float64
	unit  string
}

// CrossVerify extracts numeric claims near keyword anchors from every
// filtered result, groups them by canonical keyword, and grades groups backed
// by at least two distinct sources. Single-source claims never surface.
func CrossVerify(results []FilteredResult) []VerifiedFact {
	type group struct {
		claims      []claim
		sourceCount int
	}
	groups := map[string]*group{}

	for _, result := range results {
		text := result.Title + " " + result.Snippet
		lower := strings.ToLower(text)
		for _, anchor := range keywordAnchors {
			claims := claimsNearAnchor(text, lower, anchor.synonyms)
			if len(claims) == 0 {
				continue
			}
			g := groups[anchor.canonical]
			if g == nil {
				g = &group{}
				groups[anchor.canonical] = g
			}
			g.claims = append(g.claims, claims...)
			g.sourceCount++
		}
	}

	var facts []VerifiedFact
	for _, anchor := range keywordAnchors {
		g := groups[anchor.canonical]
		if g == nil || g.sourceCount < minVerificationSources {
			continue
		}

		values := make([]float64, 0, len(g.claims))
		for _, c := range g.claims {
			values = append(values, c.value)
		}
		sort.Float64s(values)
		unit := g.claims[0].unit

		facts = append(facts, VerifiedFact{
			Keyword:     anchor.canonical,
			Values:      values,
			Unit:        unit,
			SourceCount: g.sourceCount,
			Confidence:  gradeAgreement(g.sourceCount, values),
			Summary:     summarizeFact(anchor.canonical, values, unit, g.sourceCount),
		})
	}
	return facts
}

// claimsNearAnchor finds numeric claims within the anchor window of any
// synonym occurrence.
func claimsNearAnchor(text, lower string, synonyms []string) []claim {
	runes := []rune(lower)
	var claims []claim
	for _, match := range numberPattern.FindAllStringSubmatchIndex(text, -1) {
		numRuneIdx := len([]rune(text[:match[0]]))
		for _, synonym := range synonyms {
			if anchorNear(runes, strings.ToLower(synonym), numRuneIdx) {
				value, err := strconv.ParseFloat(text[match[2]:match[3]], 64)
				if err != nil {
					break
				}
				claims = append(claims, claim{value: value, unit: text[match[4]:match[5]]})
				break
			}
		}
	}
	return claims
}

func anchorNear(runes []rune, synonym string, numIdx int) bool {
	start := numIdx - anchorWindow
	if start < 0 {
		start = 0
	}
	end := numIdx + anchorWindow
	if end > len(runes) {
		end = len(runes)
	}
	return strings.Contains(string(runes[start:end]), synonym)
}

func gradeAgreement(sourceCount int, values []float64) Confidence {
	if sourceCount >= 3 {
		return ConfidenceHigh
	}
	// Exactly two sources: grade by spread.
	min, max := values[0], values[len(values)-1]
	if min > 0 && (max-min)/min < spreadRatioHighCutoff {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

func summarizeFact(keyword string, values []float64, unit string, sourceCount int) string {
	min, max := values[0], values[len(values)-1]
	var valueText string
	if min == max {
		valueText = formatValue(min)
	} else {
		valueText = fmt.Sprintf("%s~%s", formatValue(min), formatValue(max))
	}
	return fmt.Sprintf("%s: %s%s (%d개 소스)", keyword, valueText, unit, sourceCount)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var confidenceKO = map[Confidence]string{
	ConfidenceHigh:   "높음",
	ConfidenceMedium: "중간",
	ConfidenceLow:    "낮음",
}

// RenderVerification renders the annotation block ranking verified facts by
// confidence tier. Empty input renders to "".
func RenderVerification(facts []VerifiedFact) string {
	if len(facts) == 0 {
		return ""
	}
	ordered := make([]VerifiedFact, len(facts))
	copy(ordered, facts)
	rank := map[Confidence]int{ConfidenceHigh: 0, ConfidenceMedium: 1, ConfidenceLow: 2}
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank[ordered[i].Confidence] < rank[ordered[j].Confidence]
	})

	var b strings.Builder
	b.WriteString("[교차 검증된 수치]\n")
	for _, fact := range ordered {
		b.WriteString(fmt.Sprintf("- %s (신뢰도 %s)\n", fact.Summary, confidenceKO[fact.Confidence]))
	}
	return strings.TrimRight(b.String(), "\n")
}
