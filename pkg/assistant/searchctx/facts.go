package searchctx

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/neuraltwin/assistant-engine/pkg/helpers"
)

// FactType tags what kind of evidence an extracted fact carries.
type FactType string

const (
	FactStat  FactType = "stat"
	FactCase  FactType = "case"
	FactTrend FactType = "trend"
)

// ExtractedFact is one snippet-level piece of evidence with a heuristic
// confidence score.
type ExtractedFact struct {
	Type       FactType `json:"type"`
	Text       string   `json:"text"`
	Source     string   `json:"source"`
	Confidence float64  `json:"confidence"`
}

const (
	maxFacts      = 8
	dedupKeyRunes = 20
	maxStatLines  = 4
	maxCaseLines  = 3
	maxTrendLines = 2
	idealFactMin  = 15
	idealFactMax  = 50
)

// Fact confidence scoring: additive bonuses on a neutral base, clamped to [0,1].
const (
	factBaseConfidence = 0.5
	digitBonus         = 0.15
	unitBonus          = 0.10
	brandCaseBonus     = 0.10
	recencyBonus       = 0.10
	idealLengthBonus   = 0.05
)

// Verified facts fold in at fixed confidence per tier.
var verifiedConfidence = map[Confidence]float64{
	ConfidenceHigh:   0.95,
	ConfidenceMedium: 0.7,
	ConfidenceLow:    0.4,
}

var (
	statPattern = regexp.MustCompile(`[^.!?\n]*\d+(?:\.\d+)?\s*(?:%|퍼센트|만원|억원|억|원|배|분|시간)[^.!?\n]*`)

	// Case facts pair a brand-like entity with an outcome verb.
	caseEntityPattern  = regexp.MustCompile(`\b[A-Z][A-Za-z0-9&]{2,}\b|[가-힣]+\s*(?:브랜드|매장|스토어|백화점)`)
	caseOutcomePattern = regexp.MustCompile(`증가|개선|달성|성장|상승|절감|도입|(?i)increase|(?i)improve|(?i)achiev|(?i)boost`)

	trendRecencyPattern = regexp.MustCompile(`최근|올해|작년|지난해|20\d{2}년?|(?i)this year|(?i)recent`)
	trendWordPattern    = regexp.MustCompile(`트렌드|유행|인기|확산|증가세|성장세|대세|(?i)trend`)

	unitPattern = regexp.MustCompile(`%|퍼센트|만원|억원|억|원|배|분|시간`)
)

// ExtractFacts pulls stat/case/trend evidence out of the filtered results and
// folds in the cross-verified facts at their fixed confidence. The output is
// deduplicated by a normalized 20-character key, sorted by confidence, and
// capped.
func ExtractFacts(results []FilteredResult, verified []VerifiedFact) []ExtractedFact {
	var facts []ExtractedFact

	for _, result := range results {
		text := result.Title + ". " + result.Snippet

		for _, sentence := range statPattern.FindAllString(text, -1) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			facts = append(facts, ExtractedFact{
				Type:       FactStat,
				Text:       sentence,
				Source:     result.URL,
				Confidence: scoreFact(FactStat, sentence),
			})
		}

		for _, sentence := range sentences(result.Snippet) {
			if caseEntityPattern.MatchString(sentence) && caseOutcomePattern.MatchString(sentence) {
				facts = append(facts, ExtractedFact{
					Type:       FactCase,
					Text:       sentence,
					Source:     result.URL,
					Confidence: scoreFact(FactCase, sentence),
				})
			}
			if trendRecencyPattern.MatchString(sentence) && trendWordPattern.MatchString(sentence) {
				facts = append(facts, ExtractedFact{
					Type:       FactTrend,
					Text:       sentence,
					Source:     result.URL,
					Confidence: scoreFact(FactTrend, sentence),
				})
			}
		}
	}

	for _, v := range verified {
		facts = append(facts, ExtractedFact{
			Type:       FactStat,
			Text:       v.Summary,
			Source:     "cross_verified",
			Confidence: verifiedConfidence[v.Confidence],
		})
	}

	facts = dedupFacts(facts)
	sort.SliceStable(facts, func(i, j int) bool { return facts[i].Confidence > facts[j].Confidence })
	if len(facts) > maxFacts {
		facts = facts[:maxFacts]
	}
	return facts
}

func scoreFact(factType FactType, text string) float64 {
	score := factBaseConfidence
	if strings.ContainsFunc(text, unicode.IsDigit) {
		score += digitBonus
	}
	if unitPattern.MatchString(text) {
		score += unitBonus
	}
	if factType == FactCase && caseEntityPattern.MatchString(text) {
		score += brandCaseBonus
	}
	if factType == FactTrend && trendRecencyPattern.MatchString(text) {
		score += recencyBonus
	}
	if n := len([]rune(text)); n >= idealFactMin && n <= idealFactMax {
		score += idealLengthBonus
	}
	return helpers.Clamp(score, 0, 1)
}

// dedupFacts keeps the first fact per normalized key, in insertion order.
func dedupFacts(facts []ExtractedFact) []ExtractedFact {
	seen := map[string]bool{}
	var out []ExtractedFact
	for _, fact := range facts {
		key := dedupKey(fact.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, fact)
	}
	return out
}

// dedupKey lowercases, strips spaces and punctuation, and keeps the first 20
// runes. Near-identical sentences from different sources collapse together.
func dedupKey(text string) string {
	var b strings.Builder
	count := 0
	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count == dedupKeyRunes {
			break
		}
	}
	return b.String()
}

func sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	var out []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var factSections = []struct {
	factType FactType
	header   string
	maxLines int
}{
	{FactStat, "[핵심 수치]", maxStatLines},
	{FactCase, "[사례]", maxCaseLines},
	{FactTrend, "[트렌드]", maxTrendLines},
}

// RenderFacts renders the grouped fact summary block: up to 4 stat, 3 case
// and 2 trend lines. Empty input renders to "".
func RenderFacts(facts []ExtractedFact) string {
	var b strings.Builder
	for _, section := range factSections {
		lines := 0
		var sb strings.Builder
		for _, fact := range facts {
			if fact.Type != section.factType || lines >= section.maxLines {
				continue
			}
			sb.WriteString("- " + fact.Text + "\n")
			lines++
		}
		if lines > 0 {
			b.WriteString(section.header + "\n" + sb.String())
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
