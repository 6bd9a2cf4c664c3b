// Package insight keeps the bounded, turn-indexed memory of conversation key
// points. The list is capped at ten entries; re-processing a turn replaces its
// entry so retries and re-renders stay idempotent.
package insight

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/profile"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/rules"
)

// Intent classifies what the user wanted from a turn.
type Intent string

const (
	IntentComparison     Intent = "comparison"
	IntentProblemSolving Intent = "problem_solving"
	IntentPlanning       Intent = "planning"
	IntentLearning       Intent = "learning"
)

// MaxInsights bounds the memory; beyond it the oldest entry is evicted.
const MaxInsights = 10

// maxKeyPointLen truncates key points for display.
const maxKeyPointLen = 100

// Insight is one recorded key point of a conversation turn.
type Insight struct {
	Turn              int             `json:"turn"`
	TopicID           profile.TopicID `json:"topicId"`
	KeyPoint          string          `json:"keyPoint"`
	UserIntent        Intent          `json:"userIntent"`
	MentionedEntities []string        `json:"mentionedEntities,omitempty"`
	Timestamp         time.Time       `json:"timestamp"`
}

// Ordered intent tables; first match wins, learning is the default.
var intentTable = []rules.Rule[Intent]{
	rules.MustRule(`비교|차이|versus|(?i)\bvs\b|(?i)\bcompare\b|어떤 게 나|뭐가 더`, IntentComparison),
	rules.MustRule(`문제|해결|개선|고민|안 되|안되|(?i)\bfix\b|(?i)\bsolve\b|(?i)\bissue\b`, IntentProblemSolving),
	rules.MustRule(`계획|도입|준비|예정|검토 중|(?i)\bplan\b|(?i)\broadmap\b|하려고`, IntentPlanning),
	rules.MustRule(`궁금|알고 싶|배우|설명|뭔가요|무엇|(?i)\bwhat is\b|(?i)\blearn\b`, IntentLearning),
}

// Action-request verbs used for key-point clause selection.
var actionVerbPattern = rules.MustRule(`설명|비교|분석|추천|제안|알려|(?i)\bexplain\b|(?i)\bcompare\b|(?i)\banalyze\b|(?i)\brecommend\b|(?i)\bsuggest\b`, true)

// DetectIntent classifies the message into one of four intents.
func DetectIntent(message string) Intent {
	if intent, ok := rules.FirstMatch(intentTable, message); ok {
		return intent
	}
	return IntentLearning
}

// ExtractKeyPoint picks the most informative clause of a message, preferring
// (1) the first question clause, (2) the first action-request clause, (3) the
// first sentence, (4) the truncated raw message.
func ExtractKeyPoint(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return ""
	}

	if q := firstQuestionClause(message); q != "" {
		return truncate(q, maxKeyPointLen)
	}

	clauses := splitClauses(message)
	for _, clause := range clauses {
		if actionVerbPattern.Pattern.MatchString(clause) {
			return truncate(clause, maxKeyPointLen)
		}
	}
	if len(clauses) > 0 {
		return truncate(clauses[0], maxKeyPointLen)
	}
	return truncate(message, maxKeyPointLen)
}

func firstQuestionClause(message string) string {
	idx := strings.IndexAny(message, "?？")
	if idx < 0 {
		return ""
	}
	_, size := utf8.DecodeRuneInString(message[idx:])
	clause := message[:idx+size]
	// Keep only the clause after the previous sentence boundary.
	if cut := strings.LastIndexAny(clause[:idx], ".!\n"); cut >= 0 {
		clause = clause[cut+1:]
	}
	clause = strings.TrimSpace(clause)
	if len([]rune(clause)) > maxKeyPointLen {
		return ""
	}
	return clause
}

func splitClauses(message string) []string {
	parts := strings.FieldsFunc(message, func(r rune) bool {
		return r == '.' || r == '!' || r == '\n'
	})
	var clauses []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			clauses = append(clauses, trimmed)
		}
	}
	return clauses
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// Accumulate records the turn's insight into a copy of prior. An existing
// entry for the same turn is replaced; when the list outgrows MaxInsights the
// oldest entries are evicted first.
func Accumulate(prior []Insight, turn int, topic profile.TopicID, message string, entities []string, now time.Time) []Insight {
	next := lo.Reject(prior, func(in Insight, _ int) bool { return in.Turn == turn })

	next = append(next, Insight{
		Turn:              turn,
		TopicID:           topic,
		KeyPoint:          ExtractKeyPoint(message),
		UserIntent:        DetectIntent(message),
		MentionedEntities: entities,
		Timestamp:         now,
	})

	sort.SliceStable(next, func(i, j int) bool { return next[i].Turn < next[j].Turn })
	if len(next) > MaxInsights {
		next = next[len(next)-MaxInsights:]
	}
	return next
}

var intentKO = map[Intent]string{
	IntentComparison:     "비교 검토",
	IntentProblemSolving: "문제 해결",
	IntentPlanning:       "도입 계획",
	IntentLearning:       "정보 탐색",
}

// Summary condenses the accumulated insights into one line: the top topics by
// frequency, the dominant intent, and up to three recent substantial key
// points.
func Summary(insights []Insight) string {
	if len(insights) == 0 {
		return ""
	}

	topicCounts := map[profile.TopicID]int{}
	intentCounts := map[Intent]int{}
	for _, in := range insights {
		if in.TopicID != "" {
			topicCounts[in.TopicID]++
		}
		intentCounts[in.UserIntent]++
	}

	topTopics := topKeys(topicCounts, 3)
	primaryIntent := topKeys(intentCounts, 1)

	var parts []string
	if len(topTopics) > 0 {
		names := lo.Map(topTopics, func(t profile.TopicID, _ int) string { return string(t) })
		parts = append(parts, "주요 관심사: "+strings.Join(names, ", "))
	}
	if len(primaryIntent) > 0 {
		parts = append(parts, "대화 성격: "+intentKO[primaryIntent[0]])
	}

	var recent []string
	for i := len(insights) - 1; i >= 0 && len(recent) < 3; i-- {
		if len([]rune(insights[i].KeyPoint)) > 10 {
			recent = append(recent, insights[i].KeyPoint)
		}
	}
	if len(recent) > 0 {
		parts = append(parts, "최근 질문: "+strings.Join(recent, " / "))
	}

	return strings.Join(parts, " | ")
}

// topKeys returns up to n keys ordered by descending count. Ties are broken
// lexicographically so the output is deterministic.
func topKeys[K ~string](counts map[K]int, n int) []K {
	keys := lo.Keys(counts)
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// FormatForPrompt renders the insight block for the system prompt. It stays
// silent until three insights exist; earlier the summary is too thin to be
// worth its tokens.
func FormatForPrompt(insights []Insight) string {
	if len(insights) < 3 {
		return ""
	}
	summary := Summary(insights)
	if summary == "" {
		return ""
	}
	return fmt.Sprintf("[대화 맥락]\n%s", summary)
}
