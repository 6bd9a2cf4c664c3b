// Package salesbridge turns the turn's accumulated signals into a lead score,
// a conversation stage, and the decision to surface the lead-capture form.
// Scoring is a pure function of its inputs; all state lives with the caller.
package salesbridge

import (
	"strings"

	"github.com/samber/lo"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/painpoint"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/profile"
	"github.com/neuraltwin/assistant-engine/pkg/helpers"
)

// Stage is the coarse position of the user in the conversion funnel.
type Stage string

const (
	StageAwareness     Stage = "awareness"
	StageInterest      Stage = "interest"
	StageConsideration Stage = "consideration"
	StageDecision      Stage = "decision"
)

// TriggerReason explains a show/hide decision, for the UI and for analytics.
type TriggerReason string

const (
	ReasonExplicitInterest    TriggerReason = "explicit_interest_detected"
	ReasonHighEngagement      TriggerReason = "high_engagement"
	ReasonPainInConsideration TriggerReason = "pain_point_in_consideration"
	ReasonThresholdScore      TriggerReason = "threshold_score_reached"
	ReasonHighValueTopic      TriggerReason = "high_value_topic_engagement"
	ReasonBelowThreshold      TriggerReason = "below_threshold"
)

// Signals is everything the scorer looks at for one turn.
type Signals struct {
	TurnCount           int                `json:"turnCount"`
	PainPointDetected   bool               `json:"painPointDetected"`
	PrimaryPainCategory painpoint.Category `json:"primaryPainCategory,omitempty"`
	TopicCategory       profile.TopicID    `json:"topicCategory,omitempty"`
	HasExplicitInterest bool               `json:"hasExplicitInterest"`
	RepeatTopics        bool               `json:"repeatTopics"`
}

// Result is the lead decision for one turn.
type Result struct {
	LeadScore     int           `json:"leadScore"`
	Stage         Stage         `json:"stage"`
	ShowLeadForm  bool          `json:"showLeadForm"`
	TriggerReason TriggerReason `json:"triggerReason"`
}

// Config holds the scoring weights and thresholds. They are heuristic
// business rules; named here so calibration does not mean hunting magic
// numbers through the scorer.
type Config struct {
	TurnDepth3Bonus       int
	TurnDepth5Bonus       int
	TurnDepth7Bonus       int
	PainDetectedBonus     int
	PainWeight2Bonus      int
	PainWeight3Bonus      int
	HighValueTopicBonus   int
	FlagshipTopicBonus    int
	ExplicitInterestBonus int
	RepeatTopicBonus      int

	DecisionThreshold      int
	ConsiderationThreshold int
	InterestThreshold      int
	ShowFormScoreThreshold int
	HighValueMinTurns      int
}

func DefaultConfig() Config {
	return Config{
		TurnDepth3Bonus:       20,
		TurnDepth5Bonus:       10,
		TurnDepth7Bonus:       10,
		PainDetectedBonus:     25,
		PainWeight2Bonus:      10,
		PainWeight3Bonus:      5,
		HighValueTopicBonus:   20,
		FlagshipTopicBonus:    15,
		ExplicitInterestBonus: 30,
		RepeatTopicBonus:      10,

		DecisionThreshold:      70,
		ConsiderationThreshold: 50,
		InterestThreshold:      30,
		ShowFormScoreThreshold: 65,
		HighValueMinTurns:      3,
	}
}

// FlagshipTopic is the topic covering the core NeuralTwin offering; it scores
// on top of the generic high-value bonus.
const FlagshipTopic profile.TopicID = "neuraltwin_solution"

// highValueTopics are the topics that historically convert.
var highValueTopics = []profile.TopicID{
	FlagshipTopic,
	"heatmap_analysis",
	"conversion_optimization",
	"digital_twin",
	"roi_simulation",
}

// Commercial-intent keywords. Any hit marks explicit interest.
var explicitInterestKeywords = []string{
	"demo", "pricing", "price", "contact", "trial", "quote", "sales",
	"가격", "비용이 얼마", "견적", "문의", "상담", "구매", "도입하고 싶", "체험", "데모",
}

// HasExplicitInterest reports whether the message contains a commercial-intent
// keyword. The caller feeds the result into Signals.
func HasExplicitInterest(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range explicitInterestKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type Scorer struct {
	cfg Config
}

func NewScorer() *Scorer {
	return &Scorer{cfg: DefaultConfig()}
}

func NewScorerWithConfig(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the lead decision for one turn.
func (s *Scorer) Score(signals Signals) Result {
	score := s.leadScore(signals)
	stage := s.stage(score, signals)

	show, reason := s.decide(score, stage, signals)
	return Result{
		LeadScore:     score,
		Stage:         stage,
		ShowLeadForm:  show,
		TriggerReason: reason,
	}
}

func (s *Scorer) leadScore(signals Signals) int {
	score := 0

	if signals.TurnCount >= 3 {
		score += s.cfg.TurnDepth3Bonus
	}
	if signals.TurnCount >= 5 {
		score += s.cfg.TurnDepth5Bonus
	}
	if signals.TurnCount >= 7 {
		score += s.cfg.TurnDepth7Bonus
	}

	if signals.PainPointDetected {
		score += s.cfg.PainDetectedBonus
		weight := painpoint.Weight(signals.PrimaryPainCategory)
		if weight >= 2 {
			score += s.cfg.PainWeight2Bonus
		}
		if weight >= 3 {
			score += s.cfg.PainWeight3Bonus
		}
	}

	if lo.Contains(highValueTopics, signals.TopicCategory) {
		score += s.cfg.HighValueTopicBonus
		if signals.TopicCategory == FlagshipTopic {
			score += s.cfg.FlagshipTopicBonus
		}
	}

	if signals.HasExplicitInterest {
		score += s.cfg.ExplicitInterestBonus
	}
	if signals.RepeatTopics {
		score += s.cfg.RepeatTopicBonus
	}

	return helpers.ClampInt(score, 0, 100)
}

func (s *Scorer) stage(score int, signals Signals) Stage {
	if signals.HasExplicitInterest {
		return StageDecision
	}
	switch {
	case score >= s.cfg.DecisionThreshold:
		return StageDecision
	case score >= s.cfg.ConsiderationThreshold:
		return StageConsideration
	case score >= s.cfg.InterestThreshold:
		return StageInterest
	default:
		return StageAwareness
	}
}

// decide evaluates the trigger rules in order; the first match wins.
func (s *Scorer) decide(score int, stage Stage, signals Signals) (bool, TriggerReason) {
	if stage == StageDecision {
		if signals.HasExplicitInterest {
			return true, ReasonExplicitInterest
		}
		return true, ReasonHighEngagement
	}
	if stage == StageConsideration && signals.PainPointDetected {
		return true, ReasonPainInConsideration
	}
	if score >= s.cfg.ShowFormScoreThreshold {
		return true, ReasonThresholdScore
	}
	if lo.Contains(highValueTopics, signals.TopicCategory) && signals.TurnCount >= s.cfg.HighValueMinTurns {
		return true, ReasonHighValueTopic
	}
	return false, ReasonBelowThreshold
}
