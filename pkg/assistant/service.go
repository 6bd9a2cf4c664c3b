// Package assistant orchestrates one conversation turn: it runs the signal
// extractors over the incoming message, gathers knowledge and search context,
// assembles the final prompt under budget, and produces the lead decision.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/contextbuilder"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/insight"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/painpoint"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/profile"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/salesbridge"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/searchctx"
	"github.com/neuraltwin/assistant-engine/pkg/helpers"
	"github.com/neuraltwin/assistant-engine/pkg/knowledge"
	"github.com/neuraltwin/assistant-engine/pkg/prompts"
	"github.com/neuraltwin/assistant-engine/pkg/session"
)

// TurnInput is one incoming user message with its session context.
type TurnInput struct {
	SessionID string          `json:"sessionId"`
	Message   string          `json:"message"`
	Topic     profile.TopicID `json:"topic,omitempty"`
	// History holds recent prior user messages, newest last.
	History []string `json:"history,omitempty"`
	// AdvancedDepth is the caller's depth classification of the message.
	AdvancedDepth bool `json:"advancedDepth,omitempty"`
}

// TurnOutput is everything one turn produces: the assembled prompt with its
// budget accounting, the lead decision, and the updated session state.
type TurnOutput struct {
	SessionID       string                 `json:"sessionId"`
	Turn            int                    `json:"turn"`
	Context         contextbuilder.Result  `json:"context"`
	Lead            salesbridge.Result     `json:"lead"`
	PainPoint       painpoint.Result       `json:"painPoint"`
	Profile         profile.Profile        `json:"profile"`
	Insights        []insight.Insight      `json:"insights"`
	KnowledgeMethod knowledge.SearchMethod `json:"knowledgeMethod,omitempty"`
}

// SessionStore supplies prior session state and persists the updated copy.
type SessionStore interface {
	GetOrCreate(ctx context.Context, id string) (*session.Session, error)
	Save(ctx context.Context, s *session.Session) error
}

// KnowledgeRetriever fetches internal knowledge for the query.
type KnowledgeRetriever interface {
	Retrieve(ctx context.Context, query string, filters knowledge.Filters, limit int) (knowledge.Result, error)
}

// Searcher fans the query out to external search providers.
type Searcher interface {
	Search(ctx context.Context, query string) []searchctx.SourceResults
}

// LeadEventSubject prefixes the NATS subject lead events publish to; the
// session ID is appended.
const LeadEventSubject = "assistant.lead."

// LeadEvent is the payload published when a turn decides to show the lead form.
type LeadEvent struct {
	SessionID     string                    `json:"sessionId"`
	Turn          int                       `json:"turn"`
	LeadScore     int                       `json:"leadScore"`
	Stage         salesbridge.Stage         `json:"stage"`
	TriggerReason salesbridge.TriggerReason `json:"triggerReason"`
	CreatedAt     string                    `json:"createdAt"`
}

type Service struct {
	logger    *log.Logger
	store     SessionStore
	retriever KnowledgeRetriever
	searcher  Searcher
	nc        *nats.Conn

	profileExtractor *profile.Extractor
	painExtractor    *painpoint.Extractor
	scorer           *salesbridge.Scorer
	assembler        *contextbuilder.Assembler
}

// NewService wires the turn pipeline. retriever, searcher, and nc may be nil;
// the corresponding context layers and events are then skipped.
func NewService(logger *log.Logger, store SessionStore, retriever KnowledgeRetriever, searcher Searcher, nc *nats.Conn) *Service {
	return &Service{
		logger:           logger,
		store:            store,
		retriever:        retriever,
		searcher:         searcher,
		nc:               nc,
		profileExtractor: profile.NewExtractor(),
		painExtractor:    painpoint.NewExtractor(),
		scorer:           salesbridge.NewScorer(),
		assembler:        contextbuilder.NewAssembler(),
	}
}

// ProcessTurn runs the full pipeline for one message and persists the updated
// session. Extraction and scoring are deterministic; only the knowledge and
// search collaborators touch the network, and both degrade instead of failing
// the turn.
func (s *Service) ProcessTurn(ctx context.Context, input TurnInput) (*TurnOutput, error) {
	sess, err := s.store.GetOrCreate(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	turn := sess.TurnCount + 1

	painResult := s.painExtractor.Extract(input.Message, input.History)

	prior := sess.Profile
	if painResult.PrimaryPain != nil {
		prior.AddPainPoint(*painResult.PrimaryPain)
	}
	prof := s.profileExtractor.Update(prior, input.Message, input.Topic, profile.ExperienceSignals{
		AdvancedDepth: input.AdvancedDepth,
		TurnCount:     turn,
	})

	repeatTopic := input.Topic != "" && hasTopic(sess.Insights, input.Topic)
	insights := insight.Accumulate(sess.Insights, turn, input.Topic, input.Message, nil, time.Now().UTC())

	knowledgeBlock, method := s.retrieveKnowledge(ctx, input.Message, prof)
	searchBlock := s.buildSearchContext(ctx, input.Message)

	lead := s.scorer.Score(salesbridge.Signals{
		TurnCount:           turn,
		PainPointDetected:   painResult.PrimaryPain != nil,
		PrimaryPainCategory: primaryCategory(painResult),
		TopicCategory:       input.Topic,
		HasExplicitInterest: salesbridge.HasExplicitInterest(input.Message),
		RepeatTopics:        repeatTopic,
	})

	layers, err := s.buildLayers(prof, insights, knowledgeBlock, searchBlock)
	if err != nil {
		return nil, err
	}
	assembled := s.assembler.Assemble(input.Message, layers)

	sess.TurnCount = turn
	sess.Profile = prof
	sess.Insights = insights
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	if lead.ShowLeadForm {
		s.publishLeadEvent(input.SessionID, turn, lead)
	}

	s.logger.Info("Processed turn",
		"session_id", input.SessionID,
		"turn", turn,
		"tokens", assembled.TokenEstimate,
		"truncated", assembled.Truncated,
		"lead_score", lead.LeadScore,
		"stage", string(lead.Stage))

	return &TurnOutput{
		SessionID:       input.SessionID,
		Turn:            turn,
		Context:         assembled,
		Lead:            lead,
		PainPoint:       painResult,
		Profile:         prof,
		Insights:        insights,
		KnowledgeMethod: method,
	}, nil
}

func (s *Service) retrieveKnowledge(ctx context.Context, query string, prof profile.Profile) (string, knowledge.SearchMethod) {
	if s.retriever == nil {
		return "", ""
	}
	result, err := s.retriever.Retrieve(ctx, query, knowledge.Filters{Industry: prof.Industry}, 0)
	if err != nil {
		s.logger.Warn("Knowledge retrieval failed, continuing without knowledge layer", "error", err)
		return "", ""
	}
	return knowledge.FormatContext(result), result.SearchMethod
}

func (s *Service) buildSearchContext(ctx context.Context, query string) string {
	if s.searcher == nil {
		return ""
	}
	sources := s.searcher.Search(ctx, query)
	if len(sources) == 0 {
		return ""
	}

	filtered := searchctx.Filter(query, sources)
	verified := searchctx.CrossVerify(filtered)
	facts := searchctx.ExtractFacts(filtered, verified)

	blocks := make([]string, 0, 3)
	if block := searchctx.RenderContext(filtered); block != "" {
		blocks = append(blocks, block)
	}
	if block := searchctx.RenderVerification(verified); block != "" {
		blocks = append(blocks, block)
	}
	if block := searchctx.RenderFacts(facts); block != "" {
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

func (s *Service) buildLayers(prof profile.Profile, insights []insight.Insight, knowledgeBlock, searchBlock string) (contextbuilder.Layers, error) {
	base, err := prompts.BuildAssistantSystemPrompt()
	if err != nil {
		return contextbuilder.Layers{}, err
	}
	depth, err := prompts.BuildDepthInstruction(prof.ExperienceLevel)
	if err != nil {
		return contextbuilder.Layers{}, err
	}
	return contextbuilder.Layers{
		BaseSystem:         base,
		Knowledge:          knowledgeBlock,
		Profile:            prof.FormatForPrompt(),
		Insights:           insight.FormatForPrompt(insights),
		SearchContext:      searchBlock,
		DepthInstruction:   depth,
		ProgressiveQuality: prompts.BuildProgressiveQualityInstruction(),
	}, nil
}

func (s *Service) publishLeadEvent(sessionID string, turn int, lead salesbridge.Result) {
	if s.nc == nil {
		return
	}
	event := LeadEvent{
		SessionID:     sessionID,
		Turn:          turn,
		LeadScore:     lead.LeadScore,
		Stage:         lead.Stage,
		TriggerReason: lead.TriggerReason,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := helpers.NatsPublish(s.nc, LeadEventSubject+sessionID, event); err != nil {
		s.logger.Error("Failed to publish lead event", "session_id", sessionID, "error", err)
	}
}

func hasTopic(insights []insight.Insight, topic profile.TopicID) bool {
	for _, entry := range insights {
		if entry.TopicID == topic {
			return true
		}
	}
	return false
}

func primaryCategory(result painpoint.Result) painpoint.Category {
	if result.PrimaryPain == nil {
		return ""
	}
	return *result.PrimaryPain
}
