// Package contextbuilder linearizes the independently produced text blocks of
// one turn into the final system prompt. Layers are stacked in a fixed priority
// order under a token ceiling; lower-priority layers are trimmed or dropped,
// never the other way around.
package contextbuilder

import (
	"regexp"
	"strings"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/tokens"
)

// Layer names reported in Result.LayersIncluded, in priority order.
const (
	LayerBase               = "base"
	LayerKnowledge          = "knowledge"
	LayerProfile            = "profile"
	LayerInsights           = "insights"
	LayerSearchContext      = "search_context"
	LayerDepthInstruction   = "depth_instruction"
	LayerProgressiveQuality = "progressive_quality"
)

// Layers carries the candidate text blocks for one prompt. Empty strings are
// absent layers; the profile and insight formatters already encode their own
// emit-or-not rules, so the assembler only checks for emptiness.
type Layers struct {
	BaseSystem         string
	Knowledge          string
	Profile            string
	Insights           string
	SearchContext      string
	DepthInstruction   string
	ProgressiveQuality string
}

// Result is the assembled prompt plus the accounting the caller and the tests
// need: which layers made it in, the token estimate the budget decisions were
// based on, and whether anything optional was shortened or dropped.
type Result struct {
	FinalPrompt    string   `json:"finalPrompt"`
	TokenEstimate  int      `json:"tokenEstimate"`
	LayersIncluded []string `json:"layersIncluded"`
	Truncated      bool     `json:"truncated"`
}

// Config holds the assembly budget policy.
type Config struct {
	// TokenCeiling bounds the assembled prompt.
	TokenCeiling int
	// ProgressiveQualitySlack is the extra allowance granted only to the
	// progressive-quality instruction on top of the ceiling.
	ProgressiveQualitySlack int
	// SearchMaxTokens caps the search/fact layer even when budget remains.
	SearchMaxTokens int
	// SearchMinTokens is the smallest trimmed search layer worth keeping;
	// below it the layer is dropped outright.
	SearchMinTokens int
}

func DefaultConfig() Config {
	return Config{
		TokenCeiling:            10000,
		ProgressiveQualitySlack: 500,
		SearchMaxTokens:         1500,
		SearchMinTokens:         200,
	}
}

// referenceQueryPattern marks queries asking for references, case studies, or
// benchmarks, where fresh external evidence outranks the internal knowledge
// base.
var referenceQueryPattern = regexp.MustCompile(`(?i)(레퍼런스|사례|benchmark)`)

// IsReferenceQuery reports whether the query asks for external references.
func IsReferenceQuery(query string) bool {
	return referenceQueryPattern.MatchString(query)
}

const referenceAnnotation = "[아래 외부 검색 결과는 검증된 레퍼런스로, 내부 지식보다 우선 참고할 것]"

type Assembler struct {
	cfg       Config
	estimator tokens.Estimator
}

func NewAssembler() *Assembler {
	return &Assembler{cfg: DefaultConfig(), estimator: tokens.NewEstimator()}
}

func NewAssemblerWithConfig(cfg Config, estimator tokens.Estimator) *Assembler {
	return &Assembler{cfg: cfg, estimator: estimator}
}

type block struct {
	name string
	text string
}

// Assemble stacks the layers in priority order under the token ceiling.
// The base layer is unconditional. Knowledge, profile, and insight layers are
// included in full whenever present. The search layer is trimmed to what the
// budget allows, or dropped when too little budget remains to be useful. The
// depth instruction must fit under the ceiling; the progressive-quality
// instruction alone may use the extra slack.
func (a *Assembler) Assemble(query string, layers Layers) Result {
	var blocks []block
	used := 0
	truncated := false

	add := func(name, text string) {
		blocks = append(blocks, block{name: name, text: text})
		used += a.estimator.Estimate(text)
	}

	add(LayerBase, layers.BaseSystem)
	if layers.Knowledge != "" {
		add(LayerKnowledge, layers.Knowledge)
	}
	if layers.Profile != "" {
		add(LayerProfile, layers.Profile)
	}
	if layers.Insights != "" {
		add(LayerInsights, layers.Insights)
	}

	if layers.SearchContext != "" {
		search := layers.SearchContext
		if IsReferenceQuery(query) {
			search = referenceAnnotation + "\n" + search
		}
		cost := a.estimator.Estimate(search)
		remaining := a.cfg.TokenCeiling - used
		budget := min(remaining, a.cfg.SearchMaxTokens)
		switch {
		case cost <= budget:
			add(LayerSearchContext, search)
		case budget >= a.cfg.SearchMinTokens:
			truncated = true
			if trimmed := a.estimator.TrimToBudget(search, budget); trimmed != "" {
				add(LayerSearchContext, trimmed)
			}
		default:
			truncated = true
		}
	}

	if layers.DepthInstruction != "" {
		if used+a.estimator.Estimate(layers.DepthInstruction) <= a.cfg.TokenCeiling {
			add(LayerDepthInstruction, layers.DepthInstruction)
		} else {
			truncated = true
		}
	}
	if layers.ProgressiveQuality != "" {
		if used+a.estimator.Estimate(layers.ProgressiveQuality) <= a.cfg.TokenCeiling+a.cfg.ProgressiveQualitySlack {
			add(LayerProgressiveQuality, layers.ProgressiveQuality)
		} else {
			truncated = true
		}
	}

	if IsReferenceQuery(query) {
		blocks = promoteSearchBlock(blocks)
	}

	names := make([]string, 0, len(blocks))
	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		names = append(names, b.name)
		texts = append(texts, b.text)
	}
	return Result{
		FinalPrompt:    strings.Join(texts, "\n\n"),
		TokenEstimate:  used,
		LayersIncluded: names,
		Truncated:      truncated,
	}
}

// promoteSearchBlock moves the search layer ahead of the knowledge layer in
// reading order. Budget accounting is unaffected; only the rendered order and
// LayersIncluded change.
func promoteSearchBlock(blocks []block) []block {
	searchIdx, knowledgeIdx := -1, -1
	for i, b := range blocks {
		switch b.name {
		case LayerSearchContext:
			searchIdx = i
		case LayerKnowledge:
			knowledgeIdx = i
		}
	}
	if searchIdx < 0 || knowledgeIdx < 0 || searchIdx < knowledgeIdx {
		return blocks
	}
	search := blocks[searchIdx]
	reordered := make([]block, 0, len(blocks))
	for i, b := range blocks {
		if i == searchIdx {
			continue
		}
		if i == knowledgeIdx {
			reordered = append(reordered, search)
		}
		reordered = append(reordered, b)
	}
	return reordered
}
