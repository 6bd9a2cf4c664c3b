// Package prompts builds the static text layers of the assistant prompt from
// embedded templates.
package prompts

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/profile"
)

//go:embed templates/assistant_system_prompt.tmpl
var assistantSystemPromptTemplate string

//go:embed templates/depth_instruction.tmpl
var depthInstructionTemplate string

//go:embed templates/progressive_quality.tmpl
var progressiveQualityTemplate string

func BuildAssistantSystemPrompt() (string, error) {
	tmpl := template.Must(template.New("assistant_system_prompt").Parse(assistantSystemPromptTemplate))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

type depthInstructionData struct {
	Level string
}

// BuildDepthInstruction renders the answer-depth instruction for the user's
// current experience level.
func BuildDepthInstruction(level profile.ExperienceLevel) (string, error) {
	tmpl, err := template.New("depth_instruction").Parse(depthInstructionTemplate)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, depthInstructionData{Level: string(level)}); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func BuildProgressiveQualityInstruction() string {
	return strings.TrimSpace(progressiveQualityTemplate)
}
