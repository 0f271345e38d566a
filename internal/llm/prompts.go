package llm

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"inkwell/internal/domain"
)

//go:embed prompts.yaml
var promptsFile []byte

// Action selects a prompt template.
type Action string

const (
	ActionContinue  Action = "continue"
	ActionImprove   Action = "improve"
	ActionSummarize Action = "summarize"
	ActionTranslate Action = "translate"
	ActionRewrite   Action = "rewrite"
)

// Actions lists every supported assist action.
var Actions = []Action{ActionContinue, ActionImprove, ActionSummarize, ActionTranslate, ActionRewrite}

// IsValidAction reports whether a is a known assist action.
func IsValidAction(a Action) bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

type actionTemplate struct {
	Template        string `yaml:"template"`
	DefaultLanguage string `yaml:"default_language"`
	DefaultTone     string `yaml:"default_tone"`
}

type promptsConfig struct {
	System  string                    `yaml:"system"`
	Actions map[string]actionTemplate `yaml:"actions"`
}

// PromptRegistry holds the embedded prompt templates keyed by action.
type PromptRegistry struct {
	config promptsConfig
}

// NewPromptRegistry parses the embedded prompt template file.
func NewPromptRegistry() (*PromptRegistry, error) {
	var config promptsConfig
	if err := yaml.Unmarshal(promptsFile, &config); err != nil {
		return nil, fmt.Errorf("unmarshal prompts.yaml: %w", err)
	}
	for _, action := range Actions {
		if _, ok := config.Actions[string(action)]; !ok {
			return nil, fmt.Errorf("prompts.yaml missing action %q", action)
		}
	}
	return &PromptRegistry{config: config}, nil
}

// System returns the shared system prompt.
func (r *PromptRegistry) System() string {
	return r.config.System
}

// Render produces the user prompt for an action. Unknown actions fall
// back to "continue", mirroring the assist contract.
func (r *PromptRegistry) Render(action Action, content, language, tone string) (string, error) {
	tmpl, ok := r.config.Actions[string(action)]
	if !ok {
		tmpl = r.config.Actions[string(ActionContinue)]
	}

	if language == "" {
		language = tmpl.DefaultLanguage
	}
	if tone == "" {
		tone = tmpl.DefaultTone
	}

	prompt := tmpl.Template
	prompt = strings.ReplaceAll(prompt, "{{content}}", content)
	prompt = strings.ReplaceAll(prompt, "{{language}}", language)
	prompt = strings.ReplaceAll(prompt, "{{tone}}", tone)

	if strings.Contains(prompt, "{{") {
		return "", fmt.Errorf("%w: unresolved placeholder in %q template", domain.ErrUpstream, action)
	}
	return prompt, nil
}
