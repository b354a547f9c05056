package agent

import (
	"context"
	"strings"

	"github.com/LiboWorks/workflow-wizard/internal/backend"
	"github.com/LiboWorks/workflow-wizard/internal/config"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

// IntentExtractor turns a free-text request into a workflow.Intent.
type IntentExtractor struct {
	stage
}

func NewIntentExtractor(llm backend.LLMBackend, template string, opts ...Option) *IntentExtractor {
	return &IntentExtractor{stage: newStage(StageIntent, llm, template, config.DefaultIntentTokens, opts)}
}

// Process extracts the intent of input. RawInput is always input verbatim.
func (e *IntentExtractor) Process(ctx context.Context, input string) (workflow.Intent, error) {
	ctx, span := e.start(ctx)
	defer span.End()

	text, err := e.complete(ctx, span, e.template+"\n\nUser Request: "+input)
	if err != nil {
		return workflow.Intent{}, err
	}

	out := Decode[workflow.Intent](text)
	intent, ok := out.Parsed()
	if ok {
		intent = e.normalize(intent)
	} else {
		e.degrade(span, out.Cause())
		intent = FallbackIntent(input)
	}
	intent.RawInput = input
	return intent, nil
}

// normalize coerces enums into range and keeps required_tools to the known
// vocabulary, lowercased and de-duplicated.
func (e *IntentExtractor) normalize(in workflow.Intent) workflow.Intent {
	if !in.TriggerType.Valid() {
		in.TriggerType = workflow.TriggerManual
	}
	if !in.Complexity.Valid() {
		in.Complexity = workflow.ComplexityModerate
	}

	tools := make([]string, 0, len(in.RequiredTools))
	seen := make(map[string]bool, len(in.RequiredTools))
	for _, t := range in.RequiredTools {
		name := strings.ToLower(strings.TrimSpace(t))
		if !workflow.KnownTool(name) {
			e.logger.Debug("tool_dropped", "stage", e.name, "tool", t)
			continue
		}
		if !seen[name] {
			seen[name] = true
			tools = append(tools, name)
		}
	}
	in.RequiredTools = tools

	in.DataSources = nonNil(in.DataSources)
	in.DataDestinations = nonNil(in.DataDestinations)
	in.KeyActions = nonNil(in.KeyActions)
	return in
}

// FallbackIntent is the intent used when the model's reply is malformed.
func FallbackIntent(input string) workflow.Intent {
	return workflow.Intent{
		Goal:             input,
		Summary:          input,
		TriggerType:      workflow.TriggerManual,
		TriggerDetails:   "",
		DataSources:      []string{},
		DataDestinations: []string{},
		RequiredTools:    []string{},
		KeyActions:       []string{input},
		Complexity:       workflow.ComplexityModerate,
		RawInput:         input,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
