package workflow

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/xeipuuv/gojsonschema"
)

// planShape is the minimum structure every plan document must have before it
// can be exported: a name, a tool list and at least one step carrying an id,
// a tool and an action.
var planShape = map[string]any{
	"type":     "object",
	"required": []any{"workflow_name", "steps", "tools_used"},
	"properties": map[string]any{
		"steps": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"step_id", "tool", "action"},
			},
		},
	},
}

var planSchema = mustSchema(planShape)

func mustSchema(shape map[string]any) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(shape))
	if err != nil {
		panic(fmt.Sprintf("workflow: invalid plan schema: %v", err))
	}
	return s
}

// StructuralErrors checks a decoded plan document against the plan shape and
// returns one message per violation. A nil document is reported as missing.
func StructuralErrors(doc map[string]any) []string {
	if doc == nil {
		return []string{"workflow document is missing"}
	}
	result, err := planSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}
	var errs []string
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs
}

// QuickValidate is the model-free pre-flight check. It returns false when
// workflow_name, steps or tools_used is absent, when steps is empty, or when
// any step lacks step_id, tool or action.
func QuickValidate(doc map[string]any) bool {
	return len(StructuralErrors(doc)) == 0
}

// QuickValidate applies the pre-flight rule to a typed plan. Zero values
// count as absent since a decoded struct cannot tell the two apart.
func (p Plan) QuickValidate() bool {
	if p.WorkflowName == "" || p.ToolsUsed == nil || len(p.Steps) == 0 {
		return false
	}
	for _, s := range p.Steps {
		if s.StepID == 0 || s.Tool == "" || s.Action == "" {
			return false
		}
	}
	return true
}

// Lint reports soundness problems that need no model: duplicate or
// non-positive step ids, tools_used entries no step uses, tools outside the
// vocabulary and unparseable schedule expressions. Lint never decides
// validity; its findings are advisory.
func Lint(p Plan) []Issue {
	var issues []Issue

	seen := make(map[int]bool, len(p.Steps))
	used := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		if s.StepID <= 0 {
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				StepID:     s.StepID,
				Message:    fmt.Sprintf("step %q has non-positive step_id %d", s.Name, s.StepID),
				Suggestion: "Number steps from 1 in execution order.",
			})
		} else if seen[s.StepID] {
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				StepID:     s.StepID,
				Message:    fmt.Sprintf("step_id %d is used more than once", s.StepID),
				Suggestion: "Give every step a unique step_id.",
			})
		}
		seen[s.StepID] = true

		tool := strings.ToLower(s.Tool)
		used[tool] = true
		if tool != "" && !KnownTool(tool) {
			issues = append(issues, Issue{
				Severity:   SeverityInfo,
				StepID:     s.StepID,
				Message:    fmt.Sprintf("tool %q is outside the known vocabulary", s.Tool),
				Suggestion: "Exports map it to a generic function/code node.",
			})
		}
	}

	for _, t := range p.ToolsUsed {
		if !used[strings.ToLower(t)] {
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("tools_used lists %q but no step uses it", t),
				Suggestion: "Remove it from tools_used or add a step that uses it.",
			})
		}
	}

	if p.Trigger.Type == TriggerSchedule {
		issues = append(issues, lintSchedule(p.Trigger.Config)...)
	}
	return issues
}

func lintSchedule(cfg map[string]any) []Issue {
	raw, ok := cfg["cron"]
	if !ok {
		return []Issue{{
			Severity:   SeverityInfo,
			Message:    "schedule trigger has no cron expression",
			Suggestion: `Add a "cron" entry such as "0 8 * * *" to the trigger config.`,
		}}
	}
	expr, _ := raw.(string)
	if _, err := cron.ParseStandard(expr); err != nil {
		return []Issue{{
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("schedule trigger cron %q does not parse: %v", expr, err),
			Suggestion: "Use a standard five-field cron expression.",
		}}
	}
	return nil
}
