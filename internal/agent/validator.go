package agent

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/LiboWorks/workflow-wizard/internal/backend"
	"github.com/LiboWorks/workflow-wizard/internal/config"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

// Validator asks the model to review a plan for logical, data-flow and
// security problems.
type Validator struct {
	stage
}

func NewValidator(llm backend.LLMBackend, template string, opts ...Option) *Validator {
	return &Validator{stage: newStage(StageValidate, llm, template, config.DefaultValidateTokens, opts)}
}

// validationReply keeps every field raw. Only is_valid decides whether the
// reply is usable; the other fields are read leniently so a shape mismatch
// there can never turn a rejection into a pass.
type validationReply struct {
	IsValid       json.RawMessage `json:"is_valid"`
	Issues        json.RawMessage `json:"issues"`
	Optimizations json.RawMessage `json:"optimizations"`
	Workflow      json.RawMessage `json:"workflow"`
}

// issueReply accepts any JSON value for step_id.
type issueReply struct {
	Severity   string `json:"severity"`
	StepID     any    `json:"step_id"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// Process validates plan. A reply without a boolean verdict degrades to a
// permissive pass; a reply without a usable workflow keeps plan.
func (v *Validator) Process(ctx context.Context, plan workflow.Plan) (workflow.ValidationResult, error) {
	ctx, span := v.start(ctx)
	defer span.End()

	text, err := v.complete(ctx, span, v.template+"\n\nWorkflow Plan:\n"+indentJSON(plan))
	if err != nil {
		return workflow.ValidationResult{}, err
	}

	out := Decode[validationReply](text)
	reply, ok := out.Parsed()
	var verdict bool
	if ok {
		if len(reply.IsValid) == 0 || string(reply.IsValid) == "null" || json.Unmarshal(reply.IsValid, &verdict) != nil {
			ok = false
			out = malformed[validationReply]("reply has no boolean is_valid verdict")
		}
	}
	if !ok {
		v.degrade(span, out.Cause())
		return FallbackValidation(plan), nil
	}

	result := workflow.ValidationResult{
		IsValid:       verdict,
		Issues:        v.readIssues(reply.Issues),
		Optimizations: readStrings(reply.Optimizations),
		Workflow:      plan,
	}
	if corrected, ok := v.readWorkflow(reply.Workflow); ok {
		if corrected.Intent == nil {
			corrected.Intent = plan.Intent
		}
		result.Workflow = corrected
	}
	return result, nil
}

// readIssues decodes each issue on its own. A bare string becomes a warning
// message; any other unreadable entry is dropped.
func (v *Validator) readIssues(raw json.RawMessage) []workflow.Issue {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return []workflow.Issue{}
	}

	issues := make([]workflow.Issue, 0, len(items))
	for _, item := range items {
		var r issueReply
		if err := json.Unmarshal(item, &r); err != nil {
			var msg string
			if json.Unmarshal(item, &msg) == nil && msg != "" {
				issues = append(issues, workflow.Issue{Severity: workflow.SeverityWarning, Message: msg})
				continue
			}
			v.logger.Debug("issue_dropped", "stage", v.name, "issue", preview(string(item)))
			continue
		}
		issues = append(issues, workflow.Issue{
			Severity:   severity(r.Severity),
			StepID:     stepID(r.StepID),
			Message:    r.Message,
			Suggestion: r.Suggestion,
		})
	}
	return issues
}

// readWorkflow returns the model's corrected plan when it decodes and has
// at least one step.
func (v *Validator) readWorkflow(raw json.RawMessage) (workflow.Plan, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return workflow.Plan{}, false
	}
	var p workflow.Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		v.logger.Debug("corrected_workflow_ignored", "stage", v.name, "error", err)
		return workflow.Plan{}, false
	}
	if len(p.Steps) == 0 {
		v.logger.Debug("corrected_workflow_ignored", "stage", v.name, "error", "no steps")
		return workflow.Plan{}, false
	}
	return normalizePlan(p), true
}

func readStrings(raw json.RawMessage) []string {
	var items []any
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func severity(s string) workflow.Severity {
	switch sev := workflow.Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case workflow.SeverityError, workflow.SeverityWarning, workflow.SeverityInfo:
		return sev
	default:
		return workflow.SeverityWarning
	}
}

// stepID reads an integral number or numeric string; anything else is 0.
func stepID(v any) int {
	switch id := v.(type) {
	case float64:
		if id == math.Trunc(id) && math.Abs(id) <= math.MaxInt32 {
			return int(id)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(id)); err == nil {
			return n
		}
	}
	return 0
}

// FallbackValidation passes plan unchanged.
func FallbackValidation(plan workflow.Plan) workflow.ValidationResult {
	return workflow.ValidationResult{
		IsValid:       true,
		Issues:        []workflow.Issue{},
		Optimizations: []string{},
		Workflow:      plan,
	}
}
