package testing

import (
	"testing"

	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

// PlanAssertions provides fluent assertions over a plan.
type PlanAssertions struct {
	t    *testing.T
	plan workflow.Plan
}

// ExpectPlan starts an assertion chain.
func ExpectPlan(t *testing.T, plan workflow.Plan) *PlanAssertions {
	return &PlanAssertions{t: t, plan: plan}
}

// Named asserts the workflow name.
func (a *PlanAssertions) Named(expected string) *PlanAssertions {
	a.t.Helper()
	if a.plan.WorkflowName != expected {
		a.t.Errorf("workflow_name = %q, expected %q", a.plan.WorkflowName, expected)
	}
	return a
}

// StepCount asserts the number of steps.
func (a *PlanAssertions) StepCount(expected int) *PlanAssertions {
	a.t.Helper()
	if len(a.plan.Steps) != expected {
		a.t.Errorf("expected %d steps, got %d", expected, len(a.plan.Steps))
	}
	return a
}

// UsesTools asserts tools_used equals expected, in order.
func (a *PlanAssertions) UsesTools(expected ...string) *PlanAssertions {
	a.t.Helper()
	if len(a.plan.ToolsUsed) != len(expected) {
		a.t.Errorf("tools_used = %v, expected %v", a.plan.ToolsUsed, expected)
		return a
	}
	for i := range expected {
		if a.plan.ToolsUsed[i] != expected[i] {
			a.t.Errorf("tools_used = %v, expected %v", a.plan.ToolsUsed, expected)
			return a
		}
	}
	return a
}

// PassesQuickValidate asserts the structural pre-flight accepts the plan.
func (a *PlanAssertions) PassesQuickValidate() *PlanAssertions {
	a.t.Helper()
	if !a.plan.QuickValidate() {
		a.t.Errorf("plan %q fails QuickValidate", a.plan.WorkflowName)
	}
	return a
}

// IsWebhookFallback asserts the plan is the single-step fallback.
func (a *PlanAssertions) IsWebhookFallback() *PlanAssertions {
	a.t.Helper()
	if len(a.plan.Steps) != 1 {
		a.t.Errorf("fallback plan should have exactly one step, got %d", len(a.plan.Steps))
		return a
	}
	s := a.plan.Steps[0]
	if s.StepID != 1 || s.Name != "Execute workflow" || s.Tool != workflow.ToolWebhook ||
		s.Action != "post" || s.ErrorHandling != workflow.OnErrorFail {
		a.t.Errorf("unexpected fallback step %+v", s)
	}
	if len(s.Config) != 0 || len(s.Inputs) != 0 || len(s.Outputs) != 0 {
		a.t.Errorf("fallback step should carry empty config/inputs/outputs, got %+v", s)
	}
	return a
}

// HasIntent asserts the plan links back to an intent with the given raw input.
func (a *PlanAssertions) HasIntent(rawInput string) *PlanAssertions {
	a.t.Helper()
	if a.plan.Intent == nil {
		a.t.Errorf("plan has no intent attached")
		return a
	}
	if a.plan.Intent.RawInput != rawInput {
		a.t.Errorf("intent raw_input = %q, expected %q", a.plan.Intent.RawInput, rawInput)
	}
	return a
}
