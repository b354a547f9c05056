package agent

import (
	"context"

	"github.com/LiboWorks/workflow-wizard/internal/backend"
	"github.com/LiboWorks/workflow-wizard/internal/config"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

// Planner turns an Intent into an ordered workflow.Plan.
type Planner struct {
	stage
}

func NewPlanner(llm backend.LLMBackend, template string, opts ...Option) *Planner {
	return &Planner{stage: newStage(StagePlan, llm, template, config.DefaultPlanTokens, opts)}
}

// Process builds a plan for intent. The returned plan always carries the
// intent it was built from and at least one step.
func (p *Planner) Process(ctx context.Context, intent workflow.Intent) (workflow.Plan, error) {
	ctx, span := p.start(ctx)
	defer span.End()

	text, err := p.complete(ctx, span, p.template+"\n\nIntent Analysis:\n"+indentJSON(intent))
	if err != nil {
		return workflow.Plan{}, err
	}

	out := Decode[workflow.Plan](text)
	plan, ok := out.Parsed()
	if ok && len(plan.Steps) == 0 {
		ok = false
		out = malformed[workflow.Plan]("plan has no steps")
	}
	if !ok {
		p.degrade(span, out.Cause())
		return FallbackPlan(intent), nil
	}

	plan = normalizePlan(plan)
	attached := intent
	plan.Intent = &attached
	return plan, nil
}

func normalizePlan(p workflow.Plan) workflow.Plan {
	if p.Trigger.Config == nil {
		p.Trigger.Config = map[string]any{}
	}
	p.Steps = nonNil(p.Steps)
	p.ToolsUsed = nonNil(p.ToolsUsed)
	for i := range p.Steps {
		s := &p.Steps[i]
		if s.Config == nil {
			s.Config = map[string]any{}
		}
		s.Inputs = nonNil(s.Inputs)
		s.Outputs = nonNil(s.Outputs)
	}
	return p
}

// FallbackPlan is the single-step webhook plan used when the model's reply
// is malformed.
func FallbackPlan(intent workflow.Intent) workflow.Plan {
	name := intent.Summary
	if name == "" {
		name = "Workflow"
	}
	trigger := intent.TriggerType
	if trigger == "" {
		trigger = workflow.TriggerManual
	}
	tools := make([]string, len(intent.RequiredTools))
	copy(tools, intent.RequiredTools)

	attached := intent
	return workflow.Plan{
		WorkflowName: name,
		Description:  intent.Goal,
		Trigger: workflow.Trigger{
			Type:   trigger,
			Config: map[string]any{},
		},
		Steps: []workflow.Step{{
			StepID:        1,
			Name:          "Execute workflow",
			Tool:          workflow.ToolWebhook,
			Action:        "post",
			Config:        map[string]any{},
			Inputs:        []string{},
			Outputs:       []string{},
			ErrorHandling: workflow.OnErrorFail,
		}},
		ToolsUsed: tools,
		Intent:    &attached,
	}
}
