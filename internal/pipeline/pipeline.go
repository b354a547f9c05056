// Package pipeline runs the four workflow design stages in order:
// intent extraction, planning, validation and export. The CLI, the HTTP
// API and the MCP server all drive the same Pipeline.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LiboWorks/workflow-wizard/internal/agent"
	"github.com/LiboWorks/workflow-wizard/internal/backend"
	"github.com/LiboWorks/workflow-wizard/internal/config"
	"github.com/LiboWorks/workflow-wizard/internal/export"
	"github.com/LiboWorks/workflow-wizard/internal/logging"
	"github.com/LiboWorks/workflow-wizard/internal/prompts"
	"github.com/LiboWorks/workflow-wizard/internal/telemetry"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

// Stage names in execution order.
const (
	StageExtract  = "extract"
	StagePlan     = "plan"
	StageValidate = "validate"
	StageExport   = "export"
)

// Run is the state of one invocation. Each stage reads what earlier stages
// wrote and adds its own output.
type Run struct {
	ID          string
	Description string
	Format      string

	Intent     workflow.Intent
	Plan       workflow.Plan
	Validation workflow.ValidationResult
	Lint       []workflow.Issue
	Export     workflow.ExportResult
}

// Stage is one step of the pipeline.
type Stage struct {
	Name string
	Do   func(ctx context.Context, run *Run) error
}

// Event reports stage progress to an observer.
type Event struct {
	Stage string
	Done  bool
	Run   *Run
}

// Result is the outcome of a successful run.
type Result struct {
	Success  bool                   `json:"success"`
	Workflow workflow.Plan          `json:"workflow"`
	Message  string                 `json:"message"`
	Export   *workflow.ExportResult `json:"export,omitempty"`
	Intent   *workflow.Intent       `json:"intent,omitempty"`
	Lint     []workflow.Issue       `json:"lint,omitempty"`
	RunID    string                 `json:"run_id"`
}

// ValidationSummary is the outcome of ValidateOnly.
type ValidationSummary struct {
	IsValid       bool             `json:"is_valid"`
	Issues        []workflow.Issue `json:"issues"`
	Optimizations []string         `json:"optimizations"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithClock sets the export timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithProgress registers an observer called before and after each stage.
func WithProgress(fn func(Event)) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithPrompts replaces the templates loaded from configuration.
func WithPrompts(set prompts.Set) Option {
	return func(p *Pipeline) { p.prompts = &set }
}

// Pipeline holds the stages. It keeps no per-run state and is safe for
// concurrent use.
type Pipeline struct {
	intent    *agent.IntentExtractor
	planner   *agent.Planner
	validator *agent.Validator
	exporter  *export.Exporter
	stages    []Stage

	prompts  *prompts.Set
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
	progress func(Event)
}

// New builds a pipeline over llm using the model, budgets and prompt
// templates from cfg.
func New(llm backend.LLMBackend, cfg *config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.WithModule("pipeline")
	}
	if p.tracer == nil {
		p.tracer = telemetry.Tracer()
	}
	if p.prompts == nil {
		set, err := prompts.Load(cfg)
		if err != nil {
			return nil, err
		}
		p.prompts = &set
	}

	agentOpts := func(budget int) []agent.Option {
		return []agent.Option{
			agent.WithModel(cfg.ResolvedModel()),
			agent.WithMaxTokens(budget),
			agent.WithLogger(p.logger),
			agent.WithTracer(p.tracer),
		}
	}
	p.intent = agent.NewIntentExtractor(llm, p.prompts.Intent, agentOpts(cfg.Limits.IntentTokens)...)
	p.planner = agent.NewPlanner(llm, p.prompts.Planner, agentOpts(cfg.Limits.PlanTokens)...)
	p.validator = agent.NewValidator(llm, p.prompts.Validator, agentOpts(cfg.Limits.ValidateTokens)...)
	p.exporter = export.New(export.WithClock(p.now), export.WithLogger(p.logger))

	p.stages = []Stage{
		{Name: StageExtract, Do: p.extract},
		{Name: StagePlan, Do: p.plan},
		{Name: StageValidate, Do: p.validate},
		{Name: StageExport, Do: p.export},
	}
	return p, nil
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

func (p *Pipeline) extract(ctx context.Context, run *Run) error {
	intent, err := p.intent.Process(ctx, run.Description)
	if err != nil {
		return err
	}
	run.Intent = intent
	return nil
}

func (p *Pipeline) plan(ctx context.Context, run *Run) error {
	plan, err := p.planner.Process(ctx, run.Intent)
	if err != nil {
		return err
	}
	run.Plan = plan
	return nil
}

func (p *Pipeline) validate(ctx context.Context, run *Run) error {
	res, err := p.validator.Process(ctx, run.Plan)
	if err != nil {
		return err
	}
	run.Validation = res
	if !res.IsValid {
		return &InvalidWorkflowError{Workflow: res.Workflow, Issues: res.Issues}
	}
	run.Lint = workflow.Lint(res.Workflow)
	for _, is := range run.Lint {
		p.logger.Info("lint_issue", "run_id", run.ID, "severity", is.Severity, "step_id", is.StepID, "message", is.Message)
	}
	return nil
}

func (p *Pipeline) export(_ context.Context, run *Run) error {
	run.Export = p.exporter.Process(run.Validation.Workflow, run.Format)
	return nil
}

// Run designs a workflow from description and exports it as format.
// Unknown formats export as json. A plan the validator rejects stops the
// run with an *InvalidWorkflowError.
func (p *Pipeline) Run(ctx context.Context, description, format string) (*Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	run := &Run{
		ID:          uuid.NewString(),
		Description: description,
		Format:      format,
	}
	logger := p.logger.With("run_id", run.ID)

	ctx, span := telemetry.StartSpan(ctx, p.tracer, "pipeline.run",
		attribute.String(telemetry.RunIDKey, run.ID),
		attribute.String(telemetry.FormatKey, format),
	)
	defer span.End()

	logger.Info("pipeline_start", "format", format, "description_len", len(description))
	started := time.Now()

	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("run canceled before %s: %w", st.Name, err)
			telemetry.SetError(span, err)
			logger.Warn("pipeline_halted", "stage", st.Name, "error", err)
			return nil, err
		}

		p.notify(Event{Stage: st.Name, Run: run})
		stageStart := time.Now()
		if err := st.Do(ctx, run); err != nil {
			telemetry.SetError(span, err, attribute.String(telemetry.StageKey, st.Name))
			logger.Warn("pipeline_halted", "stage", st.Name, "error", err)
			return nil, err
		}
		logger.Debug("stage_done", "stage", st.Name, "duration", time.Since(stageStart))
		p.notify(Event{Stage: st.Name, Done: true, Run: run})
	}

	span.SetAttributes(attribute.String(telemetry.WorkflowNameKey, run.Export.Workflow.WorkflowName))
	logger.Info("pipeline_done",
		"workflow", run.Export.Workflow.WorkflowName,
		"steps", len(run.Export.Workflow.Steps),
		"format", run.Export.Format,
		"duration", time.Since(started),
	)

	intent := run.Intent
	exported := run.Export
	return &Result{
		Success:  true,
		Workflow: exported.Workflow,
		Message:  "Workflow created successfully",
		Export:   &exported,
		Intent:   &intent,
		Lint:     run.Lint,
		RunID:    run.ID,
	}, nil
}

// ValidateOnly runs the model-backed validator over a caller-supplied plan.
func (p *Pipeline) ValidateOnly(ctx context.Context, plan workflow.Plan) (*ValidationSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, p.tracer, "pipeline.validate",
		attribute.String(telemetry.WorkflowNameKey, plan.WorkflowName),
	)
	defer span.End()

	res, err := p.validator.Process(ctx, plan)
	if err != nil {
		telemetry.SetError(span, err)
		return nil, err
	}
	return &ValidationSummary{
		IsValid:       res.IsValid,
		Issues:        res.Issues,
		Optimizations: res.Optimizations,
	}, nil
}

// Export renders plan without any model call.
func (p *Pipeline) Export(plan workflow.Plan, format string) workflow.ExportResult {
	return p.exporter.Process(plan, format)
}

func (p *Pipeline) notify(ev Event) {
	if p.progress != nil {
		p.progress(ev)
	}
}
