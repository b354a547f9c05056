// Package wizard provides a public API for workflow-wizard.
//
// It turns a plain-language request into a validated automation workflow
// and exports it as JSON, YAML, n8n, Zapier or a Python script.
//
// Basic usage:
//
//	d, err := wizard.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
//	result, err := d.Design(ctx, "email me the weather every morning", "n8n")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Workflow.WorkflowName)
//
// With options:
//
//	d, err := wizard.New(
//	    wizard.WithProvider("openai", "gpt-4o"),
//	    wizard.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""),
//	)
//
// Exporting a saved plan needs no model at all:
//
//	plans, _ := wizard.LoadPlans("plan.yaml")
//	out := wizard.Export(plans[0], "python")
//	fmt.Println(out.PythonCode)
package wizard

import (
	"context"

	"github.com/LiboWorks/workflow-wizard/internal/backend"
	"github.com/LiboWorks/workflow-wizard/internal/export"
	"github.com/LiboWorks/workflow-wizard/internal/pipeline"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

// Data types shared with the pipeline.
type (
	Intent            = workflow.Intent
	Plan              = workflow.Plan
	Step              = workflow.Step
	Trigger           = workflow.Trigger
	Issue             = workflow.Issue
	ExportResult      = workflow.ExportResult
	Format            = workflow.Format
	Result            = pipeline.Result
	ValidationSummary = pipeline.ValidationSummary
	Event             = pipeline.Event

	// Backend is the completion capability a Designer calls. Supply your
	// own with WithBackend.
	Backend = backend.LLMBackend

	// InvalidWorkflowError carries the rejected plan and the validator's issues.
	InvalidWorkflowError = pipeline.InvalidWorkflowError
)

var (
	// ErrInvalidWorkflow matches any validator rejection via errors.Is.
	ErrInvalidWorkflow = pipeline.ErrInvalidWorkflow

	ErrEmptyDescription = pipeline.ErrEmptyDescription
	ErrMissingAPIKey    = backend.ErrMissingAPIKey
)

// Designer runs the design pipeline against one backend. It is safe for
// concurrent use.
type Designer struct {
	pipeline *pipeline.Pipeline
	llm      Backend
	owned    bool
}

// New builds a Designer. Without WithBackend the backend is created from the
// resolved configuration, which must carry credentials for its provider.
func New(opts ...Option) (*Designer, error) {
	o := ApplyOptions(opts...)

	llm := o.Backend
	owned := false
	if llm == nil {
		if err := o.config.Validate(); err != nil {
			return nil, err
		}
		var err error
		if llm, err = backend.New(o.config); err != nil {
			return nil, err
		}
		owned = true
	}

	p, err := pipeline.New(llm, o.config, o.pipelineOptions()...)
	if err != nil {
		if owned {
			_ = llm.Close()
		}
		return nil, err
	}
	return &Designer{pipeline: p, llm: llm, owned: owned}, nil
}

// Design runs intent extraction, planning, validation and export. A plan the
// validator rejects is returned as an *InvalidWorkflowError.
func (d *Designer) Design(ctx context.Context, description, format string) (*Result, error) {
	return d.pipeline.Run(ctx, description, format)
}

// Validate asks the model to review an existing plan.
func (d *Designer) Validate(ctx context.Context, plan Plan) (*ValidationSummary, error) {
	return d.pipeline.ValidateOnly(ctx, plan)
}

// Export renders plan in format. Unknown formats produce JSON.
func (d *Designer) Export(plan Plan, format string) ExportResult {
	return d.pipeline.Export(plan, format)
}

// Close releases the backend if the Designer created it.
func (d *Designer) Close() error {
	if d.owned {
		return d.llm.Close()
	}
	return nil
}

// Design is a one-shot helper that builds a Designer, runs it once and
// closes it.
func Design(ctx context.Context, description, format string, opts ...Option) (*Result, error) {
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.Design(ctx, description, format)
}

// Export renders plan without any backend.
func Export(plan Plan, format string) ExportResult {
	return export.New().Process(plan, format)
}

// QuickValidate reports whether a decoded plan document has the structure
// every export needs. It never calls a model.
func QuickValidate(doc map[string]any) bool {
	return workflow.QuickValidate(doc)
}

// Lint returns model-free warnings about a plan.
func Lint(plan Plan) []Issue {
	return workflow.Lint(plan)
}

// LoadPlans reads plans from a YAML or JSON file. Multiple YAML documents are
// returned in order.
func LoadPlans(path string) ([]Plan, error) {
	return workflow.LoadPlans(path)
}

// Formats lists the supported export formats.
func Formats() []Format {
	return append([]Format(nil), workflow.Formats...)
}
