// Package export renders a validated plan into the supported target
// formats. Fields missing from a plan render as empty placeholders. A
// renderer error is logged and leaves that format's payload empty; the
// envelope is still returned.
package export

import (
	"log/slog"
	"sync"
	"time"

	"github.com/LiboWorks/workflow-wizard/internal/logging"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

// RenderFunc fills the format-specific payload of out from plan. On error
// the payload must be left unset.
type RenderFunc func(plan workflow.Plan, out *workflow.ExportResult) error

var (
	renderersMu sync.RWMutex
	renderers   = map[workflow.Format]RenderFunc{
		workflow.FormatJSON:   renderJSON,
		workflow.FormatYAML:   renderYAML,
		workflow.FormatN8N:    renderN8N,
		workflow.FormatZapier: renderZapier,
		workflow.FormatPython: renderPython,
	}
)

// Register installs or replaces the renderer for format.
func Register(format workflow.Format, r RenderFunc) {
	renderersMu.Lock()
	defer renderersMu.Unlock()
	renderers[format] = r
}

func lookup(format workflow.Format) (RenderFunc, bool) {
	renderersMu.RLock()
	defer renderersMu.RUnlock()
	r, ok := renderers[format]
	return r, ok
}

// Exporter stamps and renders export results.
type Exporter struct {
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock sets the source of export timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

func New(opts ...Option) *Exporter {
	e := &Exporter{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.WithModule("export")
	}
	return e
}

// Process renders plan as format. Unrecognized formats are rendered as
// json, and the result reports json as its format.
func (e *Exporter) Process(plan workflow.Plan, format string) workflow.ExportResult {
	f, ok := workflow.ParseFormat(format)
	render, found := lookup(f)
	if !ok || !found {
		e.logger.Debug("export_format_defaulted", "requested", format, "format", workflow.FormatJSON)
		f = workflow.FormatJSON
		render = renderJSON
	}

	out := workflow.ExportResult{
		Format:     f,
		Workflow:   plan,
		ExportTime: e.now().Format(time.RFC3339),
	}
	if err := render(plan, &out); err != nil {
		e.logger.Warn("export_render_failed", "format", f, "workflow", plan.WorkflowName, "error", err)
	}
	return out
}

// renderJSON adds nothing: the envelope is the json export.
func renderJSON(workflow.Plan, *workflow.ExportResult) error { return nil }

func workflowName(p workflow.Plan) string {
	if p.WorkflowName == "" {
		return "Workflow"
	}
	return p.WorkflowName
}

func stepConfig(s workflow.Step) map[string]any {
	if s.Config == nil {
		return map[string]any{}
	}
	return s.Config
}
