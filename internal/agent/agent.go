// Package agent implements the three model-backed pipeline stages: intent
// extraction, plan building and plan validation. Each stage renders a
// prompt, asks the completion backend once, and decodes the reply. A reply
// that cannot be decoded degrades to a deterministic fallback; only a
// failed completion is returned as an error.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LiboWorks/workflow-wizard/internal/backend"
	"github.com/LiboWorks/workflow-wizard/internal/logging"
	"github.com/LiboWorks/workflow-wizard/internal/telemetry"
)

// Stage names, used in logs, spans and wrapped errors.
const (
	StageIntent   = "intent"
	StagePlan     = "plan"
	StageValidate = "validate"
)

// Option customizes a stage.
type Option func(*stage)

// WithModel sets the model passed to the backend. Empty lets the backend
// choose.
func WithModel(model string) Option {
	return func(s *stage) { s.model = model }
}

// WithMaxTokens overrides the stage's completion budget.
func WithMaxTokens(n int) Option {
	return func(s *stage) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *stage) { s.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *stage) { s.tracer = t }
}

// stage holds what every model-backed stage shares. It is immutable after
// construction, so one stage value can serve concurrent runs.
type stage struct {
	name      string
	llm       backend.LLMBackend
	template  string
	model     string
	maxTokens int
	logger    *slog.Logger
	tracer    trace.Tracer
}

func newStage(name string, llm backend.LLMBackend, template string, maxTokens int, opts []Option) stage {
	s := stage{
		name:      name,
		llm:       llm,
		template:  template,
		maxTokens: maxTokens,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logging.WithModule("agent")
	}
	if s.tracer == nil {
		s.tracer = telemetry.Tracer()
	}
	return s
}

// nolint:spancheck
func (s *stage) start(ctx context.Context) (context.Context, trace.Span) {
	return telemetry.StartSpan(ctx, s.tracer, "agent."+s.name,
		attribute.String(telemetry.StageKey, s.name),
		attribute.String(telemetry.BackendKey, s.llm.Name()),
	)
}

// complete sends prompt to the backend under the stage's budget.
func (s *stage) complete(ctx context.Context, span trace.Span, prompt string) (string, error) {
	text, err := s.llm.Generate(ctx, prompt, s.model, s.maxTokens)
	if err != nil {
		telemetry.SetError(span, err)
		return "", fmt.Errorf("%s: completion: %w", s.name, err)
	}
	return text, nil
}

func (s *stage) degrade(span trace.Span, cause error) {
	span.SetAttributes(attribute.Bool(telemetry.DegradedKey, true))
	s.logger.Warn("stage_degraded", "stage", s.name, "cause", cause)
}

// indentJSON renders v for inclusion in a prompt.
func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
