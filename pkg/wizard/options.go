package wizard

import (
	"log/slog"

	"github.com/LiboWorks/workflow-wizard/internal/config"
	"github.com/LiboWorks/workflow-wizard/internal/pipeline"
)

// Version is the current version of workflow-wizard.
const Version = "1.0.0"

// Options configures a Designer.
type Options struct {
	// config starts as a copy of the global configuration (wizard.yaml
	// plus environment).
	config *config.Config

	// Backend, when set, is used instead of building one from configuration.
	Backend Backend

	Logger   *slog.Logger
	Progress func(Event)
}

// DefaultOptions returns Options seeded from the global configuration.
func DefaultOptions() *Options {
	cfg := *config.Get()
	return &Options{config: &cfg}
}

// Option is a functional option for configuring a Designer.
type Option func(*Options)

// WithProvider selects the backend provider and, if non-empty, the model.
func WithProvider(provider, model string) Option {
	return func(o *Options) {
		o.config.WithProvider(provider, model)
	}
}

// WithAnthropic sets the Anthropic key and optional base URL.
func WithAnthropic(apiKey, baseURL string) Option {
	return func(o *Options) {
		o.config.WithAnthropic(apiKey, baseURL)
	}
}

// WithOpenAI sets the OpenAI key and optional base URL.
func WithOpenAI(apiKey, baseURL string) Option {
	return func(o *Options) {
		o.config.WithOpenAI(apiKey, baseURL, "")
	}
}

// WithLlamaModel sets the GGUF model for the llama provider.
func WithLlamaModel(path string) Option {
	return func(o *Options) {
		o.config.WithLlama(path, 0)
	}
}

// WithPromptsDir loads template overrides from dir.
func WithPromptsDir(dir string) Option {
	return func(o *Options) {
		o.config.WithPrompts(dir)
	}
}

// WithLimits sets per-stage token budgets. Zero keeps the current value.
func WithLimits(intent, plan, validate int) Option {
	return func(o *Options) {
		o.config.WithLimits(intent, plan, validate)
	}
}

// WithBackend uses b for every completion. The caller keeps ownership.
func WithBackend(b Backend) Option {
	return func(o *Options) {
		o.Backend = b
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithProgress registers a callback invoked before and after each stage.
func WithProgress(fn func(Event)) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}

// ApplyOptions applies functional options to DefaultOptions.
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Options) pipelineOptions() []pipeline.Option {
	var opts []pipeline.Option
	if o.Logger != nil {
		opts = append(opts, pipeline.WithLogger(o.Logger))
	}
	if o.Progress != nil {
		opts = append(opts, pipeline.WithProgress(o.Progress))
	}
	return opts
}
