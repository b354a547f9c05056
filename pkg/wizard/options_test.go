package wizard

import (
	"log/slog"
	"testing"

	"github.com/LiboWorks/workflow-wizard/internal/backend"
	"github.com/LiboWorks/workflow-wizard/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	opts := DefaultOptions()

	if opts.config == nil {
		t.Fatal("expected a configuration copy")
	}
	if opts.config == config.Get() {
		t.Error("options must not share the global configuration")
	}
	if opts.Backend != nil {
		t.Error("Backend should be nil by default")
	}
	if opts.Progress != nil {
		t.Error("Progress should be nil by default")
	}
}

func TestWithProvider(t *testing.T) {
	opts := ApplyOptions(WithProvider("OpenAI", "gpt-4o"))

	if opts.config.Provider != config.ProviderOpenAI {
		t.Errorf("expected provider openai, got %s", opts.config.Provider)
	}
	if opts.config.ResolvedModel() != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %s", opts.config.ResolvedModel())
	}
}

func TestWithCredentials(t *testing.T) {
	opts := ApplyOptions(
		WithAnthropic("ak", "https://proxy.example"),
		WithOpenAI("ok", ""),
		WithLlamaModel("/models/q4.gguf"),
	)

	if opts.config.Anthropic.APIKey != "ak" || opts.config.Anthropic.BaseURL != "https://proxy.example" {
		t.Errorf("unexpected anthropic settings %+v", opts.config.Anthropic)
	}
	if opts.config.OpenAI.APIKey != "ok" {
		t.Errorf("expected openai key, got %q", opts.config.OpenAI.APIKey)
	}
	if opts.config.Llama.ModelPath != "/models/q4.gguf" {
		t.Errorf("expected llama model path, got %q", opts.config.Llama.ModelPath)
	}
}

func TestWithLimitsAndPrompts(t *testing.T) {
	opts := ApplyOptions(WithLimits(10, 0, 30), WithPromptsDir("/tmp/prompts"))

	if opts.config.Limits.IntentTokens != 10 || opts.config.Limits.ValidateTokens != 30 {
		t.Errorf("unexpected limits %+v", opts.config.Limits)
	}
	if opts.config.Limits.PlanTokens <= 0 {
		t.Errorf("zero should keep the plan budget, got %d", opts.config.Limits.PlanTokens)
	}
	if opts.config.Prompts.Dir != "/tmp/prompts" {
		t.Errorf("expected prompts dir, got %q", opts.config.Prompts.Dir)
	}
}

func TestOptionsDoNotLeakIntoGlobalConfig(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	before := config.Get().Provider
	ApplyOptions(WithProvider("offline", ""))

	if config.Get().Provider != before {
		t.Errorf("global provider changed to %q", config.Get().Provider)
	}
}

func TestPipelineOptions(t *testing.T) {
	if n := len(ApplyOptions().pipelineOptions()); n != 0 {
		t.Errorf("expected no pipeline options, got %d", n)
	}

	opts := ApplyOptions(
		WithBackend(backend.NewOfflineBackend()),
		WithLogger(slog.Default()),
		WithProgress(func(Event) {}),
	)
	if n := len(opts.pipelineOptions()); n != 2 {
		t.Errorf("expected logger and progress options, got %d", n)
	}
}
