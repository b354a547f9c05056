// Package backend defines the completion capability the pipeline stages
// call and the providers that implement it. New providers register a
// Factory under their name; New builds whichever one the config selects.
package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/LiboWorks/workflow-wizard/internal/config"
)

// ErrMissingAPIKey is returned when a hosted provider has no credentials.
var ErrMissingAPIKey = config.ErrMissingAPIKey

// LLMBackend is the interface for language model backends.
// Implementations include Anthropic, OpenAI, local llama.cpp and the
// offline backend.
type LLMBackend interface {
	// Generate produces a completion for the given prompt.
	// model specifies which model to use (interpretation is backend-specific).
	// maxTokens limits the response length (0 means use backend default).
	Generate(ctx context.Context, prompt string, model string, maxTokens int) (string, error)

	// Name returns a human-readable name for the backend.
	Name() string

	// Close releases any resources held by the backend.
	Close() error
}

// Factory builds a backend from configuration.
type Factory func(cfg *config.Config) (LLMBackend, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a provider available to New. Build-tagged providers call
// it from init.
func Register(provider string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[provider] = f
}

// Providers returns the names of all registered providers, sorted.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the backend selected by cfg.Provider.
func New(cfg *config.Config) (LLMBackend, error) {
	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		if cfg.Provider == config.ProviderLlama {
			return nil, fmt.Errorf("provider %q is not compiled in (rebuild with -tags llama)", cfg.Provider)
		}
		return nil, fmt.Errorf("unknown provider %q (available: %v)", cfg.Provider, Providers())
	}
	return f(cfg)
}

func init() {
	Register(config.ProviderAnthropic, func(cfg *config.Config) (LLMBackend, error) {
		return NewAnthropicBackend(AnthropicConfig{
			APIKey:       cfg.Anthropic.APIKey,
			BaseURL:      cfg.Anthropic.BaseURL,
			DefaultModel: cfg.ResolvedModel(),
		})
	})
	Register(config.ProviderOpenAI, func(cfg *config.Config) (LLMBackend, error) {
		return NewOpenAIBackend(OpenAIConfig{
			APIKey:       cfg.OpenAI.APIKey,
			BaseURL:      cfg.OpenAI.BaseURL,
			DefaultModel: cfg.ResolvedModel(),
		})
	})
	Register(config.ProviderOffline, func(*config.Config) (LLMBackend, error) {
		return NewOfflineBackend(), nil
	})
}
