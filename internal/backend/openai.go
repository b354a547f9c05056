package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/LiboWorks/workflow-wizard/internal/config"
)

// OpenAIBackend implements LLMBackend using the OpenAI chat completions API
// or any compatible endpoint.
type OpenAIBackend struct {
	client       *openai.Client
	defaultModel string
}

// OpenAIConfig holds configuration for the OpenAI backend. Empty fields
// fall back to the global configuration.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string // Optional: for Azure or compatible APIs
	DefaultModel string
}

// NewOpenAIBackend creates a new OpenAI backend.
func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	globalCfg := config.Get()

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = globalCfg.OpenAI.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY or pass in config)", ErrMissingAPIKey)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = globalCfg.OpenAI.BaseURL
	}
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	defaultModel := cfg.DefaultModel
	if defaultModel == "" {
		defaultModel = globalCfg.OpenAI.Model
	}

	return &OpenAIBackend{
		client:       openai.NewClientWithConfig(clientCfg),
		defaultModel: defaultModel,
	}, nil
}

// Generate implements LLMBackend. A non-positive budget falls back to the
// intent stage default.
func (b *OpenAIBackend) Generate(ctx context.Context, prompt string, model string, maxTokens int) (string, error) {
	if model == "" {
		model = b.defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = config.DefaultIntentTokens
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai completion failed: status %d: %w", apiErr.HTTPStatusCode, err)
		}
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	choice := resp.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", fmt.Errorf("openai returned an empty completion (finish_reason %q)", choice.FinishReason)
	}
	return choice.Message.Content, nil
}

// Name implements LLMBackend.
func (b *OpenAIBackend) Name() string {
	return config.ProviderOpenAI
}

// Close implements LLMBackend.
func (b *OpenAIBackend) Close() error {
	return nil
}
