package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/LiboWorks/workflow-wizard/internal/config"
)

// AnthropicBackend implements LLMBackend against the Anthropic Messages API.
type AnthropicBackend struct {
	client       anthropic.Client
	http         *http.Client
	defaultModel string
}

// AnthropicConfig holds configuration for the Anthropic backend.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	// HTTPClient overrides the default client (60s timeout).
	HTTPClient *http.Client
}

// NewAnthropicBackend creates a new Anthropic backend.
func NewAnthropicBackend(cfg AnthropicConfig) (*AnthropicBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w (set ANTHROPIC_API_KEY or pass in config)", ErrMissingAPIKey)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultAnthropicBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	defaultModel := cfg.DefaultModel
	if defaultModel == "" {
		defaultModel = config.DefaultAnthropicModel
	}

	return &AnthropicBackend{
		client: anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(baseURL+"/"),
			option.WithHTTPClient(hc),
		),
		http:         hc,
		defaultModel: defaultModel,
	}, nil
}

// Generate implements LLMBackend. The completion is the concatenation of
// the response's text blocks.
func (b *AnthropicBackend) Generate(ctx context.Context, prompt string, model string, maxTokens int) (string, error) {
	if model == "" {
		model = b.defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = config.DefaultIntentTokens
	}

	msg, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	var text strings.Builder
	for _, blk := range msg.Content {
		if blk.Type == "text" {
			text.WriteString(blk.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("anthropic returned no text content")
	}
	return text.String(), nil
}

// Name implements LLMBackend.
func (b *AnthropicBackend) Name() string {
	return config.ProviderAnthropic
}

// Close implements LLMBackend.
func (b *AnthropicBackend) Close() error {
	b.http.CloseIdleConnections()
	return nil
}
