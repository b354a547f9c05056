package backend

import (
	"context"

	"github.com/LiboWorks/workflow-wizard/internal/config"
)

// OfflineReply is the completion returned by OfflineBackend. It is not JSON,
// so every stage that receives it takes its fallback path.
const OfflineReply = "offline backend: no language model configured"

// OfflineBackend answers every prompt with OfflineReply. It lets the
// pipeline run end to end without credentials, producing the fallback
// intent, the single-step webhook plan and a permissive validation.
type OfflineBackend struct{}

func NewOfflineBackend() *OfflineBackend { return &OfflineBackend{} }

// Generate implements LLMBackend. It only fails when ctx is done.
func (b *OfflineBackend) Generate(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return OfflineReply, nil
}

func (b *OfflineBackend) Name() string { return config.ProviderOffline }

func (b *OfflineBackend) Close() error { return nil }
