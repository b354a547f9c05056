package testing

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a testify mock satisfying backend.LLMBackend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Generate(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
	args := m.Called(ctx, prompt, model, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Close() error { return nil }

// Reply is one scripted completion.
type Reply struct {
	Text string
	Err  error
}

// ScriptedBackend returns its replies in order, one per Generate call, and
// records every prompt and budget it was given. Calls beyond the script
// repeat the last reply.
type ScriptedBackend struct {
	mu      sync.Mutex
	replies []Reply
	Prompts []string
	Budgets []int
}

// NewScriptedBackend scripts successful completions.
func NewScriptedBackend(texts ...string) *ScriptedBackend {
	b := &ScriptedBackend{}
	for _, t := range texts {
		b.replies = append(b.replies, Reply{Text: t})
	}
	return b
}

// Then appends a reply, which may be an error.
func (b *ScriptedBackend) Then(r Reply) *ScriptedBackend {
	b.replies = append(b.replies, r)
	return b
}

func (b *ScriptedBackend) Generate(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.Prompts = append(b.Prompts, prompt)
	b.Budgets = append(b.Budgets, maxTokens)
	if len(b.replies) == 0 {
		return "", nil
	}
	i := len(b.Prompts) - 1
	if i >= len(b.replies) {
		i = len(b.replies) - 1
	}
	r := b.replies[i]
	return r.Text, r.Err
}

// Calls returns how many completions were requested.
func (b *ScriptedBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Prompts)
}

func (b *ScriptedBackend) Name() string { return "scripted" }

func (b *ScriptedBackend) Close() error { return nil }
