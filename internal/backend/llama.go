//go:build llama

package backend

// This file is included only when building with `-tags llama`, which needs
// the go-llama.cpp binding library built locally (see its README).

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"github.com/LiboWorks/workflow-wizard/internal/config"
)

const defaultLlamaContext = 4096

// LlamaBackend implements LLMBackend using local llama.cpp inference on a
// GGUF model file.
type LlamaBackend struct {
	mu      sync.Mutex
	models  map[string]*llama.LLama
	threads int
}

// NewLlamaBackend creates a new local llama backend.
func NewLlamaBackend(threads int) *LlamaBackend {
	if threads <= 0 {
		threads = config.DefaultLlamaThreads
	}
	return &LlamaBackend{
		models:  make(map[string]*llama.LLama),
		threads: threads,
	}
}

func init() {
	Register(config.ProviderLlama, func(cfg *config.Config) (LLMBackend, error) {
		if cfg.Llama.ModelPath == "" {
			return nil, errors.New("llama: model path is required (set llama.model_path)")
		}
		return NewLlamaBackend(cfg.Llama.Threads), nil
	})
}

// loadModel loads and caches a model by absolute path. Callers hold b.mu.
func (b *LlamaBackend) loadModel(modelPath string) (*llama.LLama, error) {
	abs, err := filepath.Abs(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model path: %w", err)
	}
	if m, ok := b.models[abs]; ok {
		return m, nil
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("model file not found: %s", abs)
	}

	m, err := llama.New(abs, llama.SetContext(defaultLlamaContext))
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", abs, err)
	}
	b.models[abs] = m
	return m, nil
}

// Generate implements LLMBackend. model is the GGUF path. Predictions are
// serialized because the binding is not safe for concurrent use.
func (b *LlamaBackend) Generate(ctx context.Context, prompt string, model string, maxTokens int) (string, error) {
	if model == "" {
		return "", errors.New("model path is required for llama backend")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	m, err := b.loadModel(model)
	if err != nil {
		return "", err
	}

	opts := []llama.PredictOption{
		llama.SetThreads(b.threads),
		llama.SetTopK(40),
		llama.SetTopP(0.9),
		llama.SetTemperature(0.2),
	}
	if maxTokens > 0 {
		opts = append(opts, llama.SetTokens(maxTokens))
	}

	out, err := m.Predict(prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("prediction failed: %w", err)
	}
	return out, nil
}

// Name implements LLMBackend.
func (b *LlamaBackend) Name() string {
	return config.ProviderLlama
}

// Close implements LLMBackend.
func (b *LlamaBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for path, m := range b.models {
		m.Free()
		delete(b.models, path)
	}
	return nil
}
