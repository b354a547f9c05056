package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/LiboWorks/workflow-wizard/internal/backend"
	"github.com/LiboWorks/workflow-wizard/internal/config"
	"github.com/LiboWorks/workflow-wizard/internal/logging"
	"github.com/LiboWorks/workflow-wizard/internal/pipeline"
	"github.com/LiboWorks/workflow-wizard/internal/telemetry"
)

// app carries what the root command resolves for its subcommands.
type app struct {
	configPath string
	provider   string
	model      string
	logLevel   string
	logFormat  string

	cfg      *config.Config
	logger   *slog.Logger
	shutdown telemetry.ShutdownFunc
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "wizard",
		Short: "Design automation workflows from plain language",
		Long: `wizard turns a plain-language request into a validated automation
workflow and exports it for the platform you use.

Features:
  - Intent extraction, planning and validation by a language model
  - Export to JSON, YAML, n8n, Zapier or a Python script
  - Anthropic, OpenAI, local llama.cpp or fully offline backends
  - HTTP API and MCP server modes

Examples:
  wizard create "email me the weather every morning" --format n8n
  wizard validate plan.yaml
  wizard export plan.yaml --format python
  wizard serve --addr :8000`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.shutdown == nil {
				return nil
			}
			return a.shutdown(context.WithoutCancel(cmd.Context()))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default ./wizard.yaml or ./config/wizard.yaml)")
	flags.StringVar(&a.provider, "provider", "", "Backend provider: anthropic, openai, llama or offline")
	flags.StringVar(&a.model, "model", "", "Model name, or GGUF path for llama")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		newCreateCmd(a),
		newValidateCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newModelCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath)
		if err != nil {
			return err
		}
	} else {
		cfg := *config.Get()
		a.cfg = &cfg
	}

	if a.provider != "" || a.model != "" {
		provider := a.provider
		if provider == "" {
			provider = a.cfg.Provider
		}
		a.cfg.WithProvider(provider, a.model)
	}
	a.cfg.WithLogging(a.logLevel, a.logFormat)

	a.logger = logging.Setup(a.cfg.Log.Level, a.cfg.Log.Format)

	a.shutdown, err = telemetry.Setup(cmd.Context(), a.cfg.Telemetry.ServiceName, a.cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

// newPipeline builds the backend selected by configuration and a pipeline
// over it. The caller closes the returned backend.
func (a *app) newPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, backend.LLMBackend, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	llm, err := backend.New(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("backend_ready", "backend", llm.Name(), "model", a.cfg.ResolvedModel())

	p, err := pipeline.New(llm, a.cfg, opts...)
	if err != nil {
		_ = llm.Close()
		return nil, nil, err
	}
	return p, llm, nil
}
