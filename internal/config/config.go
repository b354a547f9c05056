// Package config provides centralized configuration management for workflow-wizard.
// Settings come from built-in defaults, an optional wizard.yaml file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Providers understood by the backend factory.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderLlama     = "llama"
	ProviderOffline   = "offline"
)

// ErrMissingAPIKey is returned when the selected hosted provider has no key.
var ErrMissingAPIKey = errors.New("missing API key")

// Config holds all configuration settings for workflow-wizard
type Config struct {
	// Provider selects the completion backend; Model overrides the
	// provider's default model when set.
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`

	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Llama     LlamaConfig     `mapstructure:"llama"`
	Prompts   PromptsConfig   `mapstructure:"prompts"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type LlamaConfig struct {
	ModelPath string `mapstructure:"model_path"`
	Threads   int    `mapstructure:"threads"`
}

// PromptsConfig points at a directory holding intent.txt, planner.txt and
// validator.txt overrides. Empty means built-in templates only.
type PromptsConfig struct {
	Dir string `mapstructure:"dir"`
}

// LimitsConfig holds the per-stage completion budgets in tokens.
type LimitsConfig struct {
	IntentTokens   int `mapstructure:"intent_tokens"`
	PlanTokens     int `mapstructure:"plan_tokens"`
	ValidateTokens int `mapstructure:"validate_tokens"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// Default values
const (
	DefaultProvider         = ProviderAnthropic
	DefaultAnthropicModel   = "claude-3-5-sonnet-20241022"
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultOpenAIModel      = "gpt-4"
	DefaultOpenAIBaseURL    = "https://api.openai.com/v1"
	DefaultLlamaThreads     = 4
	DefaultIntentTokens     = 2000
	DefaultPlanTokens       = 3000
	DefaultValidateTokens   = 2000
	DefaultServerAddr       = ":8000"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultServiceName      = "workflow-wizard"

	// OfflineModel is reported as the model name by the offline backend.
	OfflineModel = "offline"
)

// Get returns the global configuration, loading it on first use. A config
// file that fails to parse is logged and replaced by defaults plus env.
func Get() *Config {
	configOnce.Do(func() {
		cfg, err := Load("")
		if err != nil {
			slog.Warn("config_load_failed", "error", err)
			cfg = NewConfig()
		}
		globalConfig = cfg
	})
	return globalConfig
}

// Reset clears the global configuration, forcing reload on next Get()
// This is primarily useful for testing
func Reset() {
	configOnce = sync.Once{}
	globalConfig = nil
}

// Load reads configuration from path, or from wizard.yaml in . or ./config
// when path is empty. A missing default file is not an error; a missing
// explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wizard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("WIZARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Conventional provider variables are honoured alongside WIZARD_*.
	_ = v.BindEnv("model", "WIZARD_MODEL", "DEFAULT_MODEL")
	_ = v.BindEnv("anthropic.api_key", "WIZARD_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("openai.api_key", "WIZARD_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "WIZARD_OPENAI_BASE_URL", "OPENAI_BASE_URL")
	_ = v.BindEnv("openai.model", "WIZARD_OPENAI_MODEL", "OPENAI_MODEL")
	_ = v.BindEnv("llama.model_path", "WIZARD_LLAMA_MODEL_PATH", "LLAMA_MODEL_PATH")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("model", "")
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.base_url", DefaultAnthropicBaseURL)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", DefaultOpenAIBaseURL)
	v.SetDefault("openai.model", DefaultOpenAIModel)
	v.SetDefault("llama.model_path", "")
	v.SetDefault("llama.threads", DefaultLlamaThreads)
	v.SetDefault("prompts.dir", "")
	v.SetDefault("limits.intent_tokens", DefaultIntentTokens)
	v.SetDefault("limits.plan_tokens", DefaultPlanTokens)
	v.SetDefault("limits.validate_tokens", DefaultValidateTokens)
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", DefaultServiceName)
}

// NewConfig creates a new configuration with default values and no
// environment lookup. This is useful for testing or programmatic configuration
func NewConfig() *Config {
	return &Config{
		Provider:  DefaultProvider,
		Anthropic: AnthropicConfig{BaseURL: DefaultAnthropicBaseURL},
		OpenAI:    OpenAIConfig{BaseURL: DefaultOpenAIBaseURL, Model: DefaultOpenAIModel},
		Llama:     LlamaConfig{Threads: DefaultLlamaThreads},
		Limits: LimitsConfig{
			IntentTokens:   DefaultIntentTokens,
			PlanTokens:     DefaultPlanTokens,
			ValidateTokens: DefaultValidateTokens,
		},
		Server:    ServerConfig{Addr: DefaultServerAddr},
		Log:       LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Telemetry: TelemetryConfig{ServiceName: DefaultServiceName},
	}
}

// WithProvider selects the backend and, when model is non-empty, the model.
func (c *Config) WithProvider(provider, model string) *Config {
	c.Provider = strings.ToLower(provider)
	if model != "" {
		c.Model = model
	}
	return c
}

// WithAnthropic configures Anthropic settings
func (c *Config) WithAnthropic(apiKey, baseURL string) *Config {
	c.Anthropic.APIKey = apiKey
	if baseURL != "" {
		c.Anthropic.BaseURL = baseURL
	}
	return c
}

// WithOpenAI configures OpenAI settings
func (c *Config) WithOpenAI(apiKey, baseURL, model string) *Config {
	c.OpenAI.APIKey = apiKey
	if baseURL != "" {
		c.OpenAI.BaseURL = baseURL
	}
	if model != "" {
		c.OpenAI.Model = model
	}
	return c
}

// WithLlama configures Llama settings
func (c *Config) WithLlama(modelPath string, threads int) *Config {
	c.Llama.ModelPath = modelPath
	if threads > 0 {
		c.Llama.Threads = threads
	}
	return c
}

// WithPrompts sets the template override directory.
func (c *Config) WithPrompts(dir string) *Config {
	c.Prompts.Dir = dir
	return c
}

// WithLimits sets per-stage token budgets; zero keeps the current value.
func (c *Config) WithLimits(intent, plan, validate int) *Config {
	if intent != 0 {
		c.Limits.IntentTokens = intent
	}
	if plan != 0 {
		c.Limits.PlanTokens = plan
	}
	if validate != 0 {
		c.Limits.ValidateTokens = validate
	}
	return c
}

// WithServer sets the HTTP listen address.
func (c *Config) WithServer(addr string) *Config {
	if addr != "" {
		c.Server.Addr = addr
	}
	return c
}

// WithLogging sets the log level and handler format (text or json).
func (c *Config) WithLogging(level, format string) *Config {
	if level != "" {
		c.Log.Level = level
	}
	if format != "" {
		c.Log.Format = format
	}
	return c
}

// WithTelemetry toggles OTLP trace export.
func (c *Config) WithTelemetry(enabled bool) *Config {
	c.Telemetry.Enabled = enabled
	return c
}

// ResolvedModel returns the model to request from the selected provider.
func (c *Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderLlama:
		return c.Llama.ModelPath
	case ProviderOffline:
		return OfflineModel
	default:
		return DefaultAnthropicModel
	}
}

// Validate checks the configuration is usable for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("%w: set ANTHROPIC_API_KEY", ErrMissingAPIKey)
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingAPIKey)
		}
	case ProviderLlama:
		if c.Llama.ModelPath == "" {
			return errors.New("llama provider requires llama.model_path")
		}
	case ProviderOffline:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.Limits.IntentTokens <= 0 || c.Limits.PlanTokens <= 0 || c.Limits.ValidateTokens <= 0 {
		return fmt.Errorf("token limits must be positive (intent=%d plan=%d validate=%d)",
			c.Limits.IntentTokens, c.Limits.PlanTokens, c.Limits.ValidateTokens)
	}
	return nil
}
