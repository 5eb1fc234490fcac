package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds LLM provider configuration.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter", "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single logical request including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// Environment variables read by ConfigFromEnv.
const (
	EnvProvider        = "DISHA_LLM_PROVIDER"
	EnvAnthropicKey    = "DISHA_ANTHROPIC_API_KEY"
	EnvAnthropicModel  = "DISHA_ANTHROPIC_MODEL"
	EnvOpenAIKey       = "DISHA_OPENAI_API_KEY"
	EnvOpenAIModel     = "DISHA_OPENAI_MODEL"
	EnvOpenAIBaseURL   = "DISHA_OPENAI_BASE_URL"
	EnvGeminiKey       = "DISHA_GEMINI_API_KEY"
	EnvGeminiModel     = "DISHA_GEMINI_MODEL"
	EnvOpenRouterKey   = "DISHA_OPENROUTER_API_KEY"
	EnvOpenRouterModel = "DISHA_OPENROUTER_MODEL"
)

// ConfigFromEnv overlays DISHA_* variables on the defaults. When no
// provider is selected explicitly, well-known vendor key variables are
// probed via DiscoverConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	explicit := os.Getenv(EnvProvider)
	if explicit == "" {
		if found, ok := DiscoverConfig(); ok {
			cfg = found
		}
	} else {
		cfg.Provider = explicit
	}

	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Anthropic.APIKey, EnvAnthropicKey)
	set(&cfg.Anthropic.Model, EnvAnthropicModel)
	set(&cfg.OpenAI.APIKey, EnvOpenAIKey)
	set(&cfg.OpenAI.Model, EnvOpenAIModel)
	set(&cfg.OpenAI.BaseURL, EnvOpenAIBaseURL)
	set(&cfg.Gemini.APIKey, EnvGeminiKey)
	set(&cfg.Gemini.Model, EnvGeminiModel)
	set(&cfg.OpenRouter.APIKey, EnvOpenRouterKey)
	set(&cfg.OpenRouter.Model, EnvOpenRouterModel)

	return cfg
}

// DiscoverConfig probes vendor key variables in priority order
// (Gemini, OpenAI, Anthropic, OpenRouter) and selects the first found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("OPENROUTER_API_KEY") != "":
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	default:
		return Config{}, false
	}
	return cfg, true
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "anthropic":
		key, env = c.Anthropic.APIKey, EnvAnthropicKey
	case "openai":
		key, env = c.OpenAI.APIKey, EnvOpenAIKey
	case "gemini":
		key, env = c.Gemini.APIKey, EnvGeminiKey
	case "openrouter":
		key, env = c.OpenRouter.APIKey, EnvOpenRouterKey
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
