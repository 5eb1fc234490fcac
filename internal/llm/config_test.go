package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvProvider, EnvAnthropicKey, EnvOpenAIKey, EnvGeminiKey, EnvOpenRouterKey,
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv_Explicit(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv(EnvProvider, "openai")
	t.Setenv(EnvOpenAIKey, "sk-test")
	t.Setenv(EnvOpenAIModel, "gpt-4o")

	cfg := ConfigFromEnv()
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	require.NoError(t, cfg.Validate())
}

func TestConfigFromEnv_Discovers(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg := ConfigFromEnv()
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "sk-ant", cfg.Anthropic.APIKey)
}

func TestDiscoverConfig_None(t *testing.T) {
	clearLLMEnv(t)
	_, ok := DiscoverConfig()
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorContains(t, cfg.Validate(), EnvAnthropicKey)

	cfg.Provider = "mock"
	assert.NoError(t, cfg.Validate())

	cfg.Provider = "bogus"
	assert.Error(t, cfg.Validate())
}
