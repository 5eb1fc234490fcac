package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvAPIURL, EnvDB, EnvSessionBackend, EnvRedisAddr, EnvProgressDSN,
		EnvUserID, EnvQuestionSource, EnvRequestTimeout, EnvLogMode,
		"DISHA_LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "DISHA_ANTHROPIC_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIBaseURL)
	assert.Equal(t, BackendSQLite, cfg.SessionBackend)
	assert.Equal(t, SourceAPI, cfg.QuestionSource)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.SignedIn())
	assert.False(t, cfg.RemoteProgress())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIURL, "https://api.example.com/api/")
	t.Setenv(EnvSessionBackend, "REDIS")
	t.Setenv(EnvRedisAddr, "cache:6379")
	t.Setenv(EnvUserID, "uid-1")
	t.Setenv(EnvProgressDSN, "postgres://localhost/disha")
	t.Setenv(EnvRequestTimeout, "5s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, BackendRedis, cfg.SessionBackend)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.SignedIn())
	assert.True(t, cfg.RemoteProgress())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad backend", EnvSessionBackend, "etcd"},
		{"bad source", EnvQuestionSource, "oracle"},
		{"bad timeout", EnvRequestTimeout, "soon"},
		{"negative timeout", EnvRequestTimeout, "-1s"},
		{"relative url", EnvAPIURL, "localhost/api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_LLMSourceNeedsKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvQuestionSource, "llm")
	t.Setenv("DISHA_LLM_PROVIDER", "anthropic")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISHA_ANTHROPIC_API_KEY")

	t.Setenv("DISHA_LLM_PROVIDER", "mock")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, cfg.QuestionSource)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DISHA_USER_ID=from-file\nDISHA_SESSION_BACKEND=memory\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv(EnvUserID)
		os.Unsetenv(EnvSessionBackend)
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.UserID)
	assert.Equal(t, BackendMemory, cfg.SessionBackend)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
