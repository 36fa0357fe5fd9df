package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"NEXLETTER_ENV", "NEXLETTER_LOG_LEVEL", "NEXLETTER_ADDR",
	"NEXLETTER_LLM_PROVIDER", "NEXLETTER_LLM_MODEL", "NEXLETTER_LLM_BASE_URL", "NEXLETTER_LLM_API_KEY", "NEXLETTER_LLM_TIMEOUT",
	"NEXLETTER_STORAGE_DRIVER", "NEXLETTER_STORAGE_DIR", "DATABASE_URL",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "NEXLETTER_RATE_LIMIT_PER_MINUTE",
	"OPENAI_API_KEY", "GEMINI_API_KEY", "DEEPSEEK_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, warnings, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "not found")

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "drafts", cfg.Storage.Dir)
	assert.Equal(t, 3*time.Second, cfg.Notify.Window)
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
app_env: production
server_addr: ":9000"
llm:
  provider: OpenAI
  api_key: from-file
  timeout: 30s
storage:
  driver: postgres
  database_url: postgres://file
notify:
  window: 5s
`)
	t.Setenv("NEXLETTER_ADDR", ":7000")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, warnings, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, ":7000", cfg.ServerAddr)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "from-file", cfg.LLM.APIKey)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "postgres://env", cfg.Storage.DatabaseURL)
	assert.Equal(t, 5*time.Second, cfg.Notify.Window)
	assert.Equal(t, int64(-100123), cfg.Notify.TelegramChatID)
}

func TestLoad_ProviderAPIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXLETTER_LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
}

func TestLoad_Warnings(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXLETTER_LLM_TIMEOUT", "soon")
	t.Setenv("NEXLETTER_RATE_LIMIT_PER_MINUTE", "many")

	cfg, warnings, err := Load("")
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		yaml string
	}{
		{name: "unknown provider", env: map[string]string{"NEXLETTER_LLM_PROVIDER": "cohere"}},
		{name: "missing key", env: map[string]string{"NEXLETTER_LLM_PROVIDER": "openai"}},
		{name: "deepseek without base url", env: map[string]string{"NEXLETTER_LLM_PROVIDER": "deepseek", "DEEPSEEK_API_KEY": "k"}},
		{name: "postgres without url", env: map[string]string{"NEXLETTER_STORAGE_DRIVER": "postgres"}},
		{name: "unknown storage", env: map[string]string{"NEXLETTER_STORAGE_DRIVER": "s3"}},
		{name: "bad chat id", env: map[string]string{"TELEGRAM_CHAT_ID": "abc"}},
		{name: "bad yaml", yaml: "llm: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeConfig(t, tt.yaml)
			}
			_, _, err := Load(path)
			assert.Error(t, err)
		})
	}
}
