package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "AI_PROVIDER", "YANDEX_API_KEY", "YANDEX_FOLDER_ID",
	"YANDEX_MODEL_URI", "AI_ENDPOINT", "GEMINI_API_KEY", "GEMINI_MODEL", "AI_TIMEOUT",
	"AI_TEMPERATURE", "AI_MAX_TOKENS", "TEMPLATE_STORE_PATH", "DATABASE_URL",
	"ALIASES_PATH", "FETCH_URLS", "USE_BROWSER", "ALLOW_PRIVATE_URLS", "LOG_LEVEL", "LOG_FORMAT",
	"ADMIN_ADDR",
}

// clearEnv blanks every variable Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load(Options{RequireBotToken: true})
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, ProviderYandex, cfg.AIProvider)
	assert.Equal(t, DefaultYandexEndpoint, cfg.AIEndpoint)
	assert.Equal(t, DefaultTemplateStorePath, cfg.TemplateStorePath)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, DefaultAIMaxTokens, cfg.AIMaxTokens)
	assert.True(t, cfg.FetchURLs)
	assert.False(t, cfg.UseBrowser)
	assert.False(t, cfg.AllowPrivateURLs)
	assert.False(t, cfg.AIEnabled())
}

func TestLoad_AllowPrivateURLs(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOW_PRIVATE_URLS", "true")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.True(t, cfg.AllowPrivateURLs)
}

func TestLoad_MissingBotToken(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Options{RequireBotToken: true})
	assert.Nil(t, cfg)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "TELEGRAM_BOT_TOKEN", cfgErr.Field)
}

func TestLoad_BotTokenOptional(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Empty(t, cfg.BotToken)
}

func TestLoad_YandexEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("YANDEX_API_KEY", "secret")
	t.Setenv("YANDEX_FOLDER_ID", "b1gfolder")
	t.Setenv("AI_TIMEOUT", "12s")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.True(t, cfg.AIEnabled())
	assert.Equal(t, "secret", cfg.APIKey())
	assert.Equal(t, "gpt://b1gfolder/yandexgpt-lite/latest", cfg.YandexModelURI)
	assert.Equal(t, 12*time.Second, cfg.AITimeout)
}

func TestLoad_YandexKeyWithoutModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("YANDEX_API_KEY", "secret")

	_, err := Load(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YANDEX_MODEL_URI")
}

func TestLoad_GeminiProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("YANDEX_API_KEY", "ignored")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.AIProvider)
	assert.Equal(t, "g-key", cfg.APIKey())
	assert.Equal(t, DefaultGeminiModel, cfg.GeminiModel)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{name: "unknown provider", key: "AI_PROVIDER", value: "openai", field: "AI_PROVIDER"},
		{name: "bad endpoint", key: "AI_ENDPOINT", value: "not a url", field: "AI_ENDPOINT"},
		{name: "negative tokens", key: "AI_MAX_TOKENS", value: "-5", field: "AI_MAX_TOKENS"},
		{name: "bad log format", key: "LOG_FORMAT", value: "xml", field: "LOG_FORMAT"},
		{name: "bad admin addr", key: "ADMIN_ADDR", value: "nope", field: "ADMIN_ADDR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(Options{})
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)

	content := `{
		"telegram_bot_token": "from-file",
		"template_store_path": "/var/lib/bot/templates.json",
		"fetch_urls": false
	}`
	path := filepath.Join(t.TempDir(), "bot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(Options{File: path, RequireBotToken: true})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.BotToken)
	assert.Equal(t, "/var/lib/bot/templates.json", cfg.TemplateStorePath)
	assert.False(t, cfg.FetchURLs)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")

	path := filepath.Join(t.TempDir(), "bot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"telegram_bot_token": "from-file"}`), 0644))

	cfg, err := Load(Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.BotToken)
}

func TestLoad_ConfigFileNotFound(t *testing.T) {
	clearEnv(t)

	_, err := Load(Options{File: "/nonexistent/bot.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ConfigError{Field: "X", Message: "bad", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "config error: X bad: boom", err.Error())
}
