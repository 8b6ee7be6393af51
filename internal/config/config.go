// Package config provides configuration loading and validation for the bot.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AI providers understood by the llm package.
const (
	ProviderYandex = "yandex"
	ProviderGemini = "gemini"
)

// Defaults for optional settings.
const (
	DefaultTemplateStorePath = "templates.json"
	DefaultYandexEndpoint    = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultAITimeout         = 30 * time.Second
	DefaultAITemperature     = 0.2
	DefaultAIMaxTokens       = 800
)

// Config is the runtime configuration. Values come from environment
// variables (after .env loading) and, optionally, a config file whose keys
// are the lower-cased variable names.
type Config struct {
	BotToken string

	AIProvider     string        `validate:"oneof=yandex gemini"`
	YandexAPIKey   string
	YandexFolderID string
	YandexModelURI string
	AIEndpoint     string        `validate:"omitempty,url"`
	GeminiAPIKey   string
	GeminiModel    string        `validate:"required"`
	AITimeout      time.Duration `validate:"gt=0"`
	AITemperature  float64       `validate:"gte=0,lte=2"`
	AIMaxTokens    int           `validate:"gt=0"`

	TemplateStorePath string `validate:"required"`
	DatabaseURL       string
	AliasesPath       string

	FetchURLs  bool
	UseBrowser bool

	// AllowPrivateURLs lets vacancy links reach loopback and private
	// networks. Off by default.
	AllowPrivateURLs bool

	LogLevel  string `validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	LogFormat string `validate:"omitempty,oneof=console json"`
	AdminAddr string `validate:"omitempty,hostname_port"`
}

// Options controls Load.
type Options struct {
	// File is an optional config file (json, yaml or toml, by extension).
	File string
	// RequireBotToken makes a missing TELEGRAM_BOT_TOKEN a ConfigError.
	RequireBotToken bool
}

// Load reads configuration from the environment and the optional file.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(opts.File), "."))
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigError{Field: "config_file", Message: fmt.Sprintf("failed to read %s", opts.File), Cause: err}
		}
	}

	cfg := &Config{
		BotToken:          strings.TrimSpace(v.GetString("telegram_bot_token")),
		AIProvider:        strings.ToLower(strings.TrimSpace(v.GetString("ai_provider"))),
		YandexAPIKey:      strings.TrimSpace(v.GetString("yandex_api_key")),
		YandexFolderID:    strings.TrimSpace(v.GetString("yandex_folder_id")),
		YandexModelURI:    strings.TrimSpace(v.GetString("yandex_model_uri")),
		AIEndpoint:        strings.TrimSpace(v.GetString("ai_endpoint")),
		GeminiAPIKey:      strings.TrimSpace(v.GetString("gemini_api_key")),
		GeminiModel:       strings.TrimSpace(v.GetString("gemini_model")),
		AITimeout:         v.GetDuration("ai_timeout"),
		AITemperature:     v.GetFloat64("ai_temperature"),
		AIMaxTokens:       v.GetInt("ai_max_tokens"),
		TemplateStorePath: strings.TrimSpace(v.GetString("template_store_path")),
		DatabaseURL:       strings.TrimSpace(v.GetString("database_url")),
		AliasesPath:       strings.TrimSpace(v.GetString("aliases_path")),
		FetchURLs:         v.GetBool("fetch_urls"),
		UseBrowser:        v.GetBool("use_browser"),
		AllowPrivateURLs:  v.GetBool("allow_private_urls"),
		LogLevel:          strings.TrimSpace(v.GetString("log_level")),
		LogFormat:         strings.TrimSpace(v.GetString("log_format")),
		AdminAddr:         strings.TrimSpace(v.GetString("admin_addr")),
	}

	if cfg.YandexModelURI == "" && cfg.YandexFolderID != "" {
		cfg.YandexModelURI = fmt.Sprintf("gpt://%s/yandexgpt-lite/latest", cfg.YandexFolderID)
	}

	if err := cfg.Validate(opts.RequireBotToken); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai_provider", ProviderYandex)
	v.SetDefault("ai_endpoint", DefaultYandexEndpoint)
	v.SetDefault("gemini_model", DefaultGeminiModel)
	v.SetDefault("ai_timeout", DefaultAITimeout)
	v.SetDefault("ai_temperature", DefaultAITemperature)
	v.SetDefault("ai_max_tokens", DefaultAIMaxTokens)
	v.SetDefault("template_store_path", DefaultTemplateStorePath)
	v.SetDefault("fetch_urls", true)
	v.SetDefault("use_browser", false)
	v.SetDefault("allow_private_urls", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate(requireBotToken bool) error {
	if requireBotToken && c.BotToken == "" {
		return &ConfigError{Field: "TELEGRAM_BOT_TOKEN", Message: "is required"}
	}

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ConfigError{
				Field:   envName(fe.Field()),
				Message: fmt.Sprintf("failed %q validation (value %v)", fe.Tag(), fe.Value()),
				Cause:   err,
			}
		}
		return &ConfigError{Field: "config", Message: "invalid configuration", Cause: err}
	}

	if c.AIProvider == ProviderYandex && c.YandexAPIKey != "" && c.YandexModelURI == "" {
		return &ConfigError{Field: "YANDEX_MODEL_URI", Message: "YANDEX_MODEL_URI or YANDEX_FOLDER_ID is required when YANDEX_API_KEY is set"}
	}

	return nil
}

// AIEnabled reports whether the active provider has a credential. Without
// one the AI filler is not wired at all.
func (c *Config) AIEnabled() bool {
	return c.APIKey() != ""
}

// APIKey returns the credential of the active provider.
func (c *Config) APIKey() string {
	switch c.AIProvider {
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.YandexAPIKey
	}
}

// envName maps a struct field name to its environment variable.
func envName(field string) string {
	names := map[string]string{
		"AIProvider":        "AI_PROVIDER",
		"AIEndpoint":        "AI_ENDPOINT",
		"GeminiModel":       "GEMINI_MODEL",
		"AITimeout":         "AI_TIMEOUT",
		"AITemperature":     "AI_TEMPERATURE",
		"AIMaxTokens":       "AI_MAX_TOKENS",
		"TemplateStorePath": "TEMPLATE_STORE_PATH",
		"LogLevel":          "LOG_LEVEL",
		"LogFormat":         "LOG_FORMAT",
		"AdminAddr":         "ADMIN_ADDR",
	}
	if name, ok := names[field]; ok {
		return name
	}
	return field
}
