// Package llm provides language-model configuration and client abstractions
// for the completion providers the bot can talk to.
package llm

import "fmt"

// ModelTier selects a model from Config.Models.
type ModelTier string

// TierStandard is the tier templates are filled with.
const TierStandard ModelTier = "standard"

// Provider represents an LLM provider
type Provider string

// Supported providers
const (
	// ProviderYandex is the Yandex Foundation Models completion API
	ProviderYandex Provider = "yandex"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultYandexEndpoint is the synchronous completion URL.
const DefaultYandexEndpoint = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"

// Config holds the model configuration for one provider
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	MaxTokens   int

	// Endpoint and FolderID are only used by the Yandex provider.
	Endpoint string
	FolderID string
}

// DefaultConfig returns the default configuration (Yandex, no folder)
func DefaultConfig() *Config {
	return DefaultYandexConfig("")
}

// DefaultYandexConfig returns model URIs scoped to a Yandex Cloud folder
func DefaultYandexConfig(folderID string) *Config {
	return &Config{
		Provider: ProviderYandex,
		Models: map[ModelTier]string{
			TierStandard: fmt.Sprintf("gpt://%s/yandexgpt-lite/latest", folderID),
		},
		Temperature: 0.2,
		MaxTokens:   800,
		Endpoint:    DefaultYandexEndpoint,
		FolderID:    folderID,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierStandard: "gemini-2.5-flash",
		},
		Temperature: 0.2,
		MaxTokens:   800,
	}
}

// GetModel returns the model for tier, falling back to the standard tier.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	return c.Models[TierStandard]
}

// WithModel returns a copy of the config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
