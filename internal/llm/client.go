package llm

import (
	"context"
	"fmt"
)

// Prompt is a system instruction plus the user message.
type Prompt struct {
	System string
	User   string
}

// Client is one completion provider. Implementations return *APIError for
// every provider-side failure so callers can tell upstream problems apart.
type Client interface {
	// GenerateContent returns the trimmed, non-empty completion text.
	GenerateContent(ctx context.Context, prompt Prompt, tier ModelTier) (string, error)
	// GetModel returns the provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient builds the client for config.Provider.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderYandex:
		return NewYandexClient(config, apiKey, nil)
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", config.Provider)
	}
}
