package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxResponseBody caps how much of a completion response is read.
const maxResponseBody = 1 << 20

// yandexStatusFinal marks a complete alternative. Truncated and
// content-filtered alternatives carry other statuses.
const yandexStatusFinal = "ALTERNATIVE_STATUS_FINAL"

// YandexClient implements Client against the Foundation Models completion
// endpoint.
type YandexClient struct {
	httpClient *http.Client
	config     *Config
	apiKey     string
}

type yandexMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type yandexCompletionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

type yandexRequest struct {
	ModelURI          string                  `json:"modelUri"`
	CompletionOptions yandexCompletionOptions `json:"completionOptions"`
	Messages          []yandexMessage         `json:"messages"`
}

type yandexResponse struct {
	Result struct {
		Alternatives []struct {
			Message yandexMessage `json:"message"`
			Status  string        `json:"status"`
		} `json:"alternatives"`
	} `json:"result"`
}

// NewYandexClient creates a client. A nil httpClient uses a plain
// http.Client; deadlines come from the caller's context.
func NewYandexClient(config *Config, apiKey string, httpClient *http.Client) (*YandexClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &YandexClient{httpClient: httpClient, config: config, apiKey: apiKey}, nil
}

// GenerateContent sends one synchronous completion request.
func (c *YandexClient) GenerateContent(ctx context.Context, prompt Prompt, tier ModelTier) (string, error) {
	modelURI := c.config.GetModel(tier)
	if modelURI == "" {
		return "", &APIError{Provider: ProviderYandex, Message: fmt.Sprintf("no model configured for tier %s", tier)}
	}

	reqBody := yandexRequest{
		ModelURI: modelURI,
		CompletionOptions: yandexCompletionOptions{
			Stream:      false,
			Temperature: c.config.Temperature,
			MaxTokens:   c.config.MaxTokens,
		},
	}
	if prompt.System != "" {
		reqBody.Messages = append(reqBody.Messages, yandexMessage{Role: "system", Text: prompt.System})
	}
	reqBody.Messages = append(reqBody.Messages, yandexMessage{Role: "user", Text: prompt.User})

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &APIError{Provider: ProviderYandex, Message: "failed to encode request", Cause: err}
	}

	endpoint := c.config.Endpoint
	if endpoint == "" {
		endpoint = DefaultYandexEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &APIError{Provider: ProviderYandex, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	if c.config.FolderID != "" {
		req.Header.Set("x-folder-id", c.config.FolderID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &APIError{Provider: ProviderYandex, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", &APIError{Provider: ProviderYandex, StatusCode: resp.StatusCode, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{
			Provider:   ProviderYandex,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", truncateBody(body)),
		}
	}

	var parsed yandexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &APIError{Provider: ProviderYandex, StatusCode: resp.StatusCode, Message: "malformed response envelope", Cause: err}
	}
	if len(parsed.Result.Alternatives) == 0 {
		return "", &APIError{Provider: ProviderYandex, StatusCode: resp.StatusCode, Message: "no alternatives in response"}
	}

	alternative := parsed.Result.Alternatives[0]
	if alternative.Status != yandexStatusFinal {
		return "", &APIError{
			Provider:   ProviderYandex,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("incomplete alternative: %s", alternative.Status),
		}
	}

	text := strings.TrimSpace(alternative.Message.Text)
	if text == "" {
		return "", &APIError{Provider: ProviderYandex, StatusCode: resp.StatusCode, Message: "empty completion"}
	}
	return text, nil
}

// GetModel returns the model URI for a tier
func (c *YandexClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client owns no resources.
func (c *YandexClient) Close() error {
	return nil
}
