package filler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/vacancy-templater/internal/llm"
	"github.com/jonathan/vacancy-templater/internal/prompts"
	"github.com/jonathan/vacancy-templater/internal/rendering"
	"github.com/rs/zerolog"
)

// DefaultAITimeout bounds one completion call.
const DefaultAITimeout = 30 * time.Second

const noDescription = "No description provided."

// AIOptions configures the model-backed filler.
type AIOptions struct {
	Tier    llm.ModelTier
	Timeout time.Duration
	Logger  zerolog.Logger
}

// AI fills templates through a language model. Every failure is returned
// as *UpstreamError.
type AI struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
	logger  zerolog.Logger
}

// NewAI creates a model-backed filler.
func NewAI(client llm.Client, opts AIOptions) *AI {
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultAITimeout
	}
	return &AI{
		client:  client,
		tier:    opts.Tier,
		timeout: opts.Timeout,
		logger:  opts.Logger.With().Str("component", "ai_filler").Logger(),
	}
}

// Name implements Filler.
func (a *AI) Name() string { return "ai" }

// Markup implements Filler.
func (a *AI) Markup() Markup { return MarkupHTML }

// Fill asks the model to fill req.Body and cleans the reply for Telegram.
func (a *AI) Fill(ctx context.Context, req Request) (string, error) {
	if a.client == nil {
		return "", &UpstreamError{Message: "no model client configured"}
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", &UpstreamError{Message: "failed to build prompt", Cause: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	text, err := a.client.GenerateContent(callCtx, prompt, a.tier)
	elapsed := time.Since(started)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", &UpstreamError{Message: fmt.Sprintf("model call timed out after %s", a.timeout), Cause: err}
		}
		return "", &UpstreamError{Message: "model call failed", Cause: err}
	}

	cleaned := rendering.CleanTelegramHTML(text)
	if cleaned == "" {
		return "", &UpstreamError{Message: "model returned an empty message"}
	}

	a.logger.Debug().
		Str("model", a.client.GetModel(a.tier)).
		Dur("elapsed", elapsed).
		Int("chars", len(cleaned)).
		Msg("model fill completed")
	return cleaned, nil
}

// BuildPrompt renders the fill prompt for req.
func BuildPrompt(req Request) (llm.Prompt, error) {
	fill, err := prompts.Fill()
	if err != nil {
		return llm.Prompt{}, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = noDescription
	}

	return llm.Prompt{
		System: fill.System,
		User: fill.Render(prompts.FillVars{
			Template:    req.Body,
			Description: description,
			Vacancy:     strings.TrimSpace(req.SourceText),
		}),
	}, nil
}
