package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/vacancy-templater/internal/config"
	"github.com/jonathan/vacancy-templater/internal/fetch"
	"github.com/jonathan/vacancy-templater/internal/filler"
	"github.com/jonathan/vacancy-templater/internal/generation"
	"github.com/jonathan/vacancy-templater/internal/ingestion"
	"github.com/jonathan/vacancy-templater/internal/llm"
	"github.com/jonathan/vacancy-templater/internal/observability"
	"github.com/jonathan/vacancy-templater/internal/server"
	"github.com/jonathan/vacancy-templater/internal/store"
	"github.com/rs/zerolog"
)

// app holds the components shared by the run and fill commands.
type app struct {
	logger        zerolog.Logger
	metrics       *observability.Metrics
	llmClient     llm.Client
	deterministic *filler.Deterministic
	orchestrator  *generation.Orchestrator
	expander      *ingestion.Expander
}

// buildApp wires the fillers, the orchestrator and the link expander. The
// AI filler is only wired when the active provider has a credential.
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) (*app, error) {
	aliases, err := filler.LoadAliases(cfg.AliasesPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		logger:        logger,
		metrics:       metrics,
		deterministic: filler.NewDeterministic(aliases),
	}

	var primary filler.Filler
	if cfg.AIEnabled() {
		client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey())
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", cfg.AIProvider, err)
		}
		a.llmClient = client
		primary = filler.NewAI(client, filler.AIOptions{
			Tier:    llm.TierStandard,
			Timeout: cfg.AITimeout,
			Logger:  logger,
		})
		logger.Info().Str("provider", cfg.AIProvider).Str("model", client.GetModel(llm.TierStandard)).Msg("ai filler enabled")
	} else {
		logger.Info().Str("provider", cfg.AIProvider).Msg("no ai credential, using rule-based filler only")
	}

	a.orchestrator, err = generation.New(generation.Chain(primary, a.deterministic), logger, metrics)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	fetchOpts := fetchOptions(cfg)
	opts := ingestion.Options{
		Fetcher: fetch.NewCachedFetcher(&fetch.CachedFetcherConfig{Options: fetchOpts}),
		Fetch:   fetchOpts,
		Logger:  logger,
	}
	if cfg.UseBrowser {
		opts.Renderer = fetch.BrowserRenderer{Timeout: fetch.DefaultBrowserTimeout, Logger: logger}
	}
	a.expander = ingestion.NewExpander(opts, cfg.FetchURLs)

	return a, nil
}

// fetchOptions returns page fetch settings for cfg.
func fetchOptions(cfg *config.Config) *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.AllowPrivate = cfg.AllowPrivateURLs
	return opts
}

// Close releases the model client.
func (a *app) Close() error {
	if a.llmClient == nil {
		return nil
	}
	return a.llmClient.Close()
}

// llmConfig maps runtime settings onto the provider config.
func llmConfig(cfg *config.Config) *llm.Config {
	var c *llm.Config
	switch cfg.AIProvider {
	case config.ProviderGemini:
		c = llm.DefaultGeminiConfig()
		if cfg.GeminiModel != "" {
			c = c.WithModel(llm.TierStandard, cfg.GeminiModel)
		}
	default:
		c = llm.DefaultYandexConfig(cfg.YandexFolderID)
		if cfg.YandexModelURI != "" {
			c = c.WithModel(llm.TierStandard, cfg.YandexModelURI)
		}
		if cfg.AIEndpoint != "" {
			c.Endpoint = cfg.AIEndpoint
		}
	}
	c.Temperature = float32(cfg.AITemperature)
	c.MaxTokens = cfg.AIMaxTokens
	return c
}

// openStore opens Postgres when DATABASE_URL is set and the JSON file
// store otherwise. The returned checks feed the admin /health endpoint.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) (store.Store, map[string]server.Check, error) {
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL, metrics)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("template store: postgres")
		return pg, map[string]server.Check{"database": pg.Ping}, nil
	}

	fs, err := store.OpenFile(cfg.TemplateStorePath, logger, metrics)
	if err != nil {
		return nil, nil, err
	}
	return fs, nil, nil
}

// errNoVacancy is returned by fill when neither input is given.
var errNoVacancy = errors.New("either --vacancy or --vacancy-url must be provided")
