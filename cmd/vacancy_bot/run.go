package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/vacancy-templater/internal/config"
	"github.com/jonathan/vacancy-templater/internal/conversation"
	"github.com/jonathan/vacancy-templater/internal/observability"
	"github.com/jonathan/vacancy-templater/internal/server"
	"github.com/jonathan/vacancy-templater/internal/telegram"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the Telegram bot",
		Long: `Connects to Telegram with TELEGRAM_BOT_TOKEN and serves users until interrupted.

Settings come from the environment (a .env file is loaded first) and optionally from --config. When ADMIN_ADDR is set, /health and /metrics are served there.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd, configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a config file (json, yaml or toml); environment variables override it")
	return cmd
}

func runBot(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(config.Options{File: configPath, RequireBotToken: true})
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	templates, checks, err := openStore(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer func() { _ = templates.Close() }()

	machine, err := conversation.NewMachine(conversation.Deps{
		Templates: templates,
		Generator: a.orchestrator,
		States:    conversation.NewMemoryStateStore(conversation.DefaultStateTTL),
		Expander:  a.expander,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		return err
	}

	api, err := telegram.Connect(cfg.BotToken, logger)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot := telegram.New(api, machine, logger, metrics)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })

	if cfg.AdminAddr != "" {
		srv := server.New(server.Config{
			Addr:    cfg.AdminAddr,
			Metrics: metrics,
			Logger:  logger,
			Checks:  checks,
		})
		g.Go(func() error { return srv.Run(gctx) })
	}

	logger.Info().Strs("strategies", a.orchestrator.Strategies()).Msg("bot started")
	err = g.Wait()
	logger.Info().Msg("bot stopped")
	return err
}
