package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/vacancy-templater/internal/config"
	"github.com/jonathan/vacancy-templater/internal/filler"
	"github.com/jonathan/vacancy-templater/internal/ingestion"
	"github.com/jonathan/vacancy-templater/internal/observability"
	"github.com/spf13/cobra"
)

type fillFlags struct {
	configPath  string
	template    string
	description string
	vacancy     string
	vacancyURL  string
	noAI        bool
	verbose     bool
}

func newFillCmd() *cobra.Command {
	var flags fillFlags

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a template from a vacancy without Telegram",
		Long: `Runs the same fillers the bot uses and prints the filled message to stdout.

Useful for checking how a template and its placeholders match a vacancy. With --verbose the rule-based matches are printed to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFill(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to a config file (json, yaml or toml)")
	cmd.Flags().StringVarP(&flags.template, "template", "t", "", "Path to the template text file")
	cmd.Flags().StringVarP(&flags.description, "description", "d", "", "Template description")
	cmd.Flags().StringVar(&flags.vacancy, "vacancy", "", "Path to the vacancy text file (mutually exclusive with --vacancy-url)")
	cmd.Flags().StringVar(&flags.vacancyURL, "vacancy-url", "", "URL of the vacancy page (mutually exclusive with --vacancy)")
	cmd.Flags().BoolVar(&flags.noAI, "no-ai", false, "Use only the rule-based filler")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Print placeholder matches to stderr")
	_ = cmd.MarkFlagRequired("template")
	cmd.MarkFlagsMutuallyExclusive("vacancy", "vacancy-url")

	return cmd
}

func runFill(cmd *cobra.Command, flags fillFlags) error {
	cfg, err := config.Load(config.Options{File: flags.configPath})
	if err != nil {
		return err
	}
	if flags.noAI {
		cfg.YandexAPIKey = ""
		cfg.GeminiAPIKey = ""
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rawBody, err := os.ReadFile(flags.template)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	body := strings.TrimSpace(string(rawBody))
	if body == "" {
		return fmt.Errorf("template %s is empty", flags.template)
	}

	a, err := buildApp(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var source string
	switch {
	case flags.vacancyURL != "":
		source, _, err = ingestion.IngestFromURL(ctx, flags.vacancyURL, &ingestion.Options{Fetch: fetchOptions(cfg), Logger: logger})
		if err != nil {
			return fmt.Errorf("failed to fetch vacancy: %w", err)
		}
	case flags.vacancy != "":
		source, _, err = ingestion.IngestFromFile(flags.vacancy)
		if err != nil {
			return err
		}
		source = a.expander.Expand(ctx, source)
	default:
		return errNoVacancy
	}

	result, err := a.orchestrator.Generate(ctx, filler.Request{
		Body:        body,
		Description: strings.TrimSpace(flags.description),
		SourceText:  source,
	})
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), result.Text); err != nil {
		return err
	}

	if flags.verbose {
		summary := &observability.FillSummary{
			RequestID:   result.RequestID,
			Strategy:    result.Strategy,
			Degraded:    result.Degraded,
			SourceChars: len([]rune(source)),
		}
		for _, res := range a.deterministic.Resolve(body, source) {
			line := observability.PlaceholderLine{Name: res.Placeholder, Tried: res.Tried}
			if res.Found {
				line.Value = res.Value
				line.Via = res.Via
			}
			summary.Placeholders = append(summary.Placeholders, line)
		}
		observability.NewPrinter(cmd.ErrOrStderr()).PrintFillSummary(summary)
	}
	return nil
}
