// Package generation runs filler strategies in order until one succeeds.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/vacancy-templater/internal/filler"
	"github.com/jonathan/vacancy-templater/internal/observability"
	"github.com/rs/zerolog"
)

// Result is one successful generation.
type Result struct {
	RequestID string
	Text      string
	Strategy  string
	Markup    filler.Markup
	// Degraded is true when an earlier strategy failed and a fallback
	// produced the text.
	Degraded bool
	// Failed lists the strategies that failed before Strategy succeeded.
	Failed []string
}

// Orchestrator holds an ordered list of strategies. The last one should
// be a filler that cannot fail.
type Orchestrator struct {
	strategies []filler.Filler
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// New creates an orchestrator.
func New(strategies []filler.Filler, logger zerolog.Logger, metrics *observability.Metrics) (*Orchestrator, error) {
	if len(strategies) == 0 {
		return nil, &Error{Message: "at least one strategy is required"}
	}
	for i, s := range strategies {
		if s == nil {
			return nil, &Error{Message: fmt.Sprintf("strategy %d is nil", i)}
		}
	}
	return &Orchestrator{
		strategies: append([]filler.Filler(nil), strategies...),
		logger:     logger.With().Str("component", "orchestrator").Logger(),
		metrics:    metrics,
	}, nil
}

// Strategies returns the strategy names in the order they are tried.
func (o *Orchestrator) Strategies() []string {
	names := make([]string, len(o.strategies))
	for i, s := range o.strategies {
		names[i] = s.Name()
	}
	return names
}

// Generate tries each strategy in order and returns the first text. A
// strategy that errors or returns blank text is logged, counted and
// skipped.
func (o *Orchestrator) Generate(ctx context.Context, req filler.Request) (*Result, error) {
	requestID := uuid.NewString()
	logger := o.loggerFor(ctx).With().Str("request_id", requestID).Logger()

	var failures []error
	var failed []string
	for _, strategy := range o.strategies {
		name := strategy.Name()
		started := time.Now()

		text, err := strategy.Fill(ctx, req)
		if err == nil && strings.TrimSpace(text) == "" {
			err = fmt.Errorf("strategy %s returned empty text", name)
		}
		if err != nil {
			o.metrics.StrategyFailed(name)
			logger.Warn().
				Err(err).
				Str("strategy", name).
				Bool("upstream", isUpstream(err)).
				Dur("elapsed", time.Since(started)).
				Msg("strategy failed, trying next")
			failures = append(failures, fmt.Errorf("%s: %w", name, err))
			failed = append(failed, name)
			continue
		}

		degraded := len(failed) > 0
		o.metrics.GenerationCompleted(name, degraded)
		logger.Info().
			Str("strategy", name).
			Bool("degraded", degraded).
			Dur("elapsed", time.Since(started)).
			Msg("generation completed")

		return &Result{
			RequestID: requestID,
			Text:      text,
			Strategy:  name,
			Markup:    strategy.Markup(),
			Degraded:  degraded,
			Failed:    failed,
		}, nil
	}

	logger.Error().Strs("failed", failed).Msg("all strategies failed")
	return nil, &Error{Message: "all strategies failed", Cause: errors.Join(failures...)}
}

// loggerFor prefers a logger carried by ctx, which callers use to attach
// the owner id.
func (o *Orchestrator) loggerFor(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l.With().Str("component", "orchestrator").Logger()
	}
	return o.logger
}

func isUpstream(err error) bool {
	var upstream *filler.UpstreamError
	return errors.As(err, &upstream)
}

// Chain builds the strategy list: primary first when it is configured,
// then the fallback.
func Chain(primary, fallback filler.Filler) []filler.Filler {
	if primary == nil {
		return []filler.Filler{fallback}
	}
	return []filler.Filler{primary, fallback}
}
