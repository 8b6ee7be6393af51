package ingestion

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// MaxPageRunes bounds how much page text is appended to a vacancy.
const MaxPageRunes = 6000

var urlRe = regexp.MustCompile(`https?://[^\s<>"'\x60]+`)

// FindURL returns the first http(s) URL in text, without trailing
// punctuation, or "" when there is none.
func FindURL(text string) string {
	match := urlRe.FindString(text)
	return strings.TrimRight(match, ".,;:!?)]}»")
}

// Expander enriches vacancy text that links to a posting with the text of
// the linked page.
type Expander struct {
	opts    Options
	enabled bool
}

// NewExpander returns an Expander. A disabled Expander returns text
// unchanged.
func NewExpander(opts Options, enabled bool) *Expander {
	return &Expander{opts: opts, enabled: enabled}
}

// Expand returns text followed by the linked page's text. Any fetch or
// extraction failure is logged and the original text is returned.
func (e *Expander) Expand(ctx context.Context, text string) string {
	if e == nil || !e.enabled {
		return text
	}
	link := FindURL(text)
	if link == "" {
		return text
	}

	logger := e.opts.Logger
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger.GetLevel() != zerolog.Disabled {
		logger = *ctxLogger
	}
	opts := e.opts
	opts.Logger = logger

	page, metadata, err := IngestFromURL(ctx, link, &opts)
	if err != nil {
		logger.Warn().Err(err).Str("url", link).Msg("vacancy link expansion failed, using message text")
		return text
	}

	logger.Info().
		Str("url", link).
		Str("platform", metadata.Platform).
		Str("hash", metadata.Hash).
		Msg("vacancy link expanded")

	return strings.TrimSpace(text) + "\n\n" + truncateRunes(page, MaxPageRunes)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
