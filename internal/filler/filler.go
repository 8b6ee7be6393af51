// Package filler turns a template body and a vacancy text into a filled
// message. Two strategies exist: a language-model filler and a rule-based
// deterministic filler used when the model is unavailable.
package filler

import "context"

// Markup is the formatting of a filler's output.
type Markup string

const (
	// MarkupPlain is sent without a parse mode.
	MarkupPlain Markup = "plain"
	// MarkupHTML is Telegram HTML.
	MarkupHTML Markup = "html"
)

// Request carries everything one generation needs.
type Request struct {
	Body        string
	Description string
	SourceText  string
}

// Filler is one generation strategy.
type Filler interface {
	// Name identifies the strategy in logs and metrics.
	Name() string
	// Markup reports how Fill's output is formatted.
	Markup() Markup
	// Fill returns the filled text or an error. A Filler never returns an
	// empty string with a nil error.
	Fill(ctx context.Context, req Request) (string, error)
}
