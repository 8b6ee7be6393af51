package generation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/vacancy-templater/internal/filler"
	"github.com/jonathan/vacancy-templater/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFiller struct {
	name   string
	markup filler.Markup
	text   string
	err    error
	calls  int
}

func (s *stubFiller) Name() string          { return s.name }
func (s *stubFiller) Markup() filler.Markup { return s.markup }
func (s *stubFiller) Fill(_ context.Context, _ filler.Request) (string, error) {
	s.calls++
	return s.text, s.err
}

func failingAI() *stubFiller {
	return &stubFiller{
		name:   "ai",
		markup: filler.MarkupHTML,
		err:    &filler.UpstreamError{Message: "model call failed", Cause: errors.New("503")},
	}
}

func TestGenerate_FallbackEqualsDeterministicOutput(t *testing.T) {
	req := filler.Request{
		Body:        "Position: [Position]\nCompany: [Company]\nContact: [Contact]",
		Description: "vacancy post",
		SourceText:  "Role: Engineer\nEmployer: Acme\nWrite to jobs@acme.io",
	}
	deterministic := filler.NewDeterministic(nil)
	ai := failingAI()

	o, err := New(Chain(ai, deterministic), zerolog.Nop(), nil)
	require.NoError(t, err)

	result, err := o.Generate(context.Background(), req)
	require.NoError(t, err)

	want, err := deterministic.Fill(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, want, result.Text)
	assert.Equal(t, "deterministic", result.Strategy)
	assert.Equal(t, filler.MarkupPlain, result.Markup)
	assert.True(t, result.Degraded)
	assert.Equal(t, []string{"ai"}, result.Failed)
	assert.Equal(t, 1, ai.calls)
}

func TestGenerate_PrimarySucceeds(t *testing.T) {
	ai := &stubFiller{name: "ai", markup: filler.MarkupHTML, text: "<b>Engineer</b>"}
	fallback := &stubFiller{name: "deterministic", markup: filler.MarkupPlain, text: "Engineer"}

	o, err := New(Chain(ai, fallback), zerolog.Nop(), nil)
	require.NoError(t, err)

	result, err := o.Generate(context.Background(), filler.Request{Body: "[Position]"})
	require.NoError(t, err)
	assert.Equal(t, "<b>Engineer</b>", result.Text)
	assert.Equal(t, "ai", result.Strategy)
	assert.Equal(t, filler.MarkupHTML, result.Markup)
	assert.False(t, result.Degraded)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 0, fallback.calls)

	_, err = uuid.Parse(result.RequestID)
	assert.NoError(t, err)
}

func TestGenerate_NoCredentialGoesStraightToDeterministic(t *testing.T) {
	o, err := New(Chain(nil, filler.NewDeterministic(nil)), zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"deterministic"}, o.Strategies())

	result, err := o.Generate(context.Background(), filler.Request{
		Body:       "Position: [Position]\nCompany: [Company]",
		SourceText: "Position: Engineer\nCompany: Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "Position: Engineer\nCompany: Acme", result.Text)
	assert.False(t, result.Degraded)
}

func TestGenerate_BlankTextIsAFailure(t *testing.T) {
	blank := &stubFiller{name: "ai", text: "  "}
	fallback := &stubFiller{name: "deterministic", text: "ok"}

	o, err := New(Chain(blank, fallback), zerolog.Nop(), nil)
	require.NoError(t, err)

	result, err := o.Generate(context.Background(), filler.Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
	assert.True(t, result.Degraded)
}

func TestGenerate_AllStrategiesFail(t *testing.T) {
	first := failingAI()
	second := &stubFiller{name: "second", err: errors.New("disk on fire")}

	o, err := New([]filler.Filler{first, second}, zerolog.Nop(), nil)
	require.NoError(t, err)

	result, err := o.Generate(context.Background(), filler.Request{})
	assert.Nil(t, result)

	var genErr *Error
	require.True(t, errors.As(err, &genErr))
	var upstream *filler.UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestGenerate_MetricsAndLogs(t *testing.T) {
	metrics := observability.NewMetrics()
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	o, err := New(Chain(failingAI(), filler.NewDeterministic(nil)), zerolog.Nop(), metrics)
	require.NoError(t, err)

	ctx := logger.With().Str("owner_id", "42").Logger().WithContext(context.Background())
	_, err = o.Generate(ctx, filler.Request{Body: "[Position]", SourceText: "Position: QA"})
	require.NoError(t, err)

	failures, err := testutil.GatherAndCount(metrics.Registry(), "vacancy_strategy_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, failures)

	expected := `
# HELP vacancy_degraded_generations_total Generations served by a fallback strategy.
# TYPE vacancy_degraded_generations_total counter
vacancy_degraded_generations_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "vacancy_degraded_generations_total"))

	out := logs.String()
	assert.Contains(t, out, `"owner_id":"42"`)
	assert.Contains(t, out, `"request_id"`)
	assert.Contains(t, out, "strategy failed, trying next")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, zerolog.Nop(), nil)
	assert.Error(t, err)

	_, err = New([]filler.Filler{nil}, zerolog.Nop(), nil)
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	d := filler.NewDeterministic(nil)
	ai := failingAI()

	assert.Equal(t, []filler.Filler{d}, Chain(nil, d))
	assert.Equal(t, []filler.Filler{ai, d}, Chain(ai, d))
}
