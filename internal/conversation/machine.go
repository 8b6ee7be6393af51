package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonathan/vacancy-templater/internal/filler"
	"github.com/jonathan/vacancy-templater/internal/generation"
	"github.com/jonathan/vacancy-templater/internal/observability"
	"github.com/jonathan/vacancy-templater/internal/store"
	"github.com/rs/zerolog"
)

// Command is an explicit user command.
type Command string

const (
	CommandStart           Command = "start"
	CommandSetupTemplate   Command = "setup_template"
	CommandShowTemplate    Command = "show_template"
	CommandGenerate        Command = "generate"
	CommandCancel          Command = "cancel"
	CommandHelp            Command = "help"
	CommandEditDescription Command = "edit_description"
)

var commandNames = map[string]Command{
	"start":            CommandStart,
	"menu":             CommandStart,
	"back_to_menu":     CommandStart,
	"template":         CommandSetupTemplate,
	"setup_template":   CommandSetupTemplate,
	"set_template":     CommandSetupTemplate,
	"show":             CommandShowTemplate,
	"show_template":    CommandShowTemplate,
	"view_template":    CommandShowTemplate,
	"generate":         CommandGenerate,
	"generate_now":     CommandGenerate,
	"cancel":           CommandCancel,
	"help":             CommandHelp,
	"description":      CommandEditDescription,
	"edit_description": CommandEditDescription,
	"set_description":  CommandEditDescription,
}

// ParseCommand maps a command or button name, with or without the leading
// slash and bot mention, to a Command.
func ParseCommand(name string) (Command, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	cmd, ok := commandNames[strings.ToLower(name)]
	return cmd, ok
}

// TemplateStore is the part of store.Store the machine uses.
type TemplateStore interface {
	Get(ctx context.Context, ownerID string) (*store.UserTemplate, error)
	Put(ctx context.Context, ownerID, body, description string) error
}

// Generator fills a template. *generation.Orchestrator implements it.
type Generator interface {
	Generate(ctx context.Context, req filler.Request) (*generation.Result, error)
}

// Expander enriches vacancy text before filling, for example with the
// text of a linked page. It must return its input on failure.
type Expander interface {
	Expand(ctx context.Context, text string) string
}

// Deps are the Machine's collaborators. Expander, Logger and Metrics are
// optional.
type Deps struct {
	Templates TemplateStore
	Generator Generator
	States    StateStore
	Expander  Expander
	Logger    zerolog.Logger
	Metrics   *observability.Metrics
}

// Machine handles inbound commands and text. Messages from one owner are
// processed one at a time; different owners run concurrently.
type Machine struct {
	templates TemplateStore
	generator Generator
	states    StateStore
	expander  Expander
	logger    zerolog.Logger
	metrics   *observability.Metrics
	locks     *keyedMutex
	now       func() time.Time
}

// NewMachine validates deps and returns a Machine. A nil States gets a
// MemoryStateStore.
func NewMachine(deps Deps) (*Machine, error) {
	if deps.Templates == nil {
		return nil, errors.New("conversation: template store is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("conversation: generator is required")
	}
	if deps.States == nil {
		deps.States = NewMemoryStateStore(DefaultStateTTL)
	}
	return &Machine{
		templates: deps.Templates,
		generator: deps.Generator,
		states:    deps.States,
		expander:  deps.Expander,
		logger:    deps.Logger.With().Str("component", "conversation").Logger(),
		metrics:   deps.Metrics,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}, nil
}

// HandleCommand resets any flow in progress, then runs cmd.
func (m *Machine) HandleCommand(ctx context.Context, ownerID string, cmd Command) Reply {
	unlock := m.locks.Lock(ownerID)
	defer unlock()

	ctx, logger := m.withOwner(ctx, ownerID)

	prev := m.states.Get(ownerID)
	if !prev.Idle() {
		logger.Debug().Str("from", string(prev.Phase)).Str("command", string(cmd)).Msg("flow reset by command")
	}
	m.states.Reset(ownerID)

	switch cmd {
	case CommandStart:
		return Reply{Text: msgWelcome, Menu: MenuMain}
	case CommandHelp:
		return Reply{Text: msgHelp, Menu: MenuBack}
	case CommandCancel:
		if prev.Idle() {
			return Reply{Text: msgNothingToCancel, Menu: MenuMain}
		}
		return Reply{Text: msgCancelled, Menu: MenuMain}
	case CommandSetupTemplate:
		m.setPhase(ownerID, PhaseAwaitingTemplateBody, "")
		return Reply{Text: msgAskBody, Menu: MenuBack}
	case CommandShowTemplate:
		return m.showTemplate(ctx, logger, ownerID)
	case CommandGenerate:
		return m.beginGeneration(ctx, logger, ownerID)
	case CommandEditDescription:
		return m.beginDescriptionEdit(ctx, logger, ownerID)
	default:
		logger.Warn().Str("command", string(cmd)).Msg("unknown command")
		return Reply{Text: msgHelp, Menu: MenuMain}
	}
}

// HandleText routes a plain text message by the owner's current phase.
// Text outside any flow is treated as a vacancy to fill.
func (m *Machine) HandleText(ctx context.Context, ownerID, text string) Reply {
	unlock := m.locks.Lock(ownerID)
	defer unlock()

	ctx, logger := m.withOwner(ctx, ownerID)
	state := m.states.Get(ownerID)

	switch state.Phase {
	case PhaseAwaitingTemplateBody:
		return m.receiveBody(logger, ownerID, text)
	case PhaseAwaitingTemplateDescription:
		return m.receiveDescription(ctx, logger, state, text)
	case PhaseAwaitingDescriptionEdit:
		return m.receiveDescriptionEdit(ctx, logger, ownerID, text)
	case PhaseAwaitingVacancyText:
		if strings.TrimSpace(text) == "" {
			return m.reject(logger, &UserInputError{Reason: "empty vacancy", Message: msgEmptyVacancy}, MenuNone)
		}
		m.states.Reset(ownerID)
		return m.generate(ctx, logger, ownerID, text)
	default:
		return m.generate(ctx, logger, ownerID, text)
	}
}

func (m *Machine) withOwner(ctx context.Context, ownerID string) (context.Context, zerolog.Logger) {
	logger := m.logger.With().Str("owner_id", ownerID).Logger()
	return logger.WithContext(ctx), logger
}

func (m *Machine) setPhase(ownerID string, phase Phase, pendingBody string) {
	m.states.Set(State{
		OwnerID:     ownerID,
		Phase:       phase,
		PendingBody: pendingBody,
		UpdatedAt:   m.now(),
	})
}

func (m *Machine) reject(logger zerolog.Logger, err *UserInputError, menu Menu) Reply {
	logger.Debug().Err(err).Msg("input rejected")
	return Reply{Text: err.Message, Menu: menu}
}

// loadTemplate reads the owner's template. A storage failure is logged and
// turned into an apology reply.
func (m *Machine) loadTemplate(ctx context.Context, logger zerolog.Logger, ownerID string) (*store.UserTemplate, *Reply) {
	tpl, err := m.templates.Get(ctx, ownerID)
	if err != nil {
		m.metrics.StoreError("get")
		logger.Error().Err(err).Msg("failed to read template")
		return nil, &Reply{Text: msgStoreUnavailable, Menu: MenuMain}
	}
	return tpl, nil
}

func (m *Machine) showTemplate(ctx context.Context, logger zerolog.Logger, ownerID string) Reply {
	tpl, failure := m.loadTemplate(ctx, logger, ownerID)
	if failure != nil {
		return *failure
	}
	if tpl == nil {
		return Reply{Text: msgNoTemplate, Menu: MenuSetup}
	}
	return Reply{Text: showTemplate(tpl), HTML: true, Menu: MenuBack}
}

func (m *Machine) beginGeneration(ctx context.Context, logger zerolog.Logger, ownerID string) Reply {
	tpl, failure := m.loadTemplate(ctx, logger, ownerID)
	if failure != nil {
		return *failure
	}
	if tpl == nil {
		return m.reject(logger, &UserInputError{Reason: "no template", Message: msgTemplateRequired}, MenuSetup)
	}
	m.setPhase(ownerID, PhaseAwaitingVacancyText, "")
	return Reply{Text: msgAskVacancy}
}

func (m *Machine) beginDescriptionEdit(ctx context.Context, logger zerolog.Logger, ownerID string) Reply {
	tpl, failure := m.loadTemplate(ctx, logger, ownerID)
	if failure != nil {
		return *failure
	}
	if tpl == nil {
		return m.reject(logger, &UserInputError{Reason: "no template", Message: msgTemplateRequired}, MenuSetup)
	}
	m.setPhase(ownerID, PhaseAwaitingDescriptionEdit, "")
	return Reply{Text: askDescriptionEdit(tpl.Description), Menu: MenuBack}
}

func (m *Machine) receiveBody(logger zerolog.Logger, ownerID, text string) Reply {
	body := strings.TrimSpace(text)
	if body == "" {
		return m.reject(logger, &UserInputError{Reason: "empty template body", Message: msgEmptyBody}, MenuNone)
	}
	m.setPhase(ownerID, PhaseAwaitingTemplateDescription, body)
	return Reply{Text: askDescription(filler.Placeholders(body))}
}

// receiveDescription commits the body and description together. On any
// failure the stored template stays as it was.
func (m *Machine) receiveDescription(ctx context.Context, logger zerolog.Logger, state State, text string) Reply {
	m.states.Reset(state.OwnerID)

	if strings.TrimSpace(state.PendingBody) == "" {
		return m.reject(logger, &UserInputError{Reason: "missing template body", Message: msgBodyLost}, MenuSetup)
	}

	if err := m.templates.Put(ctx, state.OwnerID, state.PendingBody, strings.TrimSpace(text)); err != nil {
		m.metrics.StoreError("put")
		logger.Error().Err(err).Msg("failed to save template")
		return Reply{Text: msgSaveFailed, Menu: MenuMain}
	}

	m.metrics.TemplateSaved()
	logger.Info().Int("body_chars", len(state.PendingBody)).Msg("template saved")
	return Reply{Text: msgSaved, Menu: MenuSaved}
}

func (m *Machine) receiveDescriptionEdit(ctx context.Context, logger zerolog.Logger, ownerID, text string) Reply {
	m.states.Reset(ownerID)

	tpl, failure := m.loadTemplate(ctx, logger, ownerID)
	if failure != nil {
		return *failure
	}
	if tpl == nil {
		return m.reject(logger, &UserInputError{Reason: "no template", Message: msgTemplateRequired}, MenuSetup)
	}

	if err := m.templates.Put(ctx, ownerID, tpl.Body, strings.TrimSpace(text)); err != nil {
		m.metrics.StoreError("put")
		logger.Error().Err(err).Msg("failed to update description")
		return Reply{Text: msgSaveFailed, Menu: MenuMain}
	}

	m.metrics.TemplateSaved()
	logger.Info().Msg("template description updated")
	return Reply{Text: msgDescriptionSaved, Menu: MenuSaved}
}

// generate fills the stored template from text. Without a template no
// filler runs.
func (m *Machine) generate(ctx context.Context, logger zerolog.Logger, ownerID, text string) Reply {
	tpl, failure := m.loadTemplate(ctx, logger, ownerID)
	if failure != nil {
		return *failure
	}
	if tpl == nil {
		return m.reject(logger, &UserInputError{Reason: "no template", Message: msgTemplateRequired}, MenuSetup)
	}
	if strings.TrimSpace(text) == "" {
		return m.reject(logger, &UserInputError{Reason: "empty vacancy", Message: msgEmptyVacancy}, MenuNone)
	}

	source := text
	if m.expander != nil {
		source = m.expander.Expand(ctx, text)
	}

	result, err := m.generator.Generate(ctx, filler.Request{
		Body:        tpl.Body,
		Description: tpl.Description,
		SourceText:  source,
	})
	if err != nil {
		logger.Error().Err(err).Msg("generation failed")
		return Reply{Text: msgGenerationFailed, Menu: MenuMain}
	}

	reply := Reply{
		Text: result.Text,
		HTML: result.Markup == filler.MarkupHTML,
	}
	if result.Degraded {
		reply.Notice = msgDegraded
	}
	return reply
}
