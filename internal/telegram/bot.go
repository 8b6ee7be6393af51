// Package telegram connects the conversation machine to the Telegram Bot
// API through long polling.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonathan/vacancy-templater/internal/conversation"
	"github.com/jonathan/vacancy-templater/internal/observability"
	"github.com/rs/zerolog"
)

// DefaultPollTimeout is the long polling timeout in seconds.
const DefaultPollTimeout = 60

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler processes one owner's command or text. *conversation.Machine
// implements it.
type Handler interface {
	HandleCommand(ctx context.Context, ownerID string, cmd conversation.Command) conversation.Reply
	HandleText(ctx context.Context, ownerID, text string) conversation.Reply
}

// Bot dispatches updates to a Handler. Updates of one owner are handled
// one at a time in arrival order; different owners run concurrently.
type Bot struct {
	api     API
	handler Handler
	logger  zerolog.Logger
	metrics *observability.Metrics

	wg sync.WaitGroup

	// mu guards queues. An owner has an entry exactly while a drain
	// goroutine is running for it.
	mu     sync.Mutex
	queues map[string][]tgbotapi.Update
}

// Connect authorizes token with Telegram and registers the command list.
func Connect(token string, logger zerolog.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")

	if _, err := api.Request(tgbotapi.NewSetMyCommands(BotCommands()...)); err != nil {
		logger.Warn().Err(err).Msg("failed to register bot commands")
	}
	return api, nil
}

// New creates a Bot on top of api.
func New(api API, handler Handler, logger zerolog.Logger, metrics *observability.Metrics) *Bot {
	return &Bot{
		api:     api,
		handler: handler,
		logger:  logger.With().Str("component", "telegram").Logger(),
		metrics: metrics,
		queues:  make(map[string][]tgbotapi.Update),
	}
}

// Run polls for updates until ctx is done or the update channel closes,
// then waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = DefaultPollTimeout

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info().Msg("polling for updates")
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info().Msg("stopped polling")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

// dispatch queues update behind the owner's pending updates and starts a
// drain goroutine when none is running.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	key := updateOwner(update)

	b.mu.Lock()
	pending, running := b.queues[key]
	b.queues[key] = append(pending, update)
	b.mu.Unlock()
	if running {
		return
	}

	b.wg.Add(1)
	go b.drain(ctx, key)
}

func (b *Bot) drain(ctx context.Context, key string) {
	defer b.wg.Done()
	for {
		b.mu.Lock()
		pending := b.queues[key]
		if len(pending) == 0 {
			delete(b.queues, key)
			b.mu.Unlock()
			return
		}
		update := pending[0]
		pending[0] = tgbotapi.Update{}
		b.queues[key] = pending[1:]
		b.mu.Unlock()

		b.handleUpdate(ctx, update)
	}
}

// updateOwner returns the owner an update is ordered by. Updates with no
// sender share one queue.
func updateOwner(update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		var chatID int64
		if update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
		return ownerOf(update.CallbackQuery.From, chatID)
	case update.Message != nil:
		var chatID int64
		if update.Message.Chat != nil {
			chatID = update.Message.Chat.ID
		}
		return ownerOf(update.Message.From, chatID)
	}
	return ""
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Int("update_id", update.UpdateID).Msg("update handler panicked")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	default:
		b.metrics.UpdateReceived("other")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ownerID := ownerOf(msg.From, chatID)

	if msg.IsCommand() {
		b.metrics.UpdateReceived("command")
		cmd, ok := conversation.ParseCommand(msg.Command())
		if !ok {
			cmd = conversation.CommandHelp
		}
		b.send(chatID, b.handler.HandleCommand(ctx, ownerID, cmd))
		return
	}

	b.metrics.UpdateReceived("text")
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug().Err(err).Msg("failed to send typing action")
	}
	b.send(chatID, b.handler.HandleText(ctx, ownerID, text))
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	b.metrics.UpdateReceived("callback")

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Debug().Err(err).Msg("failed to answer callback")
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	cmd, ok := conversation.ParseCommand(query.Data)
	if !ok {
		b.logger.Warn().Str("data", query.Data).Msg("unknown callback data")
		return
	}
	b.send(chatID, b.handler.HandleCommand(ctx, ownerOf(query.From, chatID), cmd))
}

// send delivers a reply, split to fit Telegram's limit. The menu goes on
// the last chunk and the notice follows as its own message.
func (b *Bot) send(chatID int64, reply conversation.Reply) {
	chunks := SplitMessage(reply.Text, MaxMessageLength)
	if reply.HTML {
		chunks = SplitHTML(reply.Text, MaxMessageLength)
	}
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.DisableWebPagePreview = true
		if reply.HTML {
			msg.ParseMode = tgbotapi.ModeHTML
		}
		if i == len(chunks)-1 {
			if markup := keyboard(reply.Menu); markup != nil {
				msg.ReplyMarkup = markup
			}
		}

		if _, err := b.api.Send(msg); err != nil {
			if !reply.HTML {
				b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
				return
			}
			// Telegram rejects malformed HTML; resend the chunk as plain text.
			b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("html rejected, resending as plain text")
			msg.ParseMode = ""
			if _, err := b.api.Send(msg); err != nil {
				b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
				return
			}
		}
	}

	if reply.Notice != "" {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, reply.Notice)); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send notice")
		}
	}
}

func ownerOf(user *tgbotapi.User, chatID int64) string {
	if user != nil {
		return strconv.FormatInt(user.ID, 10)
	}
	return strconv.FormatInt(chatID, 10)
}
