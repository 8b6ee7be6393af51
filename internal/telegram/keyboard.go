package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonathan/vacancy-templater/internal/conversation"
)

// Button labels.
const (
	buttonSetTemplate    = "📝 New template"
	buttonViewTemplate   = "📋 Show template"
	buttonGenerate       = "🚀 Fill from vacancy"
	buttonSetDescription = "✏️ Edit description"
	buttonHelp           = "ℹ️ Help"
	buttonBack           = "« Back to menu"
)

// Callback data understood by conversation.ParseCommand.
const (
	callbackSetTemplate    = "set_template"
	callbackViewTemplate   = "view_template"
	callbackGenerate       = "generate_now"
	callbackSetDescription = "set_description"
	callbackHelp           = "help"
	callbackBack           = "back_to_menu"
)

// keyboard returns the inline keyboard for menu, or nil for MenuNone.
func keyboard(menu conversation.Menu) *tgbotapi.InlineKeyboardMarkup {
	var markup tgbotapi.InlineKeyboardMarkup
	switch menu {
	case conversation.MenuMain:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonSetTemplate, callbackSetTemplate)),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonViewTemplate, callbackViewTemplate)),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonGenerate, callbackGenerate)),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonSetDescription, callbackSetDescription)),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonHelp, callbackHelp)),
		)
	case conversation.MenuSetup:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonSetTemplate, callbackSetTemplate)),
		)
	case conversation.MenuSaved:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonGenerate, callbackGenerate)),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonBack, callbackBack)),
		)
	case conversation.MenuBack:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonBack, callbackBack)),
		)
	default:
		return nil
	}
	return &markup
}

// BotCommands is the command list registered with Telegram.
func BotCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Main menu"},
		{Command: "template", Description: "Save a new template"},
		{Command: "show", Description: "Show the saved template"},
		{Command: "generate", Description: "Fill the template from a vacancy"},
		{Command: "description", Description: "Edit the template description"},
		{Command: "cancel", Description: "Stop the current step"},
		{Command: "help", Description: "How it works"},
	}
}
