package conversation

import (
	"fmt"
	"strings"

	"github.com/jonathan/vacancy-templater/internal/rendering"
	"github.com/jonathan/vacancy-templater/internal/store"
)

// Menu selects the buttons the transport attaches to a reply.
type Menu string

const (
	MenuNone Menu = ""
	// MenuMain is the start menu.
	MenuMain Menu = "main"
	// MenuSetup offers only the setup button.
	MenuSetup Menu = "setup"
	// MenuSaved offers generation right after a template is saved.
	MenuSaved Menu = "saved"
	// MenuBack returns to the start menu.
	MenuBack Menu = "back"
)

// Reply is what the transport sends back for one inbound message.
type Reply struct {
	Text string
	// HTML marks Text as Telegram HTML. Otherwise it is sent as plain text.
	HTML bool
	// Notice is an optional second message, set when a fallback produced
	// the text.
	Notice string
	Menu   Menu
}

const (
	msgWelcome = "Hi! I fill your reply template with details from a vacancy.\n\n" +
		"1. Save a template with placeholders such as [Position] or [Salary].\n" +
		"2. Send me a vacancy text or link and get a ready-to-send message."

	msgHelp = "How it works:\n\n" +
		"/template - save a new template (text first, then a short description)\n" +
		"/show - show the saved template\n" +
		"/generate - fill the template from a vacancy\n" +
		"/description - change only the template description\n" +
		"/cancel - stop the current step\n\n" +
		"Placeholders are words in square brackets: [Position], [Company], [Salary], [Contact]. " +
		"You can also just send a vacancy at any time."

	msgAskBody = "Send me the template text I should use when crafting replies.\n\n" +
		"Mark the fields to fill with square brackets, for example [Position] or [Salary]. Plain text is fine too."
	msgEmptyBody = "The template text is empty. Please send the template as a text message, or /cancel."

	msgAskDescription = "Got the template%s. Now send a short description of when and how to use it, " +
		"or any context I should keep in mind."
	msgSaved      = "Template saved ✅\n\nSend me a vacancy text or link whenever you are ready."
	msgSaveFailed = "Sorry, I could not save the template. Your previous template is unchanged. Please try again later."
	msgBodyLost   = "I lost the template text. Please start again with /template."

	msgAskDescriptionEdit = "Current description:\n%s\n\nSend the new description."
	msgDescriptionSaved   = "Description updated ✅"

	msgNoTemplate        = "No template saved yet. Use /template to add one."
	msgTemplateRequired  = "Please add a template first (use /template)."
	msgAskVacancy        = "Send me the vacancy text or a link to it."
	msgEmptyVacancy      = "The vacancy text is empty. Please send the vacancy as a text message, or /cancel."
	msgGenerationFailed  = "Sorry, I could not fill the template right now. Please try again."
	msgStoreUnavailable  = "Sorry, templates are unavailable right now. Please try again later."
	msgCancelled         = "Cancelled. Nothing was changed."
	msgNothingToCancel   = "Nothing to cancel."
	msgDegraded          = "⚠️ The AI service is unavailable, so the message was filled by simple rules. Please check it before sending."
	noDescriptionDisplay = "(none)"
)

// askDescription names the placeholders found in body.
func askDescription(placeholders []string) string {
	if len(placeholders) == 0 {
		return fmt.Sprintf(msgAskDescription, "")
	}
	quoted := make([]string, len(placeholders))
	for i, p := range placeholders {
		quoted[i] = "[" + p + "]"
	}
	return fmt.Sprintf(msgAskDescription, " with "+strings.Join(quoted, ", "))
}

// showTemplate renders a stored template as Telegram HTML.
func showTemplate(tpl *store.UserTemplate) string {
	description := tpl.Description
	if strings.TrimSpace(description) == "" {
		description = noDescriptionDisplay
	}
	return fmt.Sprintf("<b>Template</b>:\n%s\n\n<b>Description</b>:\n%s",
		rendering.EscapeHTML(tpl.Body), rendering.EscapeHTML(description))
}

func askDescriptionEdit(current string) string {
	if strings.TrimSpace(current) == "" {
		current = noDescriptionDisplay
	}
	return fmt.Sprintf(msgAskDescriptionEdit, current)
}
