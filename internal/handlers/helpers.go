package handlers

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"contactdesk-bot/internal/database/models"
	"contactdesk-bot/internal/locales"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// localizerFor picks the user's language, falling back to the default.
func localizerFor(user *telego.User) *i18n.Localizer {
	if user != nil && user.LanguageCode != "" {
		return locales.NewLocalizer(user.LanguageCode)
	}
	return locales.NewLocalizer()
}

func (h *MessageHandler) msg(req *request, id string, data map[string]interface{}) string {
	return locales.GetMessage(req.localizer, id, data, nil)
}

// reply sends an HTML text to chatID. markup may be nil.
func (h *MessageHandler) reply(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) error {
	params := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
	if markup != nil {
		params = params.WithReplyMarkup(markup)
	}
	if _, err := h.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("reply to chat %d: %w", chatID, err)
	}
	return nil
}

// registerUser creates the user row on first contact and reports whether it
// was new. Failures are logged; routing continues.
func (h *MessageHandler) registerUser(ctx context.Context, from *telego.User) bool {
	created, err := h.store.AddUser(ctx, models.User{
		UserID:       from.ID,
		Username:     from.Username,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		IsBot:        from.IsBot,
		LanguageCode: from.LanguageCode,
	})
	if err != nil {
		log.Printf("[Router User:%d] Failed to add user: %v", from.ID, err)
		sentry.CaptureException(fmt.Errorf("add user %d: %w", from.ID, err))
		return false
	}
	if created {
		log.Printf("[Router User:%d] New user registered (@%s)", from.ID, from.Username)
	}
	return created
}

func (h *MessageHandler) logInbound(ctx context.Context, req *request, entry models.MessageLog) {
	if err := h.store.LogMessage(ctx, entry); err != nil {
		log.Printf("%s Failed to log %s message: %v", req.logPrefix, entry.Type, err)
		sentry.CaptureException(fmt.Errorf("%s log message: %w", req.logPrefix, err))
	}
}

// inboundLogEntry derives the log entry from the message shape.
func inboundLogEntry(message telego.Message) models.MessageLog {
	entry := models.MessageLog{UserID: message.From.ID, Type: models.MessageText, Text: message.Text}
	switch {
	case len(message.Photo) > 0:
		entry.Type = models.MessagePhoto
		entry.Text = message.Caption
		entry.FileID = largestPhoto(message.Photo).FileID
	case message.Video != nil:
		entry.Type = models.MessageVideo
		entry.Text = message.Caption
		entry.FileID = message.Video.FileID
	case message.Document != nil:
		entry.Type = models.MessageDocument
		entry.Text = message.Caption
		entry.FileID = message.Document.FileID
	case message.Contact != nil:
		entry.Type = models.MessageContact
		entry.Text = message.Contact.PhoneNumber
	case message.Location != nil:
		entry.Type = models.MessageLocation
		entry.Text = fmt.Sprintf("%f,%f", message.Location.Latitude, message.Location.Longitude)
	}
	return entry
}

// largestPhoto returns the last size, which Telegram orders largest last.
func largestPhoto(sizes []telego.PhotoSize) telego.PhotoSize {
	return sizes[len(sizes)-1]
}

// notifyOperator relays body to the operator. Failures are logged by the
// relay and never reach the user.
func (h *MessageHandler) notifyOperator(ctx context.Context, req *request, body string) {
	if err := h.relay.NotifyOperator(ctx, req.userID, body); err != nil {
		log.Printf("%s Operator was not notified: %v", req.logPrefix, err)
	}
}

// forwardToOperator forwards the original message to the operator.
func (h *MessageHandler) forwardToOperator(ctx context.Context, req *request, message telego.Message) {
	if err := h.relay.ForwardOriginal(ctx, h.relay.OperatorID(), message.Chat.ID, message.MessageID); err != nil {
		log.Printf("%s Failed to forward message %d: %v", req.logPrefix, message.MessageID, err)
		sentry.CaptureException(fmt.Errorf("%s forward: %w", req.logPrefix, err))
	}
}

// relayText renders an operator-facing text in the default language.
func relayText(id string, data map[string]interface{}) string {
	return locales.GetMessage(operatorLocalizer(), id, data, nil)
}

func escape(s string) string {
	return html.EscapeString(s)
}

// orNA returns the escaped value, or the localized "not available" text.
func (h *MessageHandler) orNA(req *request, v string) string {
	if strings.TrimSpace(v) == "" {
		return h.msg(req, "MsgNotAvailable", nil)
	}
	return escape(v)
}

// displayName is the name used in greetings.
func displayName(user *telego.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.Username
	}
	return name
}
