// Package relay delivers messages to the operator account and fans broadcasts
// out to every known user.
package relay

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"

	"contactdesk-bot/internal/database"
	"contactdesk-bot/internal/database/models"
	"contactdesk-bot/internal/locales"
	telegoapi "contactdesk-bot/pkg/telegoapi"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// UserLookup resolves sender details for the operator summary.
type UserLookup interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// Operator sends and forwards messages on behalf of the bot.
type Operator struct {
	bot        telegoapi.BotAPI
	users      UserLookup
	operatorID int64
}

// NewOperator creates a relay that reports to operatorID.
func NewOperator(bot telegoapi.BotAPI, users UserLookup, operatorID int64) (*Operator, error) {
	if bot == nil {
		return nil, fmt.Errorf("telego bot (BotAPI) instance cannot be nil")
	}
	if users == nil {
		return nil, fmt.Errorf("user lookup cannot be nil")
	}
	if operatorID == 0 {
		return nil, fmt.Errorf("operator ID cannot be zero")
	}
	return &Operator{bot: bot, users: users, operatorID: operatorID}, nil
}

func (o *Operator) OperatorID() int64 {
	return o.operatorID
}

// SendText delivers an HTML formatted text to recipient.
func (o *Operator) SendText(ctx context.Context, recipient int64, text string) error {
	_, err := o.bot.SendMessage(ctx, tu.Message(tu.ID(recipient), text).WithParseMode(telego.ModeHTML))
	if err != nil {
		return fmt.Errorf("send to %d: %w", recipient, err)
	}
	return nil
}

// ForwardOriginal forwards messageID from sourceChat to recipient unchanged.
func (o *Operator) ForwardOriginal(ctx context.Context, recipient, sourceChat int64, messageID int) error {
	_, err := o.bot.ForwardMessage(ctx, tu.ForwardMessage(tu.ID(recipient), tu.ID(sourceChat), messageID))
	if err != nil {
		return fmt.Errorf("forward message %d from %d to %d: %w", messageID, sourceChat, recipient, err)
	}
	return nil
}

// NotifyOperator sends body to the operator wrapped with the sender's name, username
// and ID. body must already be HTML-safe.
func (o *Operator) NotifyOperator(ctx context.Context, fromUserID int64, body string) error {
	text := o.envelope(ctx, fromUserID, body)
	if err := o.SendText(ctx, o.operatorID, text); err != nil {
		log.Printf("[Relay User:%d] Failed to notify operator: %v", fromUserID, err)
		sentry.CaptureException(err)
		return err
	}
	return nil
}

func (o *Operator) envelope(ctx context.Context, fromUserID int64, body string) string {
	localizer := locales.NewLocalizer()
	user, err := o.users.GetUser(ctx, fromUserID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("[Relay User:%d] Failed to load sender details: %v", fromUserID, err)
		}
		return locales.GetMessage(localizer, "RelayEnvelopeUnknown", map[string]interface{}{
			"Body":   body,
			"UserID": fromUserID,
		}, nil)
	}

	missing := locales.GetMessage(localizer, "MsgNotAvailable", nil, nil)
	return locales.GetMessage(localizer, "RelayEnvelope", map[string]interface{}{
		"Body":      body,
		"FirstName": orDefault(html.EscapeString(user.FirstName), missing),
		"Username":  orDefault(html.EscapeString(user.Username), missing),
		"UserID":    fromUserID,
	}, nil)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
