package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"contactdesk-bot/internal/auth"
	"contactdesk-bot/internal/database"
	"contactdesk-bot/internal/database/models"
	"contactdesk-bot/internal/events"
	"contactdesk-bot/internal/session"

	"github.com/getsentry/sentry-go"
)

// submissionCapture ties a capture state to its category and texts.
type submissionCapture struct {
	category models.Category
	relayID  string
	ackID    string
}

var submissionCaptures = map[session.State]submissionCapture{
	session.StateFeedback:   {models.CategoryFeedback, "RelayFeedback", "MsgFeedbackReceived"},
	session.StateSuggestion: {models.CategorySuggestion, "RelaySuggestion", "MsgSuggestionReceived"},
	session.StateComplaint:  {models.CategoryComplaint, "RelayComplaint", "MsgComplaintReceived"},
	session.StateQuestion:   {models.CategoryQuestion, "RelayQuestion", "MsgQuestionReceived"},
}

func (h *MessageHandler) captureTable() map[session.State]func(context.Context, *request) error {
	captures := map[session.State]func(context.Context, *request) error{
		session.StateFreeText:         h.completeFreeText,
		session.StatePromoCode:        h.completePromoCode,
		session.StateAdminPassword:    h.completeAdminPassword,
		session.StateAdminBroadcast:   h.completeBroadcast,
		session.StateAdminPromoCreate: h.completePromoCreate,
	}
	for state, sc := range submissionCaptures {
		captures[state] = h.completeSubmission(sc)
	}
	return captures
}

func (h *MessageHandler) completeFreeText(ctx context.Context, req *request) error {
	h.tracker.Clear(req.userID)
	h.notifyOperator(ctx, req, relayText("RelayText", map[string]interface{}{"Text": escape(req.msg.Text)}))
	return h.reply(ctx, req.chatID, h.msg(req, "MsgTextReceived", nil), mainMenuKeyboard(req.localizer))
}

func (h *MessageHandler) completeSubmission(sc submissionCapture) func(context.Context, *request) error {
	return func(ctx context.Context, req *request) error {
		h.tracker.Clear(req.userID)
		text := req.msg.Text

		if err := h.store.AddSubmission(ctx, sc.category, req.userID, text); err != nil {
			return h.storeFailure(ctx, req, "store "+string(sc.category), err)
		}

		evt := events.NewSubmissionEvent(sc.category, req.userID, text)
		if err := h.events.PublishSubmission(ctx, evt); err != nil {
			log.Printf("%s Failed to publish event %s: %v", req.logPrefix, evt.EventID, err)
			sentry.CaptureException(fmt.Errorf("%s publish submission event: %w", req.logPrefix, err))
		}

		h.notifyOperator(ctx, req, relayText(sc.relayID, map[string]interface{}{"Text": escape(text)}))
		return h.reply(ctx, req.chatID, h.msg(req, sc.ackID, nil), mainMenuKeyboard(req.localizer))
	}
}

// completePromoCode checks the code. Inactive and unknown codes get the same
// answer; redemption does not change the stored code.
func (h *MessageHandler) completePromoCode(ctx context.Context, req *request) error {
	h.tracker.Clear(req.userID)
	code := strings.TrimSpace(req.msg.Text)

	promo, err := h.store.CheckPromoCode(ctx, code)
	if errors.Is(err, database.ErrNotFound) {
		return h.reply(ctx, req.chatID, h.msg(req, "MsgPromoInvalid", nil), mainMenuKeyboard(req.localizer))
	}
	if err != nil {
		return h.storeFailure(ctx, req, "check promo code", err)
	}

	h.notifyOperator(ctx, req, relayText("RelayPromoUsed", map[string]interface{}{"Code": escape(promo.Code)}))
	text := h.msg(req, "MsgPromoActivated", map[string]interface{}{
		"Code":        escape(promo.Code),
		"Description": escape(promo.Description),
	})
	return h.reply(ctx, req.chatID, text, mainMenuKeyboard(req.localizer))
}

// completeAdminPassword verifies the password. Only the privileged identity
// gets a comparison; a wrong password keeps the dialogue open.
func (h *MessageHandler) completeAdminPassword(ctx context.Context, req *request) error {
	if !h.gate.IsPrivileged(req.userID) {
		h.tracker.Clear(req.userID)
		log.Printf("%s Password reply from non-privileged identity", req.logPrefix)
		return h.reply(ctx, req.chatID, h.msg(req, "MsgNotAdmin", nil), mainMenuKeyboard(req.localizer))
	}

	err := h.gate.Login(ctx, req.userID, req.msg.Text)
	switch {
	case err == nil:
		h.tracker.Clear(req.userID)
		log.Printf("%s Admin logged in", req.logPrefix)
		return h.reply(ctx, req.chatID, h.msg(req, "MsgAdminLoginSuccess", nil), adminMenuKeyboard(req.localizer))
	case errors.Is(err, auth.ErrWrongPassword):
		log.Printf("%s Wrong admin password", req.logPrefix)
		return h.reply(ctx, req.chatID, h.msg(req, "MsgAdminWrongPassword", nil), cancelKeyboard(req.localizer))
	case errors.Is(err, auth.ErrNotPrivileged):
		h.tracker.Clear(req.userID)
		return h.reply(ctx, req.chatID, h.msg(req, "MsgNotAdmin", nil), mainMenuKeyboard(req.localizer))
	default:
		h.tracker.Clear(req.userID)
		return h.storeFailure(ctx, req, "store admin session", err)
	}
}

func (h *MessageHandler) completeBroadcast(ctx context.Context, req *request) error {
	h.tracker.Clear(req.userID)
	if allowed, err := h.requireAdmin(ctx, req); err != nil || !allowed {
		return err
	}

	users, err := h.store.ListUsers(ctx)
	if err != nil {
		return h.storeFailure(ctx, req, "list users", err)
	}
	recipients := make([]int64, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, u.UserID)
	}

	if err := h.reply(ctx, req.chatID, h.msg(req, "MsgAdminBroadcastSending", nil), nil); err != nil {
		log.Printf("%s %v", req.logPrefix, err)
	}

	// The run is not bound to the update deadline, only to the process.
	runCtx, cancel := context.WithTimeout(h.baseCtx, h.broadcastTimeout)
	result := h.broadcaster.Broadcast(runCtx, recipients, escape(req.msg.Text))
	cancel()
	log.Printf("%s Broadcast %s finished: %d succeeded, %d failed", req.logPrefix, result.RunID, result.Succeeded, result.Failed)

	reportCtx, cancelReport := context.WithTimeout(context.WithoutCancel(ctx), broadcastReportTimeout)
	defer cancelReport()

	text := h.msg(req, "MsgAdminBroadcastResult", map[string]interface{}{
		"Succeeded": result.Succeeded,
		"Failed":    result.Failed,
		"Total":     result.Total(),
	})
	return h.reply(reportCtx, req.chatID, text, adminMenuKeyboard(req.localizer))
}

// parsePromoInput splits "CODE|DESCRIPTION" on the first '|'. Both parts are
// trimmed; the code must not be empty.
func parsePromoInput(text string) (code, description string, ok bool) {
	code, description, found := strings.Cut(text, "|")
	if !found {
		return "", "", false
	}
	code = strings.TrimSpace(code)
	description = strings.TrimSpace(description)
	if code == "" {
		return "", "", false
	}
	return code, description, true
}

// completePromoCreate stores a new promo code. The dialogue is closed even
// when the input is malformed.
func (h *MessageHandler) completePromoCreate(ctx context.Context, req *request) error {
	h.tracker.Clear(req.userID)
	if allowed, err := h.requireAdmin(ctx, req); err != nil || !allowed {
		return err
	}

	code, description, ok := parsePromoInput(req.msg.Text)
	if !ok {
		return h.reply(ctx, req.chatID, h.msg(req, "MsgAdminPromoBadFormat", nil), adminMenuKeyboard(req.localizer))
	}

	err := h.store.AddPromoCode(ctx, code, description)
	if errors.Is(err, database.ErrAlreadyExists) {
		return h.reply(ctx, req.chatID, h.msg(req, "MsgAdminPromoExists", nil), adminMenuKeyboard(req.localizer))
	}
	if err != nil {
		return h.storeFailure(ctx, req, "add promo code", err)
	}

	log.Printf("%s Promo code %q created", req.logPrefix, code)
	text := h.msg(req, "MsgAdminPromoCreated", map[string]interface{}{"Code": escape(code)})
	return h.reply(ctx, req.chatID, text, adminMenuKeyboard(req.localizer))
}
