package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"contactdesk-bot/internal/database"
	"contactdesk-bot/internal/session"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// timeLayout formats timestamps shown to users and the operator.
const timeLayout = "2006-01-02 15:04"

func (h *MessageHandler) intentTable() map[Intent]intentRoute {
	return map[Intent]intentRoute{
		IntentStart:        {handle: h.handleStart},
		IntentMainMenu:     {label: "BtnMainMenu", handle: h.handleMainMenu},
		IntentCancel:       {label: "BtnCancel", handle: h.handleCancel},
		IntentSendText:     {label: "BtnSendText", handle: h.startCapture(session.StateFreeText, "MsgPromptText")},
		IntentSendPhoto:    {label: "BtnSendPhoto", handle: h.prompt("MsgPromptPhoto", cancelKeyboard)},
		IntentSendVideo:    {label: "BtnSendVideo", handle: h.prompt("MsgPromptVideo", cancelKeyboard)},
		IntentSendDocument: {label: "BtnSendDocument", handle: h.prompt("MsgPromptDocument", cancelKeyboard)},
		IntentSendContact:  {label: "BtnSendContact", handle: h.prompt("MsgPromptContact", contactKeyboard)},
		IntentSendLocation: {label: "BtnSendLocation", handle: h.prompt("MsgPromptLocation", locationKeyboard)},
		IntentFeedback:     {label: "BtnFeedback", handle: h.startCapture(session.StateFeedback, "MsgPromptFeedback")},
		IntentSuggestion:   {label: "BtnSuggestion", handle: h.startCapture(session.StateSuggestion, "MsgPromptSuggestion")},
		IntentComplaint:    {label: "BtnComplaint", handle: h.startCapture(session.StateComplaint, "MsgPromptComplaint")},
		IntentQuestion:     {label: "BtnQuestion", handle: h.startCapture(session.StateQuestion, "MsgPromptQuestion")},
		IntentPersonalInfo: {label: "BtnPersonalInfo", handle: h.handlePersonalInfo},
		IntentStats:        {label: "BtnStats", handle: h.handleStats},
		IntentFAQ:          {label: "BtnFAQ", handle: h.handleFAQ},
		IntentPromoCode:    {label: "BtnPromoCode", handle: h.startCapture(session.StatePromoCode, "MsgPromptPromoCode")},
		IntentChannel:      {label: "BtnChannel", handle: h.handleChannel},

		IntentResume:       {label: "BtnResume", handle: h.placeholder("MsgResume")},
		IntentContactUs:    {label: "BtnContactUs", handle: h.placeholder("MsgContactUs")},
		IntentPhotoGallery: {label: "BtnPhotoGallery", handle: h.placeholder("MsgPhotoGallery")},
		IntentVideoGallery: {label: "BtnVideoGallery", handle: h.placeholder("MsgVideoGallery")},
		IntentNews:         {label: "BtnNews", handle: h.placeholder("MsgNews")},
		IntentReferral:     {label: "BtnReferral", handle: h.placeholder("MsgReferral")},
		IntentPrices:       {label: "BtnPrices", handle: h.placeholder("MsgPrices")},
		IntentFreeServices: {label: "BtnFreeServices", handle: h.placeholder("MsgFreeServices")},
		IntentPaidServices: {label: "BtnPaidServices", handle: h.placeholder("MsgPaidServices")},
		IntentWriteAdmin:   {label: "BtnWriteAdmin", handle: h.placeholder("MsgWriteAdmin")},
		IntentAcquaintance: {label: "BtnAcquaintance", handle: h.placeholder("MsgAcquaintance")},
		IntentSupportApp:   {label: "BtnSupportApp", handle: h.placeholder("MsgSupportApp")},

		IntentAdminLogin:          {handle: h.handleAdminLogin},
		IntentAdminLogout:         {label: "BtnAdminLogout", admin: true, handle: h.handleAdminLogout},
		IntentAdminUsers:          {label: "BtnAdminUsers", admin: true, handle: h.handleAdminUsers},
		IntentAdminStats:          {label: "BtnAdminStats", admin: true, handle: h.handleAdminStats},
		IntentAdminBroadcast:      {label: "BtnAdminBroadcast", admin: true, handle: h.startCapture(session.StateAdminBroadcast, "MsgAdminPromptBroadcast")},
		IntentAdminPromoCreate:    {label: "BtnAdminPromoCreate", admin: true, handle: h.startCapture(session.StateAdminPromoCreate, "MsgAdminPromptPromoCreate")},
		IntentAdminFeedback:       {label: "BtnAdminFeedback", admin: true, handle: h.listSubmissions(listingFeedback)},
		IntentAdminSuggestions:    {label: "BtnAdminSuggestions", admin: true, handle: h.listSubmissions(listingSuggestions)},
		IntentAdminComplaints:     {label: "BtnAdminComplaints", admin: true, handle: h.listSubmissions(listingComplaints)},
		IntentAdminQuestions:      {label: "BtnAdminQuestions", admin: true, handle: h.listSubmissions(listingQuestions)},
		IntentAdminMessageUser:    {label: "BtnAdminMessageUser", admin: true, handle: h.placeholder("MsgAdminMessageUser")},
		IntentAdminCustomKeyboard: {label: "BtnAdminCustomKeyboard", admin: true, handle: h.placeholder("MsgAdminCustomKeyboard")},
		IntentAdminMediaUpload:    {label: "BtnAdminMediaUpload", admin: true, handle: h.placeholder("MsgAdminMediaUpload")},
		IntentAdminPayments:       {label: "BtnAdminPayments", admin: true, handle: h.placeholder("MsgAdminPayments")},
		IntentAdminLogs:           {label: "BtnAdminLogs", admin: true, handle: h.placeholder("MsgAdminLogs")},
	}
}

func (h *MessageHandler) handleStart(ctx context.Context, req *request) error {
	h.tracker.Clear(req.userID)

	msgID := "MsgWelcomeBack"
	if req.isNew {
		msgID = "MsgWelcomeNew"
	}
	text := h.msg(req, msgID, map[string]interface{}{"Name": escape(displayName(req.msg.From))})
	return h.reply(ctx, req.chatID, text, mainMenuKeyboard(req.localizer))
}

func (h *MessageHandler) handleMainMenu(ctx context.Context, req *request) error {
	h.tracker.Clear(req.userID)
	return h.reply(ctx, req.chatID, h.msg(req, "MsgMainMenu", nil), mainMenuKeyboard(req.localizer))
}

func (h *MessageHandler) handleCancel(ctx context.Context, req *request) error {
	h.tracker.Clear(req.userID)
	return h.reply(ctx, req.chatID, h.msg(req, "MsgCancelled", nil), mainMenuKeyboard(req.localizer))
}

// startCapture opens a single-reply dialogue, replacing any open one.
func (h *MessageHandler) startCapture(state session.State, promptID string) func(context.Context, *request) error {
	return func(ctx context.Context, req *request) error {
		h.tracker.Set(req.userID, state)
		return h.reply(ctx, req.chatID, h.msg(req, promptID, nil), cancelKeyboard(req.localizer))
	}
}

// prompt asks for a media, contact or location message. No dialogue is
// opened: those shapes are handled whenever they arrive.
func (h *MessageHandler) prompt(promptID string, keyboard func(*i18n.Localizer) *telego.ReplyKeyboardMarkup) func(context.Context, *request) error {
	return func(ctx context.Context, req *request) error {
		return h.reply(ctx, req.chatID, h.msg(req, promptID, nil), keyboard(req.localizer))
	}
}

func (h *MessageHandler) placeholder(msgID string) func(context.Context, *request) error {
	return func(ctx context.Context, req *request) error {
		return h.reply(ctx, req.chatID, h.msg(req, msgID, nil), nil)
	}
}

func (h *MessageHandler) handlePersonalInfo(ctx context.Context, req *request) error {
	user, err := h.store.GetUser(ctx, req.userID)
	if errors.Is(err, database.ErrNotFound) {
		return h.reply(ctx, req.chatID, h.msg(req, "MsgPersonalInfoMissing", nil), nil)
	}
	if err != nil {
		return h.storeFailure(ctx, req, "get user", err)
	}

	text := h.msg(req, "MsgPersonalInfo", map[string]interface{}{
		"UserID":    user.UserID,
		"Username":  h.orNA(req, user.Username),
		"FirstName": h.orNA(req, user.FirstName),
		"LastName":  h.orNA(req, user.LastName),
		"CreatedAt": user.CreatedAt.Format(timeLayout),
	})
	return h.reply(ctx, req.chatID, text, nil)
}

func (h *MessageHandler) handleStats(ctx context.Context, req *request) error {
	total, err := h.store.CountUsers(ctx)
	if err != nil {
		return h.storeFailure(ctx, req, "count users", err)
	}
	own, err := h.store.CountMessages(ctx, req.userID)
	if err != nil {
		return h.storeFailure(ctx, req, "count messages", err)
	}
	text := h.msg(req, "MsgUserStats", map[string]interface{}{"Total": total, "Messages": own})
	return h.reply(ctx, req.chatID, text, nil)
}

func (h *MessageHandler) handleFAQ(ctx context.Context, req *request) error {
	return h.reply(ctx, req.chatID, h.msg(req, "MsgFAQTitle", nil), faqKeyboard(req.localizer))
}

func (h *MessageHandler) handleChannel(ctx context.Context, req *request) error {
	if h.channelURL == "" {
		return h.reply(ctx, req.chatID, h.msg(req, "MsgChannelMissing", nil), nil)
	}
	return h.reply(ctx, req.chatID, h.msg(req, "MsgChannel", map[string]interface{}{"Channel": escape(h.channelURL)}), nil)
}

// storeFailure reports a storage error and answers with the generic error text.
func (h *MessageHandler) storeFailure(ctx context.Context, req *request, op string, err error) error {
	log.Printf("%s Failed to %s: %v", req.logPrefix, op, err)
	sentry.CaptureException(fmt.Errorf("%s %s: %w", req.logPrefix, op, err))
	return h.reply(ctx, req.chatID, h.msg(req, "MsgErrorGeneral", nil), nil)
}
