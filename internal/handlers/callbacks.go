package handlers

import (
	"context"
	"fmt"
	"log"

	"contactdesk-bot/internal/database/models"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

var faqAnswers = map[string]string{
	CallbackFAQHowWorks: "MsgFAQHowWorks",
	CallbackFAQServices: "MsgFAQServices",
	CallbackFAQSupport:  "MsgFAQSupport",
}

// HandleCallbackQuery answers inline keyboard presses. Every query is logged
// and acknowledged.
func (h *MessageHandler) HandleCallbackQuery(ctx context.Context, query telego.CallbackQuery) error {
	userID := query.From.ID
	logPrefix := fmt.Sprintf("[Callback User:%d QueryID:%s]", userID, query.ID)
	localizer := localizerFor(&query.From)
	req := &request{userID: userID, chatID: userID, localizer: localizer, logPrefix: logPrefix}

	h.registerUser(ctx, &query.From)
	h.logInbound(ctx, req, models.MessageLog{UserID: userID, Text: query.Data, Type: models.MessageCallback})
	if h.debug {
		log.Printf("%s Received callback query with data: %q", logPrefix, query.Data)
	}

	var messageID int
	if query.Message != nil {
		req.chatID = query.Message.GetChat().ID
		messageID = query.Message.GetMessageID()
	}

	answer := &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID}
	var err error
	switch data := query.Data; {
	case faqAnswers[data] != "":
		err = h.editText(ctx, req.chatID, messageID, h.msg(req, faqAnswers[data], nil), faqKeyboard(localizer))
	case data == CallbackMainMenu || data == CallbackBack:
		if data == CallbackMainMenu {
			h.tracker.Clear(userID)
		}
		if editErr := h.editText(ctx, req.chatID, messageID, h.msg(req, "MsgMainMenu", nil), nil); editErr != nil {
			log.Printf("%s %v", logPrefix, editErr)
		}
		err = h.reply(ctx, req.chatID, h.msg(req, "MsgMainMenu", nil), mainMenuKeyboard(localizer))
	default:
		log.Printf("%s Callback query not handled", logPrefix)
		answer.Text = h.msg(req, "MsgCallbackNotHandled", nil)
		answer.ShowAlert = true
	}

	if ansErr := h.bot.AnswerCallbackQuery(ctx, answer); ansErr != nil {
		log.Printf("%s Error answering callback query: %v", logPrefix, ansErr)
	}
	return err
}

// editText replaces the text of an inline keyboard message. markup may be nil.
func (h *MessageHandler) editText(ctx context.Context, chatID int64, messageID int, text string, markup *telego.InlineKeyboardMarkup) error {
	if messageID == 0 {
		return h.reply(ctx, chatID, text, markupOrNil(markup))
	}
	params := &telego.EditMessageTextParams{
		ChatID:      tu.ID(chatID),
		MessageID:   messageID,
		Text:        text,
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: markup,
	}
	if _, err := h.bot.EditMessageText(ctx, params); err != nil {
		return fmt.Errorf("edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

// markupOrNil avoids passing a typed nil pointer as a ReplyMarkup.
func markupOrNil(markup *telego.InlineKeyboardMarkup) telego.ReplyMarkup {
	if markup == nil {
		return nil
	}
	return markup
}
