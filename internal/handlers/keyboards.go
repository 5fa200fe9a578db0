package handlers

import (
	"contactdesk-bot/internal/locales"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// Callback data of the FAQ inline keyboard.
const (
	CallbackFAQHowWorks = "faq_how_works"
	CallbackFAQServices = "faq_services"
	CallbackFAQSupport  = "faq_support"
	CallbackMainMenu    = "main_menu"
	CallbackBack        = "back"
)

// Layout of the reply keyboards, by label message ID.
var (
	mainMenuLayout = [][]string{
		{"BtnSendText", "BtnSendPhoto"},
		{"BtnSendVideo", "BtnSendDocument"},
		{"BtnSendContact", "BtnSendLocation"},
		{"BtnFeedback", "BtnSuggestion"},
		{"BtnComplaint", "BtnQuestion"},
		{"BtnPersonalInfo", "BtnStats"},
		{"BtnFAQ", "BtnPromoCode"},
		{"BtnResume", "BtnContactUs"},
		{"BtnPhotoGallery", "BtnVideoGallery"},
		{"BtnNews", "BtnReferral"},
		{"BtnPrices", "BtnFreeServices"},
		{"BtnPaidServices", "BtnWriteAdmin"},
		{"BtnAcquaintance", "BtnSupportApp"},
		{"BtnChannel"},
	}
	adminMenuLayout = [][]string{
		{"BtnAdminUsers", "BtnAdminMessageUser"},
		{"BtnAdminStats", "BtnAdminBroadcast"},
		{"BtnAdminCustomKeyboard", "BtnAdminMediaUpload"},
		{"BtnAdminPromoCreate", "BtnAdminPayments"},
		{"BtnAdminFeedback", "BtnAdminSuggestions"},
		{"BtnAdminComplaints", "BtnAdminQuestions"},
		{"BtnAdminLogs", "BtnAdminLogout"},
		{"BtnMainMenu"},
	}
)

func label(localizer *i18n.Localizer, id string) string {
	return locales.GetMessage(localizer, id, nil, nil)
}

func layoutKeyboard(localizer *i18n.Localizer, layout [][]string) *telego.ReplyKeyboardMarkup {
	rows := make([][]telego.KeyboardButton, 0, len(layout))
	for _, ids := range layout {
		row := make([]telego.KeyboardButton, 0, len(ids))
		for _, id := range ids {
			row = append(row, tu.KeyboardButton(label(localizer, id)))
		}
		rows = append(rows, tu.KeyboardRow(row...))
	}
	return tu.Keyboard(rows...).WithResizeKeyboard()
}

func mainMenuKeyboard(localizer *i18n.Localizer) *telego.ReplyKeyboardMarkup {
	return layoutKeyboard(localizer, mainMenuLayout)
}

func adminMenuKeyboard(localizer *i18n.Localizer) *telego.ReplyKeyboardMarkup {
	return layoutKeyboard(localizer, adminMenuLayout)
}

func cancelKeyboard(localizer *i18n.Localizer) *telego.ReplyKeyboardMarkup {
	return tu.Keyboard(
		tu.KeyboardRow(tu.KeyboardButton(label(localizer, "BtnCancel"))),
	).WithResizeKeyboard()
}

func contactKeyboard(localizer *i18n.Localizer) *telego.ReplyKeyboardMarkup {
	return tu.Keyboard(
		tu.KeyboardRow(tu.KeyboardButton(label(localizer, "BtnShareContact")).WithRequestContact()),
		tu.KeyboardRow(tu.KeyboardButton(label(localizer, "BtnCancel"))),
	).WithResizeKeyboard()
}

func locationKeyboard(localizer *i18n.Localizer) *telego.ReplyKeyboardMarkup {
	return tu.Keyboard(
		tu.KeyboardRow(tu.KeyboardButton(label(localizer, "BtnShareLocation")).WithRequestLocation()),
		tu.KeyboardRow(tu.KeyboardButton(label(localizer, "BtnCancel"))),
	).WithResizeKeyboard()
}

func faqKeyboard(localizer *i18n.Localizer) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(tu.InlineKeyboardButton(label(localizer, "BtnFAQHowWorks")).WithCallbackData(CallbackFAQHowWorks)),
		tu.InlineKeyboardRow(tu.InlineKeyboardButton(label(localizer, "BtnFAQServices")).WithCallbackData(CallbackFAQServices)),
		tu.InlineKeyboardRow(tu.InlineKeyboardButton(label(localizer, "BtnFAQSupport")).WithCallbackData(CallbackFAQSupport)),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label(localizer, "BtnBack")).WithCallbackData(CallbackBack),
			tu.InlineKeyboardButton(label(localizer, "BtnMainMenu")).WithCallbackData(CallbackMainMenu),
		),
	)
}
