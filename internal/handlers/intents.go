package handlers

import (
	"context"
	"log"
	"strings"

	"contactdesk-bot/internal/locales"
)

// Intent is a closed set of actions a user can trigger with a button label
// or a slash command. Routing never compares display text directly.
type Intent string

const (
	IntentStart        Intent = "start"
	IntentMainMenu     Intent = "main_menu"
	IntentCancel       Intent = "cancel"
	IntentSendText     Intent = "send_text"
	IntentSendPhoto    Intent = "send_photo"
	IntentSendVideo    Intent = "send_video"
	IntentSendDocument Intent = "send_document"
	IntentSendContact  Intent = "send_contact"
	IntentSendLocation Intent = "send_location"
	IntentFeedback     Intent = "feedback"
	IntentSuggestion   Intent = "suggestion"
	IntentComplaint    Intent = "complaint"
	IntentQuestion     Intent = "question"
	IntentPersonalInfo Intent = "personal_info"
	IntentStats        Intent = "stats"
	IntentFAQ          Intent = "faq"
	IntentPromoCode    Intent = "promo_code"
	IntentChannel      Intent = "channel"

	IntentResume       Intent = "resume"
	IntentContactUs    Intent = "contact_us"
	IntentPhotoGallery Intent = "photo_gallery"
	IntentVideoGallery Intent = "video_gallery"
	IntentNews         Intent = "news"
	IntentReferral     Intent = "referral"
	IntentPrices       Intent = "prices"
	IntentFreeServices Intent = "free_services"
	IntentPaidServices Intent = "paid_services"
	IntentWriteAdmin   Intent = "write_admin"
	IntentAcquaintance Intent = "acquaintance"
	IntentSupportApp   Intent = "support_app"

	IntentAdminLogin          Intent = "admin_login"
	IntentAdminLogout         Intent = "admin_logout"
	IntentAdminUsers          Intent = "admin_users"
	IntentAdminStats          Intent = "admin_stats"
	IntentAdminBroadcast      Intent = "admin_broadcast"
	IntentAdminPromoCreate    Intent = "admin_promo_create"
	IntentAdminFeedback       Intent = "admin_feedback"
	IntentAdminSuggestions    Intent = "admin_suggestions"
	IntentAdminComplaints     Intent = "admin_complaints"
	IntentAdminQuestions      Intent = "admin_questions"
	IntentAdminMessageUser    Intent = "admin_message_user"
	IntentAdminCustomKeyboard Intent = "admin_custom_keyboard"
	IntentAdminMediaUpload    Intent = "admin_media_upload"
	IntentAdminPayments       Intent = "admin_payments"
	IntentAdminLogs           Intent = "admin_logs"
)

// commandIntents maps slash commands (without the slash) to intents.
var commandIntents = map[string]Intent{
	"start":  IntentStart,
	"admin":  IntentAdminLogin,
	"cancel": IntentCancel,
	"menu":   IntentMainMenu,
}

// intentRoute describes how one intent is presented and handled.
type intentRoute struct {
	label  string // locale message ID of the button label; empty for command-only intents
	admin  bool   // requires a logged-in admin
	handle func(ctx context.Context, req *request) error
}

// LabelResolver maps button labels in every loaded language, and slash
// commands, to intents.
type LabelResolver struct {
	labels map[string]Intent
}

// NewLabelResolver localizes each label ID in every language of the bundle.
// locales.Init must have been called.
func NewLabelResolver(labelIDs map[Intent]string) *LabelResolver {
	r := &LabelResolver{labels: make(map[string]Intent)}
	for _, tag := range locales.LanguageTags() {
		localizer := locales.NewLocalizer(tag.String())
		for intent, id := range labelIDs {
			if id == "" {
				continue
			}
			label := locales.GetMessage(localizer, id, nil, nil)
			if prev, ok := r.labels[label]; ok && prev != intent {
				log.Printf("WARN: label %q (%s) is shared by intents %s and %s, keeping %s", label, tag, prev, intent, prev)
				continue
			}
			r.labels[label] = intent
		}
	}
	return r
}

// Resolve returns the intent for text. Commands may carry a @botname suffix
// and trailing arguments.
func (r *LabelResolver) Resolve(text string) (Intent, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0][1:]
		if i := strings.IndexByte(cmd, '@'); i >= 0 {
			cmd = cmd[:i]
		}
		intent, ok := commandIntents[strings.ToLower(cmd)]
		return intent, ok
	}
	intent, ok := r.labels[text]
	return intent, ok
}
