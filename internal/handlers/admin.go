package handlers

import (
	"context"
	"fmt"
	"log"

	"contactdesk-bot/internal/database/models"
	"contactdesk-bot/internal/session"

	"github.com/getsentry/sentry-go"
)

// handleAdminLogin answers /admin. Only the privileged identity may open the
// password dialogue.
func (h *MessageHandler) handleAdminLogin(ctx context.Context, req *request) error {
	if !h.gate.IsPrivileged(req.userID) {
		log.Printf("%s Non-privileged identity requested admin login", req.logPrefix)
		return h.reply(ctx, req.chatID, h.msg(req, "MsgNotAdmin", nil), nil)
	}

	isAdmin, err := h.gate.IsAdmin(ctx, req.userID)
	if err != nil {
		log.Printf("%s Admin check failed: %v", req.logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s admin check: %w", req.logPrefix, err))
	}
	if isAdmin {
		return h.reply(ctx, req.chatID, h.msg(req, "MsgAdminAlreadyLoggedIn", nil), adminMenuKeyboard(req.localizer))
	}

	h.tracker.Set(req.userID, session.StateAdminPassword)
	return h.reply(ctx, req.chatID, h.msg(req, "MsgAdminPromptPassword", nil), cancelKeyboard(req.localizer))
}

func (h *MessageHandler) handleAdminLogout(ctx context.Context, req *request) error {
	h.tracker.Clear(req.userID)
	if err := h.gate.Logout(ctx, req.userID); err != nil {
		return h.storeFailure(ctx, req, "log out admin", err)
	}
	log.Printf("%s Admin logged out", req.logPrefix)
	return h.reply(ctx, req.chatID, h.msg(req, "MsgAdminLoggedOut", nil), mainMenuKeyboard(req.localizer))
}

func (h *MessageHandler) handleAdminStats(ctx context.Context, req *request) error {
	total, err := h.store.CountUsers(ctx)
	if err != nil {
		return h.storeFailure(ctx, req, "count users", err)
	}
	return h.reply(ctx, req.chatID, h.msg(req, "MsgAdminStats", map[string]interface{}{"Total": total}), adminMenuKeyboard(req.localizer))
}

func (h *MessageHandler) handleAdminUsers(ctx context.Context, req *request) error {
	users, err := h.store.ListUsers(ctx)
	if err != nil {
		return h.storeFailure(ctx, req, "list users", err)
	}
	if len(users) == 0 {
		return h.reply(ctx, req.chatID, h.msg(req, "MsgAdminNoUsers", nil), nil)
	}

	entries := make([]string, 0, len(users))
	for i, u := range users {
		count, err := h.store.CountMessages(ctx, u.UserID)
		if err != nil {
			log.Printf("%s Failed to count messages of %d: %v", req.logPrefix, u.UserID, err)
		}
		entries = append(entries, h.msg(req, "MsgAdminUserEntry", map[string]interface{}{
			"Index":     i + 1,
			"UserID":    u.UserID,
			"Username":  h.orNA(req, u.Username),
			"FirstName": escape(u.FirstName),
			"LastName":  escape(u.LastName),
			"Messages":  count,
		}))
	}
	return h.sendListing(ctx, req, h.msg(req, "MsgAdminUsersTitle", nil), entries)
}

// submissionListing names the texts of one admin submission listing.
type submissionListing struct {
	category models.Category
	titleID  string
	emptyID  string
}

var (
	listingFeedback    = submissionListing{models.CategoryFeedback, "MsgAdminFeedbackTitle", "MsgAdminNoFeedback"}
	listingSuggestions = submissionListing{models.CategorySuggestion, "MsgAdminSuggestionsTitle", "MsgAdminNoSuggestions"}
	listingComplaints  = submissionListing{models.CategoryComplaint, "MsgAdminComplaintsTitle", "MsgAdminNoComplaints"}
	listingQuestions   = submissionListing{models.CategoryQuestion, "MsgAdminQuestionsTitle", "MsgAdminNoQuestions"}
)

// listSubmissions sends every submission of one category, newest first.
func (h *MessageHandler) listSubmissions(l submissionListing) func(context.Context, *request) error {
	return func(ctx context.Context, req *request) error {
		rows, err := h.store.ListSubmissions(ctx, l.category)
		if err != nil {
			return h.storeFailure(ctx, req, "list "+string(l.category), err)
		}
		if len(rows) == 0 {
			return h.reply(ctx, req.chatID, h.msg(req, l.emptyID, nil), nil)
		}

		entries := make([]string, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, h.msg(req, "MsgAdminSubmissionEntry", map[string]interface{}{
				"FirstName": h.orNA(req, row.FirstName),
				"Username":  h.orNA(req, row.Username),
				"Text":      escape(row.Text),
				"CreatedAt": row.CreatedAt.Format(timeLayout),
			}))
		}
		return h.sendListing(ctx, req, h.msg(req, l.titleID, nil), entries)
	}
}
