package database

import (
	"context"

	"contactdesk-bot/internal/database/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// AddUser creates the user row if it does not exist yet.
	// It reports true only when a new row was inserted.
	AddUser(ctx context.Context, user models.User) (bool, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// MessageLogger records every inbound event.
type MessageLogger interface {
	LogMessage(ctx context.Context, entry models.MessageLog) error
	CountMessages(ctx context.Context, userID int64) (int64, error)
}

// SubmissionRepository stores feedback, suggestions, complaints and questions.
type SubmissionRepository interface {
	AddSubmission(ctx context.Context, category models.Category, userID int64, text string) error
	// ListSubmissions returns rows newest first, joined with the owner's name fields.
	ListSubmissions(ctx context.Context, category models.Category) ([]models.SubmissionView, error)
}

// PromoCodeRepository defines promo code storage.
type PromoCodeRepository interface {
	AddPromoCode(ctx context.Context, code, description string) error
	CheckPromoCode(ctx context.Context, code string) (*models.PromoCode, error)
}

// AdminSessionRepository persists the admin login flag.
type AdminSessionRepository interface {
	SetAdminSession(ctx context.Context, userID int64, loggedIn bool) error
	IsAdminLoggedIn(ctx context.Context, userID int64) (bool, error)
}

// Store is the full record store used by the dialogue router.
type Store interface {
	UserRepository
	MessageLogger
	SubmissionRepository
	PromoCodeRepository
	AdminSessionRepository
}
