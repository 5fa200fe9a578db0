package handlers

import (
	"context"

	"contactdesk-bot/internal/events"
	"contactdesk-bot/internal/relay"
	"contactdesk-bot/internal/session"
)

// StateTracker holds the open dialogue of each user.
type StateTracker interface {
	Set(userID int64, s session.State)
	Get(userID int64) session.State
	Clear(userID int64)
}

// Relay delivers messages to the operator account.
type Relay interface {
	OperatorID() int64
	SendText(ctx context.Context, recipient int64, text string) error
	ForwardOriginal(ctx context.Context, recipient, sourceChat int64, messageID int) error
	NotifyOperator(ctx context.Context, fromUserID int64, body string) error
}

// Broadcaster fans one text out to many recipients.
type Broadcaster interface {
	Broadcast(ctx context.Context, recipients []int64, text string) relay.BroadcastResult
}

// AdminGate guards every admin-only action.
type AdminGate interface {
	IsPrivileged(userID int64) bool
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	Login(ctx context.Context, userID int64, password string) error
	Logout(ctx context.Context, userID int64) error
}

// EventPublisher announces stored submissions to other services.
type EventPublisher interface {
	PublishSubmission(ctx context.Context, event events.SubmissionEvent) error
}
