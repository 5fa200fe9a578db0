// Package events publishes submission notifications to RabbitMQ so other
// services can react to new feedback, suggestions, complaints and questions.
package events

import (
	"time"

	"contactdesk-bot/internal/database/models"

	"github.com/google/uuid"
)

// SubmissionQueue is the durable queue receiving SubmissionEvent messages.
const SubmissionQueue = "submissions.created"

// SubmissionEvent is the JSON body published for every stored submission.
type SubmissionEvent struct {
	EventID   string          `json:"event_id"`
	Category  models.Category `json:"category"`
	UserID    int64           `json:"user_id"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewSubmissionEvent stamps a new event with a random ID and the current time.
func NewSubmissionEvent(category models.Category, userID int64, text string) SubmissionEvent {
	return SubmissionEvent{
		EventID:   uuid.NewString(),
		Category:  category,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}
