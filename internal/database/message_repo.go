package database

import (
	"context"
	"fmt"

	"contactdesk-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LogMessage appends an entry to the message log.
func (s *MongoStore) LogMessage(ctx context.Context, entry models.MessageLog) error {
	if err := s.requireUser(ctx, entry.UserID); err != nil {
		return err
	}
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now()
	}

	if _, err := s.messages.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to log %s message for user %d: %w", entry.Type, entry.UserID, err)
	}
	return nil
}

// CountMessages returns how many events the user has produced.
func (s *MongoStore) CountMessages(ctx context.Context, userID int64) (int64, error) {
	n, err := s.messages.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count messages for user %d: %w", userID, err)
	}
	return n, nil
}
