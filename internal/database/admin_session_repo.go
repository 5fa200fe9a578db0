package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contactdesk-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetAdminSession records a login or logout. The login time is cleared on logout.
func (s *MongoStore) SetAdminSession(ctx context.Context, userID int64, loggedIn bool) error {
	var loginTime *time.Time
	if loggedIn {
		t := now()
		loginTime = &t
	}

	filter := bson.M{"user_id": userID}
	update := bson.M{"$set": bson.M{
		"is_logged_in": loggedIn,
		"login_time":   loginTime,
	}}
	if _, err := s.adminSessions.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to set admin session for %d: %w", userID, err)
	}
	return nil
}

// IsAdminLoggedIn is false both when no session row exists and after logout.
func (s *MongoStore) IsAdminLoggedIn(ctx context.Context, userID int64) (bool, error) {
	var session models.AdminSession
	err := s.adminSessions.FindOne(ctx, bson.M{"user_id": userID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read admin session for %d: %w", userID, err)
	}
	return session.IsLoggedIn, nil
}
