package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"contactdesk-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddUser inserts the user on first contact. A repeated call for the same
// identity leaves the stored row untouched and returns false.
func (s *MongoStore) AddUser(ctx context.Context, user models.User) (bool, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}

	filter := bson.M{"user_id": user.UserID}
	update := bson.M{"$setOnInsert": user}
	opts := options.Update().SetUpsert(true)

	res, err := s.users.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		// Two first contacts racing on the unique index: the loser sees a
		// duplicate key, which still means the row exists.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		log.Printf("[MongoStore] Error adding user %d: %v", user.UserID, err)
		return false, fmt.Errorf("failed to upsert user %d: %w", user.UserID, err)
	}
	return res.UpsertedCount > 0, nil
}

func (s *MongoStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{"user_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", userID, err)
	}
	return n > 0, nil
}

// GetUser returns ErrNotFound when the identity has never contacted the bot.
func (s *MongoStore) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return &user, nil
}

// ListUsers returns every user ordered by identity.
func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}})
	cursor, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// requireUser enforces the user reference of dependent records.
func (s *MongoStore) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %d: %w", userID, ErrUnknownUser)
	}
	return nil
}
