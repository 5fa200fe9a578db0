package database

import (
	"context"
	"fmt"
	"log"

	"contactdesk-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *MongoStore) submissionCollection(category models.Category) (*mongo.Collection, error) {
	coll, ok := s.submissions[category]
	if !ok {
		return nil, fmt.Errorf("%q: %w", category, ErrInvalidCategory)
	}
	return coll, nil
}

// AddSubmission saves a new feedback, suggestion, complaint or question.
func (s *MongoStore) AddSubmission(ctx context.Context, category models.Category, userID int64, text string) error {
	coll, err := s.submissionCollection(category)
	if err != nil {
		return err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	sub := models.Submission{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Text:      text,
		CreatedAt: now(),
	}
	if _, err := coll.InsertOne(ctx, sub); err != nil {
		log.Printf("[MongoStore] Error inserting %s from user %d: %v", category, userID, err)
		return fmt.Errorf("failed to insert %s: %w", category, err)
	}
	log.Printf("[MongoStore] Inserted %s %s from user %d", category, sub.ID.Hex(), userID)
	return nil
}

// ListSubmissions returns every submission of the category, newest first.
// Rows whose owner is missing are dropped by the join.
func (s *MongoStore) ListSubmissions(ctx context.Context, category models.Category) ([]models.SubmissionView, error) {
	coll, err := s.submissionCollection(category)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "user_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: "$owner"}},
		{{Key: "$project", Value: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "text", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "first_name", Value: "$owner.first_name"},
			{Key: "username", Value: "$owner.username"},
		}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", category, err)
	}
	defer cursor.Close(ctx)

	rows := []models.SubmissionView{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s rows: %w", category, err)
	}
	return rows, nil
}
