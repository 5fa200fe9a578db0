package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category selects one of the four submission collections.
type Category string

const (
	CategoryFeedback   Category = "feedback"
	CategorySuggestion Category = "suggestion"
	CategoryComplaint  Category = "complaint"
	CategoryQuestion   Category = "question"
)

// Categories lists every submission category in menu order.
var Categories = []Category{CategoryFeedback, CategorySuggestion, CategoryComplaint, CategoryQuestion}

// Collection returns the MongoDB collection holding submissions of this category.
func (c Category) Collection() string {
	switch c {
	case CategoryFeedback:
		return "feedback"
	case CategorySuggestion:
		return "suggestions"
	case CategoryComplaint:
		return "complaints"
	case CategoryQuestion:
		return "questions"
	}
	return ""
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c.Collection() != ""
}

// Submission is a free-text entry (feedback, suggestion, complaint or question).
type Submission struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"user_id"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"created_at"`
}

// SubmissionView is a submission joined with its owner's display fields.
type SubmissionView struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    int64              `bson:"user_id"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"created_at"`
	FirstName string             `bson:"first_name"`
	Username  string             `bson:"username"`
}
