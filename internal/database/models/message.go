package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageType tags a message log entry with the shape of the inbound event.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessagePhoto    MessageType = "photo"
	MessageVideo    MessageType = "video"
	MessageDocument MessageType = "document"
	MessageContact  MessageType = "contact"
	MessageLocation MessageType = "location"
	MessageCallback MessageType = "callback"
)

// MessageLog is an append-only record of one inbound event.
type MessageLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"user_id"`
	Text      string             `bson:"text"`
	Type      MessageType        `bson:"type"`
	FileID    string             `bson:"file_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}
