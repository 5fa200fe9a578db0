package models

import "time"

// User represents a Telegram user known to the bot. Rows are created on first
// contact and never rewritten afterwards.
type User struct {
	UserID       int64     `bson:"user_id"`
	Username     string    `bson:"username,omitempty"`
	FirstName    string    `bson:"first_name,omitempty"`
	LastName     string    `bson:"last_name,omitempty"`
	IsBot        bool      `bson:"is_bot"`
	LanguageCode string    `bson:"language_code,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

// FullName joins first and last name the way Telegram clients display them.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}
