package models

import "time"

type PromoCode struct {
	Code        string    `bson:"code"`
	Description string    `bson:"description"`
	IsActive    bool      `bson:"is_active"`
	CreatedAt   time.Time `bson:"created_at"`
}
