package database

import (
	"context"
	"errors"
	"fmt"

	"contactdesk-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AddPromoCode creates an active promo code. ErrAlreadyExists is returned
// when the code is taken.
func (s *MongoStore) AddPromoCode(ctx context.Context, code, description string) error {
	promo := models.PromoCode{
		Code:        code,
		Description: description,
		IsActive:    true,
		CreatedAt:   now(),
	}
	if _, err := s.promoCodes.InsertOne(ctx, promo); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("promo code %q: %w", code, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert promo code %q: %w", code, err)
	}
	return nil
}

// CheckPromoCode looks up an active code. It never modifies the record.
func (s *MongoStore) CheckPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := s.promoCodes.FindOne(ctx, bson.M{"code": code, "is_active": true}).Decode(&promo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to check promo code %q: %w", code, err)
	}
	return &promo, nil
}
