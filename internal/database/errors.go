package database

import "errors"

var (
	// ErrNotFound is returned when a lookup matches nothing. Inactive promo
	// codes are reported the same way as missing ones.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrUnknownUser is returned when a record references an identity that
	// has no user row.
	ErrUnknownUser = errors.New("user reference does not exist")
	// ErrInvalidCategory is returned for a submission category outside the known set.
	ErrInvalidCategory = errors.New("invalid submission category")
)
