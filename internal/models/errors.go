package models

import "errors"

var (
	// ErrInsufficientCredits is returned when a user cannot cover a stake
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInvalidAmount is returned for stakes and payouts that are not positive
	ErrInvalidAmount = errors.New("amount must be positive")
)
