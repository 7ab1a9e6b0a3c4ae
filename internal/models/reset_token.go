package models

import "time"

// ResetToken is the persisted half of a password-reset credential. Only the
// SHA-256 hash of the raw token is stored; the raw value exists solely in the
// reset email.
type ResetToken struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
