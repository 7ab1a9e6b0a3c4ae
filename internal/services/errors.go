package services

import (
	"errors"

	"userauth/internal/auth"
)

// Failure kinds the auth flows can return. Anything else reaching a handler
// is a dependency failure and is surfaced as a generic server error.
var (
	ErrDuplicateEmail     = errors.New("user already registered")
	ErrAccountNotFound    = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrWeakPassword       = errors.New(auth.PasswordPolicy)
)
