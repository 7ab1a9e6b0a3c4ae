package repository

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrResetTokenNotFound covers unknown, already-consumed and expired tokens;
// callers cannot tell them apart and must not be able to.
var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetTokenRepository issues and consumes single-use password-reset tokens.
// An account holds at most one live token at a time.
type ResetTokenRepository interface {
	// Issue replaces any tokens the account already holds with a fresh one
	// and returns the raw token.
	Issue(ctx context.Context, accountID string) (string, error)
	// Consume deletes the token and returns the owning account id, or
	// ErrResetTokenNotFound if the token is unknown or past its TTL.
	Consume(ctx context.Context, rawToken string) (string, error)
}

type resetTokenRepository struct {
	db  *sql.DB
	ttl time.Duration
}

func NewResetTokenRepository(db *sql.DB, ttl time.Duration) ResetTokenRepository {
	return &resetTokenRepository{db: db, ttl: ttl}
}

func (r *resetTokenRepository) Issue(ctx context.Context, accountID string) (string, error) {
	raw, hash, err := generateResetToken()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	// Delete-then-insert in one transaction keeps the single-active-token
	// invariant; under concurrent Issue calls the last insert wins.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reset_tokens WHERE account_id = $1`, accountID); err != nil {
		return "", err
	}

	now := nowUTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reset_tokens (id, account_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), accountID, hash, now.Add(r.ttl), now)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return raw, nil
}

func (r *resetTokenRepository) Consume(ctx context.Context, rawToken string) (string, error) {
	// The delete is the lookup: concurrent consumers race on the row and at
	// most one sees it. Expiry is checked on the returned row as well, so a
	// stale row that was never purged is still inert.
	var accountID string
	var expiresAt time.Time
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM reset_tokens
		WHERE token_hash = $1
		RETURNING account_id, expires_at
	`, hashResetToken(rawToken)).Scan(&accountID, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrResetTokenNotFound
		}
		return "", err
	}
	if nowUTC().After(expiresAt) {
		return "", ErrResetTokenNotFound
	}
	return accountID, nil
}

// generateResetToken returns 256 bits from crypto/rand as a 64-char hex
// string plus the SHA-256 hash stored at rest.
func generateResetToken() (raw string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, hashResetToken(raw), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
