package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"userauth/internal/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateEmail  = errors.New("email already registered")
)

// AccountRepository is the narrow directory interface the auth flows need.
// Emails are matched case-insensitively.
type AccountRepository interface {
	Insert(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	UpdatePasswordHash(ctx context.Context, accountID string, passwordHash string) error
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, first_name, last_name, email, password_hash, profile_image, role, created_at, updated_at`

func (r *accountRepository) Insert(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (id, first_name, last_name, email, password_hash, profile_image, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.FirstName, a.LastName, a.Email, a.PasswordHash, a.ProfileImage, a.Role, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *accountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *accountRepository) UpdatePasswordHash(ctx context.Context, accountID string, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, passwordHash, nowUTC(), accountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) scanOne(row *sql.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash, &a.ProfileImage, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}
