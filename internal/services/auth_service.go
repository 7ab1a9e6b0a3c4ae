package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"userauth/internal/auth"
	"userauth/internal/models"
	"userauth/internal/repository"
)

// AuthService orchestrates the register/login/forgot/reset flows over the
// account directory, the reset-token store, the password hasher and the
// session issuer. All collaborators are injected at startup.
type AuthService struct {
	accounts   repository.AccountRepository
	resets     repository.ResetTokenRepository
	hasher     *auth.Hasher
	sessions   *auth.SessionIssuer
	mailer     EmailSender
	clientURL  string
	sessionTTL time.Duration
}

func NewAuthService(
	accounts repository.AccountRepository,
	resets repository.ResetTokenRepository,
	hasher *auth.Hasher,
	sessions *auth.SessionIssuer,
	mailer EmailSender,
	clientURL string,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		accounts:   accounts,
		resets:     resets,
		hasher:     hasher,
		sessions:   sessions,
		mailer:     mailer,
		clientURL:  clientURL,
		sessionTTL: sessionTTL,
	}
}

// RegisterParams carries validated registration input. The profile image is
// already uploaded by the caller; only its URL is stored here.
type RegisterParams struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ProfileImageURL string
	Role            models.Role
}

func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*models.Account, error) {
	if _, err := s.accounts.FindByEmail(ctx, p.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("look up email: %w", err)
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := p.Role
	if !role.Valid() {
		role = models.RoleUser
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:           uuid.NewString(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        strings.ToLower(p.Email),
		PasswordHash: hash,
		ProfileImage: p.ProfileImageURL,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Insert(ctx, account); err != nil {
		// The unique index closes the race between the lookup above and
		// a concurrent registration with the same email.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

// Login verifies credentials and mints a session token. A missing account
// and a wrong password are reported as distinct failures.
func (s *AuthService) Login(ctx context.Context, email string, password string) (string, *models.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", nil, ErrAccountNotFound
		}
		return "", nil, fmt.Errorf("look up account: %w", err)
	}

	if !s.hasher.Check(password, account.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(account.ID, account.Role, s.sessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue session token: %w", err)
	}
	return token, account, nil
}

// ForgotPassword issues a reset token and mails the reset link. A failing
// mail transport does not roll the already-issued token back.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("look up account: %w", err)
	}

	raw, err := s.resets.Issue(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	link := strings.TrimRight(s.clientURL, "/") + "/reset/" + raw
	body := fmt.Sprintf(`<h2>Password Reset Request</h2>
<p>Click the link below to reset your password:</p>
<a href="%s" target="_blank">%s</a>
<p>If you didn't request this, please ignore this email.</p>`, link, link)

	if err := s.mailer.Send(account.Email, "Reset Password Link", body); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword burns the token and stores the new password hash. The policy
// runs before the token is consumed, so a weak password leaves it usable.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken string, newPassword string) error {
	if !auth.ValidPassword(newPassword) {
		return ErrWeakPassword
	}

	accountID, err := s.resets.Consume(ctx, rawToken)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	// The account may have been deleted between issue and consume.
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("look up account: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
