package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"userauth/internal/auth"
	"userauth/internal/models"
	"userauth/internal/repository"
)

type memAccounts struct {
	byID map[string]*models.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[string]*models.Account)}
}

func (m *memAccounts) Insert(_ context.Context, a *models.Account) error {
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, a.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	m.byID[a.ID] = a
	return nil
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, a := range m.byID {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *memAccounts) FindByID(_ context.Context, id string) (*models.Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return a, nil
}

func (m *memAccounts) UpdatePasswordHash(_ context.Context, accountID string, passwordHash string) error {
	a, ok := m.byID[accountID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

type memToken struct {
	accountID string
	expiresAt time.Time
}

// memResets mirrors the ResetTokenRepository contract in memory, with an
// injectable clock for expiry tests.
type memResets struct {
	ttl     time.Duration
	now     func() time.Time
	tokens  map[string]memToken
	lastRaw string
	seq     int
}

func newMemResets(ttl time.Duration) *memResets {
	return &memResets{
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		tokens: make(map[string]memToken),
	}
}

func (m *memResets) Issue(_ context.Context, accountID string) (string, error) {
	for raw, tok := range m.tokens {
		if tok.accountID == accountID {
			delete(m.tokens, raw)
		}
	}
	m.seq++
	raw := fmt.Sprintf("raw-token-%d", m.seq)
	m.tokens[raw] = memToken{accountID: accountID, expiresAt: m.now().Add(m.ttl)}
	m.lastRaw = raw
	return raw, nil
}

func (m *memResets) Consume(_ context.Context, rawToken string) (string, error) {
	tok, ok := m.tokens[rawToken]
	if !ok || m.now().After(tok.expiresAt) {
		return "", repository.ErrResetTokenNotFound
	}
	delete(m.tokens, rawToken)
	return tok.accountID, nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to string, subject string, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

type fixture struct {
	svc      *AuthService
	accounts *memAccounts
	resets   *memResets
	mailer   *fakeMailer
	sessions *auth.SessionIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	accounts := newMemAccounts()
	resets := newMemResets(time.Hour)
	mailer := &fakeMailer{}
	sessions := auth.NewSessionIssuer("test-secret")
	svc := NewAuthService(accounts, resets, auth.NewHasher(bcrypt.MinCost), sessions, mailer, "http://client.local", time.Hour)
	return &fixture{svc: svc, accounts: accounts, resets: resets, mailer: mailer, sessions: sessions}
}

func (f *fixture) register(t *testing.T, email string) *models.Account {
	t.Helper()
	account, err := f.svc.Register(context.Background(), RegisterParams{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           email,
		Password:        "Secret1!",
		ProfileImageURL: "https://cdn.example.com/user_profile/jane.png",
	})
	require.NoError(t, err)
	return account
}

func TestRegisterDefaultsRoleAndHashesPassword(t *testing.T) {
	f := newFixture(t)

	account := f.register(t, "Jane@X.com")

	assert.Equal(t, models.RoleUser, account.Role)
	assert.Equal(t, "jane@x.com", account.Email)
	assert.NotEqual(t, "Secret1!", account.PasswordHash)
	assert.True(t, auth.NewHasher(bcrypt.MinCost).Check("Secret1!", account.PasswordHash))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "jane@x.com")

	_, err := f.svc.Register(context.Background(), RegisterParams{
		FirstName: "Jane", LastName: "Doe", Email: "JANE@x.com",
		Password: "Other1!x", ProfileImageURL: "img",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "jane@x.com")

	token, got, err := f.svc.Login(context.Background(), "jane@x.com", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	claims, err := f.sessions.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "jane@x.com")

	_, _, err := f.svc.Login(context.Background(), "jane@x.com", "WrongPass1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Login(context.Background(), "nobody@x.com", "Secret1!")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestForgotPasswordSendsResetLink(t *testing.T) {
	f := newFixture(t)
	f.register(t, "jane@x.com")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "jane@x.com"))

	require.Len(t, f.mailer.sent, 1)
	mail := f.mailer.sent[0]
	assert.Equal(t, "jane@x.com", mail.to)
	assert.Equal(t, "Reset Password Link", mail.subject)
	assert.Contains(t, mail.body, "http://client.local/reset/"+f.resets.lastRaw)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ForgotPassword(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Empty(t, f.mailer.sent)
}

func TestForgotPasswordMailFailureKeepsToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "jane@x.com")
	f.mailer.err = errors.New("smtp down")

	err := f.svc.ForgotPassword(context.Background(), "jane@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAccountNotFound)

	// The token was issued before the send attempt and is not rolled back.
	require.NotEmpty(t, f.resets.lastRaw)
	assert.NoError(t, f.svc.ResetPassword(context.Background(), f.resets.lastRaw, "Fresh1!pw"))
}

func TestResetPasswordLifecycle(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "jane@x.com")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "jane@x.com"))
	token := f.resets.lastRaw

	// Weak password: rejected, token stays valid.
	err := f.svc.ResetPassword(context.Background(), token, "Weak")
	assert.ErrorIs(t, err, ErrWeakPassword)

	// Strong password: accepted, token consumed.
	require.NoError(t, f.svc.ResetPassword(context.Background(), token, "Strong1!"))

	// Second use of the same token: rejected.
	err = f.svc.ResetPassword(context.Background(), token, "Strong2!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	// The new password is live, the old one is not.
	_, _, err = f.svc.Login(context.Background(), "jane@x.com", "Secret1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, got, err := f.svc.Login(context.Background(), "jane@x.com", "Strong1!")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestNewResetTokenInvalidatesPrevious(t *testing.T) {
	f := newFixture(t)
	f.register(t, "jane@x.com")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "jane@x.com"))
	oldToken := f.resets.lastRaw

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "jane@x.com"))
	newToken := f.resets.lastRaw
	require.NotEqual(t, oldToken, newToken)

	err := f.svc.ResetPassword(context.Background(), oldToken, "Strong1!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
	assert.NoError(t, f.svc.ResetPassword(context.Background(), newToken, "Strong1!"))
}

func TestResetTokenExpires(t *testing.T) {
	f := newFixture(t)
	f.register(t, "jane@x.com")

	base := time.Now().UTC()
	f.resets.now = func() time.Time { return base }

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "jane@x.com"))
	token := f.resets.lastRaw

	f.resets.now = func() time.Time { return base.Add(time.Hour + time.Second) }

	err := f.svc.ResetPassword(context.Background(), token, "Strong1!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPasswordAccountDeleted(t *testing.T) {
	f := newFixture(t)

	raw, err := f.resets.Issue(context.Background(), "ghost-account")
	require.NoError(t, err)

	err = f.svc.ResetPassword(context.Background(), raw, "Strong1!")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
