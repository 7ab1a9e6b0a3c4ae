package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"userauth/internal/models"
)

var (
	// ErrTokenInvalid covers malformed tokens and bad signatures.
	ErrTokenInvalid = errors.New("session token invalid")
	// ErrTokenExpired means the token was well-formed but past its expiry.
	ErrTokenExpired = errors.New("session token expired")
)

// SessionClaims is the verified content of a session token.
type SessionClaims struct {
	AccountID string
	Role      models.Role
}

// SessionIssuer signs and verifies stateless session tokens (HS256). The
// signing secret is fixed at construction and read-only afterwards. There is
// no server-side revocation; the token itself is the source of truth.
type SessionIssuer struct {
	secret []byte
}

func NewSessionIssuer(secret string) *SessionIssuer {
	return &SessionIssuer{secret: []byte(secret)}
}

// Issue returns a signed token binding accountID and role for ttl.
func (s *SessionIssuer) Issue(accountID string, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  accountID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature integrity and expiry without any store lookup.
// Expired but otherwise well-formed tokens yield ErrTokenExpired; anything
// else yields ErrTokenInvalid.
func (s *SessionIssuer) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if token == nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrTokenInvalid
	}
	role, _ := claims["role"].(string)

	return &SessionClaims{AccountID: sub, Role: models.Role(role)}, nil
}
