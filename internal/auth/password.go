package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordPolicy is the user-facing message for rejected reset passwords.
const PasswordPolicy = "Password must be at least 8 characters, include lowercase, number, and special character (!@$#%&*?)."

const passwordSymbols = "!@$#%&*?"

// Hasher wraps bcrypt with a fixed work factor.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Costs outside the
// bcrypt range fall back to the default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted digest of plaintext. The salt is embedded in the
// digest, so the same plaintext hashes differently on every call.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Check reports whether plaintext matches digest. A malformed digest counts
// as a non-match rather than an error.
func (h *Hasher) Check(plaintext string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// ValidPassword reports whether pw satisfies the reset-password policy:
// at least 8 characters with a lowercase letter, a digit and one of !@$#%&*?.
func ValidPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && digit && symbol
}
