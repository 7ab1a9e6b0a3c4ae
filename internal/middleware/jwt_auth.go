package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"userauth/internal/auth"
)

type ctxKey string

const (
	CtxAccountID ctxKey = "account_id"
	CtxRole      ctxKey = "role"
)

// SessionAuth verifies the session token from the Authorization header or,
// failing that, the session cookie, and places the account id and role in the
// request context.
func SessionAuth(sessions *auth.SessionIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				if c, err := r.Cookie("token"); err == nil {
					tokenString = c.Value
				}
			}
			if tokenString == "" {
				http.Error(w, "Missing session token", http.StatusUnauthorized)
				return
			}

			claims, err := sessions.Verify(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					http.Error(w, "Session expired", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Invalid session token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CtxAccountID, claims.AccountID)
			ctx = context.WithValue(ctx, CtxRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
