package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"userauth/internal/auth"
	"userauth/internal/models"
)

func protectedHandler(t *testing.T, wantAccountID string, wantRole models.Role) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(CtxAccountID).(string)
		role, _ := r.Context().Value(CtxRole).(models.Role)
		if id != wantAccountID {
			t.Errorf("expected account %q in context, got %q", wantAccountID, id)
		}
		if role != wantRole {
			t.Errorf("expected role %q in context, got %q", wantRole, role)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuthMissingToken(t *testing.T) {
	issuer := auth.NewSessionIssuer("test-secret")
	h := SessionAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSessionAuthGarbageToken(t *testing.T) {
	issuer := auth.NewSessionIssuer("test-secret")
	h := SessionAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a garbage token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSessionAuthExpiredToken(t *testing.T) {
	issuer := auth.NewSessionIssuer("test-secret")
	token, err := issuer.Issue("acct-1", models.RoleUser, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	h := SessionAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSessionAuthBearerHeader(t *testing.T) {
	issuer := auth.NewSessionIssuer("test-secret")
	token, err := issuer.Issue("acct-1", models.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	h := SessionAuth(issuer)(protectedHandler(t, "acct-1", models.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestSessionAuthCookieFallback(t *testing.T) {
	issuer := auth.NewSessionIssuer("test-secret")
	token, err := issuer.Issue("acct-1", models.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	h := SessionAuth(issuer)(protectedHandler(t, "acct-1", models.RoleUser))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
}
