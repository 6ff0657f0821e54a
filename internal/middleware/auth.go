package middleware

import (
	"context"
	"net/http"
	"strings"

	"happythings/internal/auth"
)

type ctxKey int

const sessionTokenKey ctxKey = iota

// SessionChecker reports whether a bearer token belongs to a live admin session.
type SessionChecker interface {
	IsAdmin(ctx context.Context, token string) bool
}

type AuthMiddleware struct {
	sessions     SessionChecker
	uploadSecret []byte
}

func NewAuthMiddleware(sessions SessionChecker, uploadSecret []byte) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, uploadSecret: uploadSecret}
}

// BearerToken returns the token of an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
}

// SessionToken returns the admin token stored by RequireAdmin.
func SessionToken(ctx context.Context) string {
	tok, _ := ctx.Value(sessionTokenKey).(string)
	return tok
}

func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if !m.sessions.IsAdmin(r.Context(), token) {
			http.Error(w, "invalid session", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), sessionTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUploader admits requests signed with the upload secret.
func (m *AuthMiddleware) RequireUploader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if err := auth.VerifyUploadToken(m.uploadSecret, token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
