package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/session"
)

// Session keys written at login and read by Authenticate.
const (
	SessionUserKey = "user_id"
	SessionRoleKey = "role"
)

type identityKey struct{}

type identity struct {
	userID string
	role   string
}

// WithIdentity attaches an authenticated user to ctx.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity{userID: userID, role: role})
}

// UserIDFromCtx returns the authenticated user id, if any.
func UserIDFromCtx(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(identityKey{}).(identity)
	if !ok || id.userID == "" {
		return "", false
	}
	return id.userID, true
}

// RoleFromCtx returns the authenticated user's role, if any.
func RoleFromCtx(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(identityKey{}).(identity)
	if !ok || id.userID == "" {
		return "", false
	}
	return id.role, true
}

// Authenticate resolves the caller from a Bearer token or, failing that, the
// session. It never rejects; pair it with RequireAuth on protected groups.
// An invalid bearer token is treated as anonymous.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearer(r); ok {
			claims, err := auth.ValidateToken(token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("auth: rejected bearer token", "error", err)
			} else {
				r = r.WithContext(WithIdentity(r.Context(), claims.UserID, claims.Role))
			}
		} else if sess := session.FromCtx(r); sess != nil {
			if uid, _ := sess.GetString(SessionUserKey); uid != "" {
				role, _ := sess.GetString(SessionRoleKey)
				r = r.WithContext(WithIdentity(r.Context(), uid, role))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromCtx(r); !ok {
			response.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(h[7:])
	return token, token != ""
}
