// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"riseup/internal/auth"
	"riseup/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"

	// bearerKey marks requests authenticated by an Authorization header.
	bearerKey contextKey = "bearer"
)

// SessionLoader reads the session referenced by a request's cookie.
type SessionLoader interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
}

// TokenVerifier verifies hosted-auth admin tokens.
type TokenVerifier interface {
	VerifyAdmin(token string) (*auth.Claims, error)
}

// LoadSession retrieves the session from Valkey and stores it in the
// request context. Downstream handlers can access it via SessionFromCtx().
// This middleware does NOT enforce authentication, it just loads the
// session if one exists.
func LoadSession(store SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("load session", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				ctx := context.WithValue(r.Context(), SessionKey, data)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BearerAuth authenticates requests carrying "Authorization: Bearer <jwt>"
// as an admin session for the duration of the request. Requests without
// the header pass through unchanged; an invalid token is rejected with 401.
func BearerAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.VerifyAdmin(header)
			if err != nil {
				slog.Warn("bearer token rejected", "path", r.URL.Path, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "invalid token"})
				return
			}

			data := &session.Data{
				Subject:     claims.Subject,
				Email:       claims.Email,
				DisplayName: claims.DisplayName(),
				Role:        "admin",
				Provider:    session.ProviderToken,
				CreatedAt:   time.Now(),
			}
			ctx := context.WithValue(r.Context(), SessionKey, data)
			ctx = context.WithValue(ctx, bearerKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth redirects unauthenticated users to the login page.
// Must be applied after LoadSession in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess == nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin returns 403 if the authenticated user is not an admin.
// Must be applied after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFromCtx(r.Context()).IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded (user is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// IsBearer reports whether the request was authenticated by BearerAuth.
func IsBearer(ctx context.Context) bool {
	ok, _ := ctx.Value(bearerKey).(bool)
	return ok
}
