// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"riseup/internal/auth"
	"riseup/internal/middleware"
	"riseup/internal/models"
	"riseup/internal/render"
	"riseup/internal/session"
)

// SessionManager creates and destroys admin sessions.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// UserFinder looks up local admin accounts for password sign-in.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// TokenVerifier validates hosted auth provider access tokens.
type TokenVerifier interface {
	Enabled() bool
	VerifyAdmin(token string) (*auth.Claims, error)
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer *render.Renderer
	sessions SessionManager
	users    UserFinder
	tokens   TokenVerifier

	// passwordLogin enables the local email/password fallback.
	passwordLogin bool
}

// NewAuth creates a new Auth handler group. passwordLogin enables the
// development email/password sign-in against local accounts.
func NewAuth(renderer *render.Renderer, sessions SessionManager, users UserFinder, tokens TokenVerifier, passwordLogin bool) *Auth {
	return &Auth{
		renderer:      renderer,
		sessions:      sessions,
		users:         users,
		tokens:        tokens,
		passwordLogin: passwordLogin,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	a.loginPage(w, r, http.StatusOK, "", "")
}

func (a *Auth) loginPage(w http.ResponseWriter, r *http.Request, status int, email, msg string) {
	a.renderer.PageStatus(w, r, status, "login", &render.PageData{
		Title: "Sign In",
		Data: map[string]any{
			"Email":         email,
			"Error":         msg,
			"PasswordLogin": a.passwordLogin,
			"TokenLogin":    a.tokens.Enabled(),
		},
	})
}

// LoginSubmit processes the email/password login form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if !a.passwordLogin {
		a.loginPage(w, r, http.StatusForbidden, "", "Password sign-in is disabled. Use your access token.")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	user, err := a.users.FindByEmail(r.Context(), email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.loginPage(w, r, http.StatusInternalServerError, email, "An unexpected error occurred.")
		return
	}

	if user == nil || !a.users.CheckPassword(user, password) || !user.IsAdmin() {
		a.loginPage(w, r, http.StatusUnauthorized, email, "Invalid email or password.")
		return
	}

	a.startSession(w, r, &session.Data{
		Subject:     user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		Provider:    session.ProviderPassword,
	})
}

// TokenLogin exchanges a hosted auth provider access token for a session.
// The token comes from the access_token form field or the Authorization
// header.
func (a *Auth) TokenLogin(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.FormValue("access_token"))
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	if token == "" {
		a.loginPage(w, r, http.StatusBadRequest, "", "An access token is required.")
		return
	}

	claims, err := a.tokens.VerifyAdmin(token)
	if err != nil {
		slog.Warn("token login rejected", "error", err)
		a.loginPage(w, r, http.StatusUnauthorized, "", "Invalid or unauthorized access token.")
		return
	}

	a.startSession(w, r, &session.Data{
		Subject:     claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName(),
		Role:        string(models.RoleAdmin),
		Provider:    session.ProviderToken,
	})
}

func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, data *session.Data) {
	data.CreatedAt = time.Now()
	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("admin signed in", "email", data.Email, "provider", data.Provider)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
