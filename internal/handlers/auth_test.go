// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"riseup/internal/models"
	"riseup/internal/session"
)

func newTestAuth(t *testing.T, passwordLogin bool, role models.Role) (*Auth, *fakeSessions) {
	t.Helper()
	sessions := &fakeSessions{}
	users := &fakeUsers{
		user: &models.User{
			ID:          uuid.New(),
			Email:       "coach@riseup.local",
			DisplayName: "Coach",
			Role:        role,
		},
		password: "correct-horse",
	}
	return NewAuth(newRenderer(t), sessions, users, fakeTokens{valid: "good-token"}, passwordLogin), sessions
}

func TestLoginPage(t *testing.T) {
	a, _ := newTestAuth(t, true, models.RoleAdmin)

	rec := httptest.NewRecorder()
	a.LoginPage(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `action="/admin/login"`) {
		t.Error("password form should be shown when password login is enabled")
	}
	if !strings.Contains(body, `action="/admin/login/token"`) {
		t.Error("token form should be shown when a verifier is configured")
	}
}

func TestLoginPageHidesPasswordForm(t *testing.T) {
	a, _ := newTestAuth(t, false, models.RoleAdmin)

	rec := httptest.NewRecorder()
	a.LoginPage(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

	if strings.Contains(rec.Body.String(), `name="password"`) {
		t.Error("password field should be hidden when password login is disabled")
	}
}

func TestLoginPageRedirectsSignedIn(t *testing.T) {
	a, _ := newTestAuth(t, true, models.RoleAdmin)

	rec := httptest.NewRecorder()
	a.LoginPage(rec, withSession(httptest.NewRequest(http.MethodGet, "/admin/login", nil), adminSession()))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/dashboard" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestLoginSubmit(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		role     models.Role
		email    string
		password string
		want     int
		wantMsg  string
	}{
		{"success", true, models.RoleAdmin, "coach@riseup.local", "correct-horse", http.StatusSeeOther, ""},
		{"wrong password", true, models.RoleAdmin, "coach@riseup.local", "nope", http.StatusUnauthorized, "Invalid email or password."},
		{"unknown email", true, models.RoleAdmin, "who@riseup.local", "correct-horse", http.StatusUnauthorized, "Invalid email or password."},
		{"not an admin", true, models.Role("editor"), "coach@riseup.local", "correct-horse", http.StatusUnauthorized, "Invalid email or password."},
		{"disabled", false, models.RoleAdmin, "coach@riseup.local", "correct-horse", http.StatusForbidden, "Password sign-in is disabled."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, sessions := newTestAuth(t, tt.enabled, tt.role)

			form := url.Values{"email": {tt.email}, "password": {tt.password}}
			rec := httptest.NewRecorder()
			a.LoginSubmit(rec, postForm("/admin/login", form))

			if rec.Code != tt.want {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.want)
			}
			if tt.wantMsg != "" && !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Errorf("body should contain %q", tt.wantMsg)
			}

			if tt.want != http.StatusSeeOther {
				if len(sessions.created) != 0 {
					t.Error("no session should be created")
				}
				return
			}
			if len(sessions.created) != 1 {
				t.Fatalf("sessions created: got %d, want 1", len(sessions.created))
			}
			got := sessions.created[0]
			if got.Provider != session.ProviderPassword || got.Email != tt.email || got.CreatedAt.IsZero() {
				t.Errorf("session: got %+v", got)
			}
			if loc := rec.Header().Get("Location"); loc != "/admin/dashboard" {
				t.Errorf("Location: got %q", loc)
			}
		})
	}
}

func TestTokenLogin(t *testing.T) {
	tests := []struct {
		name   string
		form   url.Values
		header string
		want   int
	}{
		{"form token", url.Values{"access_token": {"good-token"}}, "", http.StatusSeeOther},
		{"bearer header", url.Values{}, "Bearer good-token", http.StatusSeeOther},
		{"bad token", url.Values{"access_token": {"forged"}}, "", http.StatusUnauthorized},
		{"missing token", url.Values{}, "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, sessions := newTestAuth(t, false, models.RoleAdmin)

			req := postForm("/admin/login/token", tt.form)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			a.TokenLogin(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.want)
			}
			if tt.want != http.StatusSeeOther {
				return
			}
			got := sessions.created[0]
			if got.Provider != session.ProviderToken || got.Subject != "user-1" || !got.IsAdmin() {
				t.Errorf("session: got %+v", got)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	a, sessions := newTestAuth(t, true, models.RoleAdmin)

	rec := httptest.NewRecorder()
	a.Logout(rec, withSession(httptest.NewRequest(http.MethodPost, "/admin/logout", nil), adminSession()))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("Location: got %q", loc)
	}
	if sessions.destroyed != 1 {
		t.Errorf("destroyed: got %d, want 1", sessions.destroyed)
	}
}
