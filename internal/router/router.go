// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// RiseUp site. It organizes routes into public, webhook and admin groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riseup/internal/handlers"
	"riseup/internal/metrics"
	"riseup/internal/middleware"
	"riseup/web"
)

// Deps holds everything the router wires into routes.
type Deps struct {
	Sessions middleware.SessionLoader
	Tokens   middleware.TokenVerifier
	Metrics  *metrics.Metrics

	// SponsorLimit throttles public sponsor submissions. Nil disables it.
	SponsorLimit *middleware.RateLimiter

	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool

	Admin   *handlers.Admin
	Auth    *handlers.Auth
	Public  *handlers.Public
	Webhook *handlers.Webhook
	Chat    *handlers.Chat
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check and metrics, no auth, no CSRF.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	static, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	// Payment provider callbacks authenticate by signature.
	r.Post("/api/webhooks/stripe", d.Webhook.Stripe)

	// Public site. Pages are cached, so the sponsor form carries no CSRF
	// token and is rate limited instead.
	r.Get("/", d.Public.Home)
	r.Get("/programs", d.Public.Programs)
	r.Get("/sponsors", d.Public.Sponsors)
	r.Group(func(r chi.Router) {
		if d.SponsorLimit != nil {
			r.Use(d.SponsorLimit.Middleware)
		}
		r.Post("/sponsors", d.Public.SubmitSponsor)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.BearerAuth(d.Tokens))
		r.Use(middleware.NewCSRF(d.SecureCookies))

		// Auth pages, accessible without a session.
		r.Get("/login", d.Auth.LoginPage)
		r.Post("/login", d.Auth.LoginSubmit)
		r.Post("/login/token", d.Auth.TokenLogin)
		r.Post("/logout", d.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireAdmin)

			r.Get("/", http.RedirectHandler("/admin/dashboard", http.StatusSeeOther).ServeHTTP)

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", d.Admin.Dashboard)
				r.Get("/preview", d.Admin.Preview)
				r.Post("/drafts/{id}/publish", d.Admin.PublishDraft)
				r.Post("/drafts/{id}/cancel", d.Admin.CancelDraft)
				r.Get("/history", d.Admin.History)
				r.Post("/history/{id}/restore", d.Admin.RestoreVersion)
			})

			r.Post("/content/drafts", d.Admin.CreateDraft)

			r.Get("/sponsors", d.Admin.SponsorsList)
			r.Post("/sponsors/{id}/approve", d.Admin.ApproveSponsor)

			r.Post("/chat", d.Chat.Handle)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
