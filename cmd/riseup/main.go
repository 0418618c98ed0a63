// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the RiseUp site server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"riseup/internal/ai"
	"riseup/internal/assistant"
	"riseup/internal/auth"
	"riseup/internal/cache"
	"riseup/internal/config"
	"riseup/internal/database"
	"riseup/internal/handlers"
	"riseup/internal/metrics"
	"riseup/internal/middleware"
	"riseup/internal/publish"
	"riseup/internal/render"
	"riseup/internal/router"
	"riseup/internal/session"
	"riseup/internal/store"
	"riseup/internal/webhook"
)

func main() {
	// Load configuration from the environment and an optional .env file.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.LogLevel))
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db.DB); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Built-in content fills keys that were never published.
	if err := database.SeedContent(db); err != nil {
		slog.Error("failed to seed content", "error", err)
		os.Exit(1)
	}
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	defaultItems, err := database.DefaultItems()
	if err != nil {
		slog.Error("failed to load content defaults", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (page cache, sessions, rate limits).
	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	valkeyClient, err := cache.ConnectValkey(startCtx, cfg.ValkeyAddr(), cfg.ValkeyPassword)
	cancelStart()
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	pageCache := cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)
	sponsorLimit := middleware.NewRateLimiter(valkeyClient, "sponsor", cfg.SponsorRateLimit, cfg.SponsorRateWindow,
		middleware.TrustProxies(cfg.TrustedProxies...))
	m := metrics.New()

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores and the publishing workflow.
	userStore := store.NewUserStore(db)
	contentStore := store.NewContentStore(db)
	sponsorStore := store.NewSponsorStore(db)
	publisher := publish.New(db, pageCache,
		publish.WithCacheLog(store.NewCacheLogStore(db)),
		publish.WithMetrics(m),
	)

	verifier := auth.NewVerifier(cfg.AuthJWTSecret)
	if !verifier.Enabled() {
		slog.Warn("AUTH_JWT_SECRET not set, token sign-in disabled")
	}

	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"claude": {APIKey: cfg.ClaudeAPIKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"openai": {APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
	})
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)
	editor := assistant.NewEditor(aiRegistry, publisher, contentStore)

	processor := webhook.NewProcessor(store.NewWebhookEventStore(db), m)
	if cfg.StripeWebhookSecret == "" {
		slog.Warn("STRIPE_WEBHOOK_SECRET not set, webhooks will be rejected")
	}

	// Password sign-in is a development convenience.
	passwordLogin := cfg.IsDev()

	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Tokens:        verifier,
		Metrics:       m,
		SponsorLimit:  sponsorLimit,
		SecureCookies: secureCookies,
		Admin:         handlers.NewAdmin(renderer, publisher, sponsorStore),
		Auth:          handlers.NewAuth(renderer, sessionStore, userStore, verifier, passwordLogin),
		Public:        handlers.NewPublic(renderer, publisher, sponsorStore, pageCache, m, render.DefaultSnapshot(defaultItems)),
		Webhook:       handlers.NewWebhook(cfg.StripeWebhookSecret, processor),
		Chat:          handlers.NewChat(editor),
	})

	// WriteTimeout must accommodate the chat endpoint waiting on the model.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newLogger writes text to a terminal and JSON otherwise. Unknown levels
// fall back to info.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
