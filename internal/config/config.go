// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables and an optional .env file. It provides a centralized Config
// struct used across the application.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// defaultDBPassword is the development password; production must override it.
const defaultDBPassword = "changeme"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host          string
	Port          string
	Env           string // "development", "production", "testing"
	LogLevel      string
	PublicBaseURL string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Delegated auth and payment webhooks
	AuthJWTSecret       string
	StripeWebhookSecret string

	// Public sponsor form submissions allowed per IP per window
	SponsorRateLimit  int
	SponsorRateWindow time.Duration

	// Reverse proxies whose X-Forwarded-For is believed, from a
	// comma-separated TRUSTED_PROXIES list of CIDRs or addresses
	TrustedProxies []netip.Prefix

	// Rendered public pages are cached for this long
	PageCacheTTL time.Duration

	// AI provider settings
	AIProvider    string // "claude", "openai"
	ClaudeAPIKey  string
	ClaudeModel   string
	ClaudeBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Load reads configuration from the environment, applying defaults for
// development where appropriate. A .env file in the working directory is
// loaded first when present; real environment variables take precedence.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Host:          v.GetString("APP_HOST"),
		Port:          v.GetString("APP_PORT"),
		Env:           strings.ToLower(v.GetString("APP_ENV")),
		LogLevel:      v.GetString("LOG_LEVEL"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),

		DBHost:     v.GetString("POSTGRES_HOST"),
		DBPort:     v.GetString("POSTGRES_PORT"),
		DBUser:     v.GetString("POSTGRES_USER"),
		DBPassword: v.GetString("POSTGRES_PASSWORD"),
		DBName:     v.GetString("POSTGRES_DB"),

		ValkeyHost:     v.GetString("VALKEY_HOST"),
		ValkeyPort:     v.GetString("VALKEY_PORT"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),

		AuthJWTSecret:       v.GetString("AUTH_JWT_SECRET"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),

		SponsorRateLimit:  v.GetInt("SPONSOR_RATE_LIMIT"),
		SponsorRateWindow: v.GetDuration("SPONSOR_RATE_WINDOW"),
		PageCacheTTL:      v.GetDuration("PAGE_CACHE_TTL"),

		AIProvider:    strings.ToLower(v.GetString("AI_PROVIDER")),
		ClaudeAPIKey:  v.GetString("CLAUDE_API_KEY"),
		ClaudeModel:   v.GetString("CLAUDE_MODEL"),
		ClaudeBaseURL: v.GetString("CLAUDE_BASE_URL"),
		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		OpenAIModel:   v.GetString("OPENAI_MODEL"),
		OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
	}

	proxies, err := parsePrefixes(v.GetString("TRUSTED_PROXIES"))
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parsePrefixes parses a comma-separated list of CIDRs. Bare addresses
// become single-host prefixes.
func parsePrefixes(list string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !strings.Contains(item, "/") {
			addr, err := netip.ParseAddr(item)
			if err != nil {
				return nil, err
			}
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "riseup")
	v.SetDefault("POSTGRES_PASSWORD", defaultDBPassword)
	v.SetDefault("POSTGRES_DB", "riseup")

	v.SetDefault("VALKEY_HOST", "localhost")
	v.SetDefault("VALKEY_PORT", "6379")

	v.SetDefault("SPONSOR_RATE_LIMIT", 5)
	v.SetDefault("SPONSOR_RATE_WINDOW", "1h")
	v.SetDefault("PAGE_CACHE_TTL", "5m")

	v.SetDefault("AI_PROVIDER", "claude")
	v.SetDefault("CLAUDE_MODEL", "claude-sonnet-4-5")
	v.SetDefault("CLAUDE_BASE_URL", "https://api.anthropic.com")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
}

func (c *Config) validate() error {
	if c.SponsorRateLimit <= 0 {
		return fmt.Errorf("SPONSOR_RATE_LIMIT must be positive, got %d", c.SponsorRateLimit)
	}
	if c.SponsorRateWindow <= 0 {
		return errors.New("SPONSOR_RATE_WINDOW must be a positive duration")
	}
	if c.PageCacheTTL <= 0 {
		return errors.New("PAGE_CACHE_TTL must be a positive duration")
	}

	if c.Env != EnvProduction {
		return nil
	}
	var missing []string
	if c.DBPassword == defaultDBPassword {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if c.AuthJWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}
	if c.StripeWebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("must be set in production: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
