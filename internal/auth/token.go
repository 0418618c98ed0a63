// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth verifies access tokens issued by the hosted auth provider.
// Tokens are HS256 JWTs signed with the project's shared secret; an admin
// is a token whose role claim, or app_metadata.role, is "admin".
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminRole = "admin"

var (
	// ErrInvalidToken is returned for malformed, expired or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNotAdmin is returned for valid tokens without the admin role.
	ErrNotAdmin = errors.New("token does not grant admin access")

	// ErrNoSecret is returned when token login is not configured.
	ErrNoSecret = errors.New("token verification is not configured")
)

// Claims is the payload of a hosted auth provider access token.
type Claims struct {
	Email        string       `json:"email"`
	Role         string       `json:"role"`
	AppMetadata  AppMetadata  `json:"app_metadata"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// AppMetadata holds server-controlled attributes of the user.
type AppMetadata struct {
	Role string `json:"role"`
}

// UserMetadata holds user-editable profile attributes.
type UserMetadata struct {
	FullName string `json:"full_name"`
}

// IsAdmin reports whether the claims grant admin access.
func (c *Claims) IsAdmin() bool {
	return c.Role == adminRole || c.AppMetadata.Role == adminRole
}

// DisplayName returns the best human-readable name in the claims.
func (c *Claims) DisplayName() string {
	if c.UserMetadata.FullName != "" {
		return c.UserMetadata.FullName
	}
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

// Verifier validates HS256 tokens against a shared secret.
type Verifier struct {
	secret []byte
	leeway time.Duration
}

// NewVerifier returns a Verifier for secret. An empty secret yields a
// verifier that rejects every token with ErrNoSecret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), leeway: 30 * time.Second}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify parses and validates tokenString, returning its claims. It does
// not check the role; see VerifyAdmin.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if !v.Enabled() {
		return nil, ErrNoSecret
	}

	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(v.leeway), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAdmin is Verify followed by the admin role check.
func (v *Verifier) VerifyAdmin(tokenString string) (*Claims, error) {
	claims, err := v.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
