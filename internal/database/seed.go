// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"riseup/internal/models"
)

// Development admin credentials, created only when no users exist.
const (
	DevAdminEmail    = "admin@riseup.local"
	DevAdminPassword = "admin"
)

//go:embed content_defaults.yaml
var contentDefaultsYAML []byte

// ContentDefault is one built-in content entry from content_defaults.yaml.
type ContentDefault struct {
	Key     string             `yaml:"key"`
	Type    models.ContentType `yaml:"type"`
	Content map[string]any     `yaml:"content"`
}

// ContentDefaults parses the embedded default content.
func ContentDefaults() ([]ContentDefault, error) {
	var doc struct {
		Content []ContentDefault `yaml:"content"`
	}
	if err := yaml.Unmarshal(contentDefaultsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse content defaults: %w", err)
	}
	for _, d := range doc.Content {
		if !models.ValidContentKey(d.Key) {
			return nil, fmt.Errorf("content defaults: invalid key %q", d.Key)
		}
		switch d.Type {
		case models.ContentTypeText, models.ContentTypeImage, models.ContentTypeVisibility:
		default:
			return nil, fmt.Errorf("content defaults: %s has unknown type %q", d.Key, d.Type)
		}
	}
	return doc.Content, nil
}

// Seed creates the development admin user if no users exist. It is only
// called in development mode; production admins sign in through the
// hosted auth provider.
func Seed(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DevAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, DevAdminEmail, string(hash), "Admin", models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", DevAdminEmail,
		"password", DevAdminPassword,
	)
	return nil
}

// DefaultItems returns the built-in content as content items.
func DefaultItems() ([]models.ContentItem, error) {
	defaults, err := ContentDefaults()
	if err != nil {
		return nil, err
	}

	items := make([]models.ContentItem, 0, len(defaults))
	for _, d := range defaults {
		body, err := json.Marshal(d.Content)
		if err != nil {
			return nil, fmt.Errorf("default content %s: %w", d.Key, err)
		}
		items = append(items, *models.NewContentItem(d.Key, d.Type, body))
	}
	return items, nil
}

// SeedContent inserts every built-in content entry whose key is not yet
// present. Published values are never overwritten.
func SeedContent(db *sqlx.DB) error {
	items, err := DefaultItems()
	if err != nil {
		return err
	}

	var inserted int64
	for i := range items {
		item := &items[i]
		res, err := db.NamedExec(`
			INSERT INTO site_content (content_key, content_type, content, page, section)
			VALUES (:content_key, :content_type, :content, :page, :section)
			ON CONFLICT (content_key) DO NOTHING
		`, item)
		if err != nil {
			return fmt.Errorf("seed content %s: %w", item.Key, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	slog.Info("default content seeded", "inserted", inserted, "total", len(items))
	return nil
}
