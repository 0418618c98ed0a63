// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"riseup/internal/models"
)

const contentColumns = `content_key, content_type, content, page, section, updated_at`

// ContentStore handles the live site_content table read by public pages.
type ContentStore struct {
	db sqlx.ExtContext
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db sqlx.ExtContext) *ContentStore {
	return &ContentStore{db: db}
}

// WithTx returns a ContentStore bound to tx.
func (s *ContentStore) WithTx(tx *sqlx.Tx) *ContentStore {
	return &ContentStore{db: tx}
}

// Get retrieves a content item by key. Returns nil if not found.
func (s *ContentStore) Get(ctx context.Context, key string) (*models.ContentItem, error) {
	return s.get(ctx, "SELECT "+contentColumns+" FROM site_content WHERE content_key = $1", key)
}

// GetForUpdate is Get with a row lock, for use inside a transaction.
func (s *ContentStore) GetForUpdate(ctx context.Context, key string) (*models.ContentItem, error) {
	return s.get(ctx, "SELECT "+contentColumns+" FROM site_content WHERE content_key = $1 FOR UPDATE", key)
}

func (s *ContentStore) get(ctx context.Context, query, key string) (*models.ContentItem, error) {
	item := &models.ContentItem{}
	err := sqlx.GetContext(ctx, s.db, item, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content %s: %w", key, err)
	}
	return item, nil
}

// List returns every live content item ordered by key.
func (s *ContentStore) List(ctx context.Context) ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := sqlx.SelectContext(ctx, s.db, &items, "SELECT "+contentColumns+" FROM site_content ORDER BY content_key")
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// Upsert writes item, replacing any existing row with the same key.
// Page and section are derived from the key when empty.
func (s *ContentStore) Upsert(ctx context.Context, item *models.ContentItem) error {
	if item.Page == "" {
		item.Page = models.PageOf(item.Key)
	}
	if item.Section == "" {
		item.Section = models.SectionOf(item.Key)
	}

	err := sqlx.GetContext(ctx, s.db, &item.UpdatedAt, `
		INSERT INTO site_content (content_key, content_type, content, page, section, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (content_key) DO UPDATE
		SET content_type = EXCLUDED.content_type,
		    content = EXCLUDED.content,
		    page = EXCLUDED.page,
		    section = EXCLUDED.section,
		    updated_at = NOW()
		RETURNING updated_at
	`, item.Key, item.Type, item.Content, item.Page, item.Section)
	if err != nil {
		return fmt.Errorf("upsert content %s: %w", item.Key, err)
	}
	return nil
}
