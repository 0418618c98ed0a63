// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"riseup/internal/models"
)

const draftColumns = `id, content_key, draft_type, content, created_by, created_at`

// DraftStore handles staged content changes in content_drafts.
type DraftStore struct {
	db sqlx.ExtContext
}

// NewDraftStore creates a new DraftStore.
func NewDraftStore(db sqlx.ExtContext) *DraftStore {
	return &DraftStore{db: db}
}

// WithTx returns a DraftStore bound to tx.
func (s *DraftStore) WithTx(tx *sqlx.Tx) *DraftStore {
	return &DraftStore{db: tx}
}

// Create inserts d and fills in its generated ID and creation time.
func (s *DraftStore) Create(ctx context.Context, d *models.Draft) error {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO content_drafts (content_key, draft_type, content, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, d.ContentKey, d.Type, d.Content, d.CreatedBy).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create draft: %w", err)
	}
	return nil
}

// Find retrieves a draft by ID. Returns nil if not found.
func (s *DraftStore) Find(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	return s.find(ctx, "SELECT "+draftColumns+" FROM content_drafts WHERE id = $1", id)
}

// FindForUpdate is Find with a row lock, so concurrent publishes of the
// same draft serialize.
func (s *DraftStore) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	return s.find(ctx, "SELECT "+draftColumns+" FROM content_drafts WHERE id = $1 FOR UPDATE", id)
}

func (s *DraftStore) find(ctx context.Context, query string, id uuid.UUID) (*models.Draft, error) {
	d := &models.Draft{}
	err := sqlx.GetContext(ctx, s.db, d, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find draft: %w", err)
	}
	return d, nil
}

// List returns all pending drafts, newest first.
func (s *DraftStore) List(ctx context.Context) ([]models.Draft, error) {
	var drafts []models.Draft
	err := sqlx.SelectContext(ctx, s.db, &drafts,
		"SELECT "+draftColumns+" FROM content_drafts ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// Delete removes a draft. It reports whether a row was deleted.
func (s *DraftStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM content_drafts WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete draft: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete draft rows affected: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of pending drafts.
func (s *DraftStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, s.db, &n, "SELECT COUNT(*) FROM content_drafts"); err != nil {
		return 0, fmt.Errorf("count drafts: %w", err)
	}
	return n, nil
}
