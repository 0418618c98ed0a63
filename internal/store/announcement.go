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

// AnnouncementStore manages the site-wide announcement banner. A partial
// unique index keeps at most one row active.
type AnnouncementStore struct {
	db sqlx.ExtContext
}

// NewAnnouncementStore creates a new AnnouncementStore.
func NewAnnouncementStore(db sqlx.ExtContext) *AnnouncementStore {
	return &AnnouncementStore{db: db}
}

// WithTx returns an AnnouncementStore bound to tx.
func (s *AnnouncementStore) WithTx(tx *sqlx.Tx) *AnnouncementStore {
	return &AnnouncementStore{db: tx}
}

// Active returns the active announcement. Returns nil if there is none.
func (s *AnnouncementStore) Active(ctx context.Context) (*models.Announcement, error) {
	a := &models.Announcement{}
	err := sqlx.GetContext(ctx, s.db, a, `
		SELECT id, message, link_url, link_text, active, created_at, deactivated_at
		FROM announcements WHERE active
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active announcement: %w", err)
	}
	return a, nil
}

// DeactivateActive clears the active flag on the current announcement and
// returns how many rows changed (0 or 1).
func (s *AnnouncementStore) DeactivateActive(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE announcements SET active = FALSE, deactivated_at = NOW() WHERE active
	`)
	if err != nil {
		return 0, fmt.Errorf("deactivate announcement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate announcement rows affected: %w", err)
	}
	return n, nil
}

// Create inserts a as the active announcement. Callers must deactivate the
// current one first in the same transaction.
func (s *AnnouncementStore) Create(ctx context.Context, a *models.Announcement) error {
	a.Active = true
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO announcements (message, link_url, link_text, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, created_at
	`, a.Message, a.LinkURL, a.LinkText).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}
