// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"riseup/internal/models"
)

// VisibilityStore manages which public page sections are shown.
type VisibilityStore struct {
	db sqlx.ExtContext
}

// NewVisibilityStore returns a new VisibilityStore backed by the given database.
func NewVisibilityStore(db sqlx.ExtContext) *VisibilityStore {
	return &VisibilityStore{db: db}
}

// WithTx returns a VisibilityStore bound to tx.
func (s *VisibilityStore) WithTx(tx *sqlx.Tx) *VisibilityStore {
	return &VisibilityStore{db: tx}
}

// All returns every stored section flag as a convenience map.
func (s *VisibilityStore) All(ctx context.Context) (models.VisibilityMap, error) {
	var rows []models.SectionVisibility
	err := sqlx.SelectContext(ctx, s.db, &rows,
		"SELECT section_key, visible, updated_at FROM section_visibility ORDER BY section_key")
	if err != nil {
		return nil, fmt.Errorf("list section visibility: %w", err)
	}

	m := make(models.VisibilityMap, len(rows))
	for _, r := range rows {
		m[r.SectionKey] = r.Visible
	}
	return m, nil
}

// Set upserts the visibility flag for section.
func (s *VisibilityStore) Set(ctx context.Context, section string, visible bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO section_visibility (section_key, visible, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (section_key) DO UPDATE SET visible = EXCLUDED.visible, updated_at = NOW()
	`, section, visible)
	if err != nil {
		return fmt.Errorf("set visibility %s: %w", section, err)
	}
	return nil
}
