// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// version.go manages content_versions, the append-only archive of prior
// live values used for rollback. Retention is enforced on write.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"riseup/internal/models"
)

// VersionStore handles content version history.
type VersionStore struct {
	db sqlx.ExtContext
}

// NewVersionStore creates a new VersionStore.
func NewVersionStore(db sqlx.ExtContext) *VersionStore {
	return &VersionStore{db: db}
}

// WithTx returns a VersionStore bound to tx.
func (s *VersionStore) WithTx(tx *sqlx.Tx) *VersionStore {
	return &VersionStore{db: tx}
}

// Append archives content as the newest version of key and deletes that
// key's versions beyond the newest models.MaxVersionsPerKey. Run it inside
// a transaction so the insert and prune are atomic.
func (s *VersionStore) Append(ctx context.Context, key string, content models.JSON) (*models.ContentVersion, error) {
	v := &models.ContentVersion{ContentKey: key, Content: content}
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO content_versions (content_key, content)
		VALUES ($1, $2)
		RETURNING id, changed_at
	`, key, content).Scan(&v.ID, &v.ChangedAt)
	if err != nil {
		return nil, fmt.Errorf("append version %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM content_versions
		WHERE content_key = $1
		  AND id NOT IN (
		      SELECT id FROM content_versions
		      WHERE content_key = $1
		      ORDER BY changed_at DESC, id DESC
		      LIMIT $2
		  )
	`, key, models.MaxVersionsPerKey)
	if err != nil {
		return nil, fmt.Errorf("prune versions %s: %w", key, err)
	}
	return v, nil
}

// Find retrieves a version by ID. Returns nil if not found.
func (s *VersionStore) Find(ctx context.Context, id int64) (*models.ContentVersion, error) {
	v := &models.ContentVersion{}
	err := sqlx.GetContext(ctx, s.db, v, `
		SELECT id, content_key, content, changed_at
		FROM content_versions WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find version: %w", err)
	}
	return v, nil
}

// History returns up to perKey versions for every key, grouped by key in
// key order with the most recent version first.
func (s *VersionStore) History(ctx context.Context, perKey int) ([]models.KeyHistory, error) {
	var rows []models.ContentVersion
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT id, content_key, content, changed_at
		FROM (
		    SELECT id, content_key, content, changed_at,
		           ROW_NUMBER() OVER (PARTITION BY content_key ORDER BY changed_at DESC, id DESC) AS rn
		    FROM content_versions
		) ranked
		WHERE rn <= $1
		ORDER BY content_key, changed_at DESC, id DESC
	`, perKey)
	if err != nil {
		return nil, fmt.Errorf("version history: %w", err)
	}
	return groupByKey(rows), nil
}

// groupByKey folds rows already ordered by key into one KeyHistory per key.
func groupByKey(rows []models.ContentVersion) []models.KeyHistory {
	var out []models.KeyHistory
	for _, v := range rows {
		if n := len(out); n == 0 || out[n-1].ContentKey != v.ContentKey {
			out = append(out, models.KeyHistory{ContentKey: v.ContentKey})
		}
		last := &out[len(out)-1]
		last.Versions = append(last.Versions, v)
	}
	return out
}
