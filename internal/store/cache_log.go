// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache_log.go records page cache invalidations in the database for
// audit and debugging purposes. Each entry captures which entity caused
// the invalidation and which action triggered it.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Cache log entity types.
const (
	EntityContent      = "content"
	EntityAnnouncement = "announcement"
	EntityVisibility   = "visibility"
	EntitySponsor      = "sponsor"
)

// CacheLogStore handles cache invalidation log operations.
type CacheLogStore struct {
	db sqlx.ExtContext
}

// NewCacheLogStore creates a new CacheLogStore.
func NewCacheLogStore(db sqlx.ExtContext) *CacheLogStore {
	return &CacheLogStore{db: db}
}

// Log records a cache invalidation event.
func (s *CacheLogStore) Log(ctx context.Context, entityType, entityKey, action string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_invalidation_log (entity_type, entity_key, action)
		VALUES ($1, $2, $3)
	`, entityType, entityKey, action)
	if err != nil {
		// Cache logging is best-effort.
		slog.Warn("failed to log cache invalidation",
			"entity_type", entityType,
			"entity_key", entityKey,
			"action", action,
			"error", err,
		)
		return
	}
	slog.Debug("cache invalidation logged",
		"entity_type", entityType,
		"entity_key", entityKey,
		"action", action,
	)
}

// RecentEntries returns the most recent cache invalidation events for
// debugging. Limited to the specified count.
func (s *CacheLogStore) RecentEntries(ctx context.Context, limit int) ([]CacheLogEntry, error) {
	var entries []CacheLogEntry
	err := sqlx.SelectContext(ctx, s.db, &entries, `
		SELECT id, entity_type, entity_key, action, invalidated_at
		FROM cache_invalidation_log
		ORDER BY invalidated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cache log: %w", err)
	}
	return entries, nil
}

// CacheLogEntry represents a single cache invalidation event.
type CacheLogEntry struct {
	ID            int64     `db:"id"`
	EntityType    string    `db:"entity_type"`
	EntityKey     string    `db:"entity_key"`
	Action        string    `db:"action"`
	InvalidatedAt time.Time `db:"invalidated_at"`
}
