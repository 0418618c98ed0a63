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

// WebhookEventStore records processed payment provider events.
type WebhookEventStore struct {
	db sqlx.ExtContext
}

// NewWebhookEventStore creates a new WebhookEventStore.
func NewWebhookEventStore(db sqlx.ExtContext) *WebhookEventStore {
	return &WebhookEventStore{db: db}
}

// Claim records e and reports whether this call inserted it. A false
// result means the event id was already claimed by an earlier delivery.
func (s *WebhookEventStore) Claim(ctx context.Context, e *models.WebhookEvent) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO webhook_events (event_id, provider, event_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING
	`, e.EventID, e.Provider, e.EventType)
	if err != nil {
		return false, fmt.Errorf("claim webhook event %s: %w", e.EventID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim webhook event rows affected: %w", err)
	}
	return n == 1, nil
}
