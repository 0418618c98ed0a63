// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riseup/internal/models"
)

func TestWebhookEventStoreClaim(t *testing.T) {
	db, mock := newMock(t)
	s := NewWebhookEventStore(db)
	ev := &models.WebhookEvent{EventID: "evt_123", Provider: "stripe", EventType: "invoice.paid"}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (event_id) DO NOTHING")).
		WithArgs("evt_123", "stripe", "invoice.paid").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (event_id) DO NOTHING")).
		WithArgs("evt_123", "stripe", "invoice.paid").
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := s.Claim(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = s.Claim(context.Background(), ev)
	require.NoError(t, err)
	assert.False(t, claimed, "replayed event must not be claimed twice")
}

func TestWebhookEventStoreClaimError(t *testing.T) {
	db, mock := newMock(t)
	s := NewWebhookEventStore(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO webhook_events")).
		WillReturnError(assert.AnError)

	claimed, err := s.Claim(context.Background(), &models.WebhookEvent{EventID: "evt_x", Provider: "stripe"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, claimed)
}
