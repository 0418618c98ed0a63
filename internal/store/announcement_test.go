// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riseup/internal/models"
)

func TestAnnouncementStoreActive(t *testing.T) {
	db, mock := newMock(t)
	s := NewAnnouncementStore(db)
	link := "/register"

	mock.ExpectQuery(regexp.QuoteMeta("FROM announcements WHERE active")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message", "link_url", "link_text", "active", "created_at", "deactivated_at"}).
			AddRow(uuid.NewString(), "Spring signups open", link, nil, true, time.Now(), nil))

	a, err := s.Active(context.Background())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Spring signups open", a.Message)
	require.NotNil(t, a.LinkURL)
	assert.Equal(t, link, *a.LinkURL)
	assert.Nil(t, a.LinkText)
}

func TestAnnouncementStoreActiveNone(t *testing.T) {
	db, mock := newMock(t)
	s := NewAnnouncementStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM announcements WHERE active")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "message", "link_url", "link_text", "active", "created_at", "deactivated_at"}))

	a, err := s.Active(context.Background())
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestAnnouncementStoreReplaceInTx(t *testing.T) {
	db, mock := newMock(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE announcements SET active = FALSE, deactivated_at = NOW() WHERE active")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO announcements (message, link_url, link_text, active)")).
		WithArgs("Game day moved", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), time.Now()))
	mock.ExpectCommit()

	a := &models.Announcement{Message: "Game day moved"}
	err := InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		s := NewAnnouncementStore(db).WithTx(tx)
		n, err := s.DeactivateActive(context.Background())
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1), n)
		return s.Create(context.Background(), a)
	})
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)
	assert.True(t, a.Active)
}

// TestAnnouncementStoreOneActive exercises the replace sequence against a
// real database: after two replacements exactly one row is active.
func TestAnnouncementStoreOneActive(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	var created []uuid.UUID
	t.Cleanup(func() {
		for _, id := range created {
			db.Exec("DELETE FROM announcements WHERE id = $1", id)
		}
	})

	for _, msg := range []string{"first", "second"} {
		a := &models.Announcement{Message: msg}
		err := InTx(ctx, db, func(tx *sqlx.Tx) error {
			s := NewAnnouncementStore(db).WithTx(tx)
			if _, err := s.DeactivateActive(ctx); err != nil {
				return err
			}
			return s.Create(ctx, a)
		})
		require.NoError(t, err)
		created = append(created, a.ID)
	}

	var active int
	require.NoError(t, db.Get(&active, "SELECT COUNT(*) FROM announcements WHERE active"))
	assert.Equal(t, 1, active)

	current, err := NewAnnouncementStore(db).Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "second", current.Message)
}
