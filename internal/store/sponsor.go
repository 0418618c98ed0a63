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

const sponsorColumns = `id, name, contact_name, contact_email, website_url, logo_url,
	tier, message, status, created_at, approved_at`

// SponsorStore handles sponsor submissions and approvals.
type SponsorStore struct {
	db sqlx.ExtContext
}

// NewSponsorStore creates a new SponsorStore.
func NewSponsorStore(db sqlx.ExtContext) *SponsorStore {
	return &SponsorStore{db: db}
}

// Create inserts a new pending sponsor, whatever status sp carries, and
// fills in its ID and creation time.
func (s *SponsorStore) Create(ctx context.Context, sp *models.Sponsor) error {
	sp.Status = models.SponsorStatusPending
	sp.ApprovedAt = nil
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO sponsors (name, contact_name, contact_email, website_url, logo_url, tier, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, sp.Name, sp.ContactName, sp.ContactEmail, sp.WebsiteURL, sp.LogoURL,
		sp.Tier, sp.Message, sp.Status,
	).Scan(&sp.ID, &sp.CreatedAt)
	if err != nil {
		return fmt.Errorf("create sponsor: %w", err)
	}
	return nil
}

// Find retrieves a sponsor by ID. Returns nil if not found.
func (s *SponsorStore) Find(ctx context.Context, id uuid.UUID) (*models.Sponsor, error) {
	sp := &models.Sponsor{}
	err := sqlx.GetContext(ctx, s.db, sp, "SELECT "+sponsorColumns+" FROM sponsors WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find sponsor: %w", err)
	}
	return sp, nil
}

// ListByStatus returns sponsors with the given status, newest first.
func (s *SponsorStore) ListByStatus(ctx context.Context, status models.SponsorStatus) ([]models.Sponsor, error) {
	var out []models.Sponsor
	err := sqlx.SelectContext(ctx, s.db, &out,
		"SELECT "+sponsorColumns+" FROM sponsors WHERE status = $1 ORDER BY created_at DESC", status)
	if err != nil {
		return nil, fmt.Errorf("list sponsors by status: %w", err)
	}
	return out, nil
}

// ListApproved returns the public sponsor grid: approved sponsors ordered
// by tier (gold first) and then by name.
func (s *SponsorStore) ListApproved(ctx context.Context) ([]models.Sponsor, error) {
	var out []models.Sponsor
	err := sqlx.SelectContext(ctx, s.db, &out, "SELECT "+sponsorColumns+`
		FROM sponsors
		WHERE status = 'approved'
		ORDER BY CASE tier
		    WHEN 'gold' THEN 1
		    WHEN 'silver' THEN 2
		    WHEN 'bronze' THEN 3
		    ELSE 4
		END, name`)
	if err != nil {
		return nil, fmt.Errorf("list approved sponsors: %w", err)
	}
	return out, nil
}

// Approve moves a pending sponsor to approved and stamps approved_at. It
// reports whether a row changed; approving an already approved or missing
// sponsor changes nothing.
func (s *SponsorStore) Approve(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sponsors SET status = 'approved', approved_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return false, fmt.Errorf("approve sponsor: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("approve sponsor rows affected: %w", err)
	}
	return n > 0, nil
}

// CountByStatus returns the number of sponsors in each status.
func (s *SponsorStore) CountByStatus(ctx context.Context) (map[models.SponsorStatus]int, error) {
	var rows []struct {
		Status models.SponsorStatus `db:"status"`
		Count  int                  `db:"count"`
	}
	err := sqlx.SelectContext(ctx, s.db, &rows, "SELECT status, COUNT(*) AS count FROM sponsors GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count sponsors: %w", err)
	}
	counts := map[models.SponsorStatus]int{
		models.SponsorStatusPending:  0,
		models.SponsorStatusApproved: 0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
