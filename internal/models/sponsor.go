// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// SponsorStatus is the review state of a sponsor submission.
type SponsorStatus string

const (
	SponsorStatusPending  SponsorStatus = "pending"
	SponsorStatusApproved SponsorStatus = "approved"
)

// SponsorTier ranks sponsors on the public grid.
type SponsorTier string

const (
	SponsorTierGold      SponsorTier = "gold"
	SponsorTierSilver    SponsorTier = "silver"
	SponsorTierBronze    SponsorTier = "bronze"
	SponsorTierCommunity SponsorTier = "community"
)

// Sponsor is a business or family supporting the league. Submissions
// start pending and become visible once an admin approves them.
type Sponsor struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	ContactName  string        `db:"contact_name" json:"contact_name"`
	ContactEmail string        `db:"contact_email" json:"contact_email"`
	WebsiteURL   *string       `db:"website_url" json:"website_url,omitempty"`
	LogoURL      string        `db:"logo_url" json:"logo_url"`
	Tier         SponsorTier   `db:"tier" json:"tier"`
	Message      *string       `db:"message" json:"message,omitempty"`
	Status       SponsorStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	ApprovedAt   *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
}

// IsApproved returns true once an admin has approved the sponsor.
func (s *Sponsor) IsApproved() bool {
	return s.Status == SponsorStatusApproved
}
