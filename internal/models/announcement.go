// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is the site-wide banner. At most one row is active.
type Announcement struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Message       string     `db:"message" json:"message"`
	LinkURL       *string    `db:"link_url" json:"link_url,omitempty"`
	LinkText      *string    `db:"link_text" json:"link_text,omitempty"`
	Active        bool       `db:"active" json:"active"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	DeactivatedAt *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
}
