// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// SectionVisibility toggles whether a public page section is rendered.
type SectionVisibility struct {
	SectionKey string    `db:"section_key" json:"section_key"`
	Visible    bool      `db:"visible" json:"visible"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// VisibilityMap is a convenience map for looking up section visibility.
type VisibilityMap map[string]bool

// Visible reports whether a section is shown. Sections without a row are
// visible.
func (v VisibilityMap) Visible(section string) bool {
	visible, ok := v[section]
	return !ok || visible
}

// VisibilityKey returns the content key mirroring a section's visibility
// flag in site_content.
func VisibilityKey(section string) string {
	return section + ".visible"
}
