// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"riseup/internal/models"
	"riseup/internal/publish"
)

// PublicData holds everything a public page template reads. Content
// lookups fall back to the built-in defaults when a key is not live.
type PublicData struct {
	Title    string
	Path     string
	Live     *publish.Snapshot
	Defaults *publish.Snapshot

	// Preview is set when a draft is overlaid on live content.
	Preview bool

	Sponsors []models.Sponsor
	Form     *SponsorForm
	Flash    string
}

// SponsorForm carries submitted values back into the sponsor form when
// validation fails.
type SponsorForm struct {
	Name         string
	ContactName  string
	ContactEmail string
	WebsiteURL   string
	LogoURL      string
	Tier         string
	Message      string
	Error        string
}

// Text returns the live text for key, else the default.
func (d *PublicData) Text(key string) string {
	fallback := ""
	if d.Defaults != nil {
		fallback = d.Defaults.Text(key, "")
	}
	if d.Live == nil {
		return fallback
	}
	return d.Live.Text(key, fallback)
}

// Image returns the live image for key, else the default.
func (d *PublicData) Image(key string) models.ImageContent {
	var fallback models.ImageContent
	if d.Defaults != nil {
		fallback = d.Defaults.Image(key, fallback)
	}
	if d.Live == nil {
		return fallback
	}
	return d.Live.Image(key, fallback)
}

// Visible reports whether a page section is shown.
func (d *PublicData) Visible(section string) bool {
	return d.Live == nil || d.Live.Visible(section)
}

// Announcement returns the active announcement, or nil.
func (d *PublicData) Announcement() *models.Announcement {
	if d.Live == nil {
		return nil
	}
	return d.Live.Announcement
}

// Tiers lists sponsor tiers in display order for the submission form.
func (d *PublicData) Tiers() []models.SponsorTier {
	return []models.SponsorTier{
		models.SponsorTierGold,
		models.SponsorTierSilver,
		models.SponsorTierBronze,
		models.SponsorTierCommunity,
	}
}

// DefaultSnapshot builds a snapshot from built-in content items.
func DefaultSnapshot(items []models.ContentItem) *publish.Snapshot {
	s := &publish.Snapshot{
		Items:      make(map[string]models.ContentItem, len(items)),
		Visibility: models.VisibilityMap{},
	}
	for _, item := range items {
		s.Items[item.Key] = item
	}
	return s
}
