// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"context"
	"maps"

	"riseup/internal/models"
)

// Snapshot is everything the public pages render from: live content
// items, the active announcement and section visibility.
type Snapshot struct {
	Items        map[string]models.ContentItem
	Announcement *models.Announcement
	Visibility   models.VisibilityMap
}

// LiveSnapshot reads the current live state.
func (p *Publisher) LiveSnapshot(ctx context.Context) (*Snapshot, error) {
	items, err := p.content.List(ctx)
	if err != nil {
		return nil, err
	}
	announcement, err := p.announcements.Active(ctx)
	if err != nil {
		return nil, err
	}
	visibility, err := p.visibility.All(ctx)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		Items:        make(map[string]models.ContentItem, len(items)),
		Announcement: announcement,
		Visibility:   visibility,
	}
	for _, item := range items {
		s.Items[item.Key] = item
	}
	return s, nil
}

// Text returns the text stored at key, or fallback when the key is not
// live or holds no text.
func (s *Snapshot) Text(key, fallback string) string {
	item, ok := s.Items[key]
	if !ok {
		return fallback
	}
	if t := item.Text(); t != "" {
		return t
	}
	return fallback
}

// Image returns the image stored at key, or fallback.
func (s *Snapshot) Image(key string, fallback models.ImageContent) models.ImageContent {
	item, ok := s.Items[key]
	if !ok {
		return fallback
	}
	if img := item.Image(); img.URL != "" {
		return img
	}
	return fallback
}

// Visible reports whether a page section is shown.
func (s *Snapshot) Visible(section string) bool {
	return s.Visibility.Visible(section)
}

// Overlay returns a copy of s with draft d applied as if it were
// published. s itself is not modified.
func (s *Snapshot) Overlay(d *models.Draft) (*Snapshot, error) {
	payload, err := d.Payload()
	if err != nil {
		return nil, err
	}

	out := &Snapshot{
		Items:        maps.Clone(s.Items),
		Announcement: s.Announcement,
		Visibility:   maps.Clone(s.Visibility),
	}
	if out.Items == nil {
		out.Items = make(map[string]models.ContentItem)
	}
	if out.Visibility == nil {
		out.Visibility = make(models.VisibilityMap)
	}

	switch pl := payload.(type) {
	case *models.TextDraft:
		out.Items[d.ContentKey] = *models.NewContentItem(d.ContentKey, models.ContentTypeText,
			models.MustJSON(models.TextContent{Text: pl.Text}))
	case *models.ImageDraft:
		out.Items[d.ContentKey] = *models.NewContentItem(d.ContentKey, models.ContentTypeImage,
			models.MustJSON(models.ImageContent{URL: pl.URL, Alt: pl.Alt, Position: pl.Position}))
	case *models.AnnouncementDraft:
		if pl.Action == models.AnnouncementActionRemove {
			out.Announcement = nil
		} else {
			out.Announcement = &models.Announcement{
				Message:  pl.Message,
				LinkURL:  optional(pl.LinkURL),
				LinkText: optional(pl.LinkText),
				Active:   true,
			}
		}
	case *models.VisibilityDraft:
		out.Visibility[pl.SectionKey] = pl.Visible
	default:
		return nil, ErrUnknownDraftType
	}
	return out, nil
}
