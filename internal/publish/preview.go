// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"github.com/google/uuid"

	"riseup/internal/models"
)

// DraftPreview is the read-only comparison shown before publishing.
type DraftPreview struct {
	Draft   *models.Draft
	Payload models.DraftPayload

	// Label names the action, e.g. "Update text" or "Remove announcement".
	Label string

	// ShowDiff is false when there is nothing meaningful to compare, as
	// for announcement removal.
	ShowDiff bool
	Current  string
	Proposed string

	// ImageCurrent and ImageProposed are set for image drafts.
	ImageCurrent  *models.ImageContent
	ImageProposed *models.ImageContent

	// PublicPath is the public route rendering the draft overlaid on live
	// content, for the preview iframe.
	PublicPath string
}

// Preview loads a draft and describes what publishing it would change.
// It writes nothing.
func (p *Publisher) Preview(ctx context.Context, id uuid.UUID) (*DraftPreview, error) {
	d, err := p.drafts.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDraftNotFound
	}

	payload, err := d.Payload()
	if err != nil {
		return nil, err
	}

	live, err := p.liveValue(ctx, d.ContentKey, payload)
	if errors.Is(err, ErrInvalidDraft) {
		live = payload.Prior()
	} else if err != nil {
		return nil, err
	}

	pv := &DraftPreview{
		Draft:      d,
		Payload:    payload,
		ShowDiff:   true,
		PublicPath: PreviewPath(d),
	}

	switch pl := payload.(type) {
	case *models.TextDraft:
		pv.Label = "Update text"
		pv.Current = decodeField[models.TextContent](live).Text
		pv.Proposed = pl.Text

	case *models.ImageDraft:
		pv.Label = "Replace image"
		cur := decodeField[models.ImageContent](live)
		pv.ImageCurrent = &cur
		pv.ImageProposed = &models.ImageContent{URL: pl.URL, Alt: pl.Alt, Position: pl.Position}
		pv.Current = cur.URL
		pv.Proposed = pl.URL

	case *models.AnnouncementDraft:
		if pl.Action == models.AnnouncementActionRemove {
			pv.Label = "Remove announcement"
			pv.ShowDiff = false
			break
		}
		pv.Label = "Set announcement"
		pv.Current = decodeField[models.AnnouncementDraft](live).Message
		pv.Proposed = pl.Message

	case *models.VisibilityDraft:
		if pl.Visible {
			pv.Label = "Show section " + pl.SectionKey
		} else {
			pv.Label = "Hide section " + pl.SectionKey
		}
		pv.Current = visibleWord(decodeVisible(live))
		pv.Proposed = visibleWord(pl.Visible)
	}
	return pv, nil
}

// PreviewPath returns the public route that renders d overlaid on live
// content.
func PreviewPath(d *models.Draft) string {
	route := AffectedRoutes(d)[0]
	return route + "?" + url.Values{"draft": {d.ID.String()}}.Encode()
}

func decodeField[T any](raw models.JSON) T {
	var v T
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

// decodeVisible treats a missing value as visible, matching VisibilityMap.
func decodeVisible(raw models.JSON) bool {
	if len(raw) == 0 {
		return true
	}
	return decodeField[models.VisibilityContent](raw).Visible
}

func visibleWord(v bool) string {
	if v {
		return "visible"
	}
	return "hidden"
}
