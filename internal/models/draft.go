// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DraftType identifies the kind of change a draft proposes. The set is
// closed: every value is listed in DraftTypes and has a payload struct.
type DraftType string

const (
	DraftTypeText         DraftType = "text"
	DraftTypeImage        DraftType = "image"
	DraftTypeAnnouncement DraftType = "announcement"
	DraftTypeVisibility   DraftType = "visibility"
)

// DraftTypes lists every supported draft type.
var DraftTypes = []DraftType{
	DraftTypeText,
	DraftTypeImage,
	DraftTypeAnnouncement,
	DraftTypeVisibility,
}

// Valid reports whether t is one of the supported draft types.
func (t DraftType) Valid() bool {
	for _, known := range DraftTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Announcement draft actions.
const (
	AnnouncementActionSet    = "set"
	AnnouncementActionRemove = "remove"
)

// AnnouncementKey is the content key used by announcement drafts.
const AnnouncementKey = "announcement.banner"

// MaxTextLen caps the length of a proposed text value.
const MaxTextLen = 5000

var (
	// ErrUnknownDraftType is returned for draft types outside DraftTypes.
	ErrUnknownDraftType = errors.New("unknown draft type")

	// contentKeyPattern matches dot-namespaced keys like "hero.headline".
	contentKeyPattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)+$`)
	sectionKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Draft is a staged content change awaiting review.
type Draft struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ContentKey string    `db:"content_key" json:"content_key"`
	Type       DraftType `db:"draft_type" json:"draft_type"`
	Content    JSON      `db:"content" json:"content"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DraftPayload is the decoded content of a draft. Only the payload types
// in this package implement it.
type DraftPayload interface {
	DraftType() DraftType
	// Prior returns the live value captured when the draft was created.
	Prior() JSON
	validate() error
	setPrior(JSON)
}

// TextDraft proposes a new value for a text content item.
type TextDraft struct {
	Text     string `json:"text"`
	Previous JSON   `json:"previous,omitempty"`
}

// ImageDraft proposes a new image for an image slot.
type ImageDraft struct {
	URL      string `json:"url"`
	Alt      string `json:"alt"`
	Position string `json:"position,omitempty"`
	Previous JSON   `json:"previous,omitempty"`
}

// AnnouncementDraft replaces or removes the site-wide announcement banner.
type AnnouncementDraft struct {
	Action   string `json:"action"`
	Message  string `json:"message,omitempty"`
	LinkURL  string `json:"link_url,omitempty"`
	LinkText string `json:"link_text,omitempty"`
	Previous JSON   `json:"previous,omitempty"`
}

// VisibilityDraft shows or hides a public page section.
type VisibilityDraft struct {
	SectionKey string `json:"section_key"`
	Visible    bool   `json:"visible"`
	Previous   JSON   `json:"previous,omitempty"`
}

func (*TextDraft) DraftType() DraftType         { return DraftTypeText }
func (*ImageDraft) DraftType() DraftType        { return DraftTypeImage }
func (*AnnouncementDraft) DraftType() DraftType { return DraftTypeAnnouncement }
func (*VisibilityDraft) DraftType() DraftType   { return DraftTypeVisibility }

func (d *TextDraft) Prior() JSON         { return d.Previous }
func (d *ImageDraft) Prior() JSON        { return d.Previous }
func (d *AnnouncementDraft) Prior() JSON { return d.Previous }
func (d *VisibilityDraft) Prior() JSON   { return d.Previous }

func (d *TextDraft) setPrior(j JSON)         { d.Previous = j }
func (d *ImageDraft) setPrior(j JSON)        { d.Previous = j }
func (d *AnnouncementDraft) setPrior(j JSON) { d.Previous = j }
func (d *VisibilityDraft) setPrior(j JSON)   { d.Previous = j }

func (d *TextDraft) validate() error {
	if strings.TrimSpace(d.Text) == "" {
		return errors.New("text is required")
	}
	if utf8.RuneCountInString(d.Text) > MaxTextLen {
		return fmt.Errorf("text is too long (max %d characters)", MaxTextLen)
	}
	return nil
}

func (d *ImageDraft) validate() error {
	if !isHTTPURL(d.URL) {
		return errors.New("image url must be an absolute http(s) URL")
	}
	return nil
}

func (d *AnnouncementDraft) validate() error {
	switch d.Action {
	case AnnouncementActionSet:
		if strings.TrimSpace(d.Message) == "" {
			return errors.New("announcement message is required")
		}
		if d.LinkURL != "" && !isHTTPURL(d.LinkURL) && !strings.HasPrefix(d.LinkURL, "/") {
			return errors.New("announcement link must be a URL or site path")
		}
	case AnnouncementActionRemove:
	default:
		return fmt.Errorf("announcement action must be %q or %q", AnnouncementActionSet, AnnouncementActionRemove)
	}
	return nil
}

func (d *VisibilityDraft) validate() error {
	if !sectionKeyPattern.MatchString(d.SectionKey) {
		return errors.New("section_key is required")
	}
	return nil
}

// ValidContentKey reports whether key is a dot-namespaced content key.
func ValidContentKey(key string) bool {
	return contentKeyPattern.MatchString(key)
}

// DecodeDraftPayload decodes raw into the payload struct for t and
// validates it. Unsupported types return ErrUnknownDraftType.
func DecodeDraftPayload(t DraftType, raw JSON) (DraftPayload, error) {
	var p DraftPayload
	switch t {
	case DraftTypeText:
		p = &TextDraft{}
	case DraftTypeImage:
		p = &ImageDraft{}
	case DraftTypeAnnouncement:
		p = &AnnouncementDraft{}
	case DraftTypeVisibility:
		p = &VisibilityDraft{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDraftType, t)
	}
	if len(raw) == 0 {
		return nil, errors.New("draft content is empty")
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s draft: %w", t, err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// WithPrior records prev on p when p has no prior value yet.
func WithPrior(p DraftPayload, prev JSON) {
	if len(p.Prior()) == 0 && len(prev) > 0 {
		p.setPrior(prev)
	}
}

// Payload decodes the draft's content. See DecodeDraftPayload.
func (d *Draft) Payload() (DraftPayload, error) {
	return DecodeDraftPayload(d.Type, d.Content)
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
