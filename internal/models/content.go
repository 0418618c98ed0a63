// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ContentType distinguishes the payload shapes stored in site_content.
type ContentType string

const (
	ContentTypeText       ContentType = "text"
	ContentTypeImage      ContentType = "image"
	ContentTypeVisibility ContentType = "visibility"
)

// JSON is a raw JSON document stored in a JSONB column. It behaves like
// json.RawMessage when (un)marshalled and scans from both text and binary
// driver values.
type JSON []byte

// Scan implements sql.Scanner.
func (j *JSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = append((*j)[:0], v...)
	default:
		return fmt.Errorf("models.JSON: cannot scan %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// MarshalJSON returns the document unchanged (or null when empty).
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores a copy of the raw document.
func (j *JSON) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*j = nil
		return nil
	}
	*j = append((*j)[:0], data...)
	return nil
}

// MustJSON marshals v and panics on failure. Only for values that
// always marshal (payload structs declared in this package).
func MustJSON(v any) JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("models.MustJSON: %v", err))
	}
	return b
}

// TextContent is the payload of a text content item.
type TextContent struct {
	Text string `json:"text"`
}

// ImageContent is the payload of an image slot.
type ImageContent struct {
	URL      string `json:"url"`
	Alt      string `json:"alt"`
	Position string `json:"position,omitempty"`
}

// VisibilityContent is the payload of a section visibility flag.
type VisibilityContent struct {
	Visible bool `json:"visible"`
}

// ContentItem is one live, editable field of the public site, keyed by a
// dot-namespaced content key such as "hero.headline".
type ContentItem struct {
	Key       string      `db:"content_key" json:"content_key"`
	Type      ContentType `db:"content_type" json:"content_type"`
	Content   JSON        `db:"content" json:"content"`
	Page      string      `db:"page" json:"page"`
	Section   string      `db:"section" json:"section"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// Text decodes a text payload. Items of other types yield "".
func (c *ContentItem) Text() string {
	if c == nil || c.Type != ContentTypeText {
		return ""
	}
	var t TextContent
	if err := json.Unmarshal(c.Content, &t); err != nil {
		return ""
	}
	return t.Text
}

// Image decodes an image payload. Items of other types yield a zero value.
func (c *ContentItem) Image() ImageContent {
	var img ImageContent
	if c == nil || c.Type != ContentTypeImage {
		return img
	}
	_ = json.Unmarshal(c.Content, &img)
	return img
}

// SectionOf returns the first segment of a content key ("hero" for
// "hero.headline").
func SectionOf(key string) string {
	section, _, _ := strings.Cut(key, ".")
	return section
}

// sectionPages maps sections to the public page that renders them.
var sectionPages = map[string]string{
	"hero":         "home",
	"announcement": "home",
	"programs":     "programs",
	"sponsors":     "sponsors",
}

// PageOf returns the public page a content key is rendered on. Unknown
// sections live on the home page.
func PageOf(key string) string {
	if p, ok := sectionPages[SectionOf(key)]; ok {
		return p
	}
	return "home"
}

// NewContentItem builds an item for key with page and section derived
// from the key.
func NewContentItem(key string, typ ContentType, content JSON) *ContentItem {
	return &ContentItem{
		Key:     key,
		Type:    typ,
		Content: content,
		Page:    PageOf(key),
		Section: SectionOf(key),
	}
}
