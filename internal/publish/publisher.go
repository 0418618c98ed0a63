// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish implements the draft workflow: editors propose drafts,
// admins preview and publish them into the live content store, and
// archived versions can be restored. Every write that changes live content
// runs in one transaction together with its version archive and draft
// deletion; cache invalidation follows the commit.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"riseup/internal/metrics"
	"riseup/internal/models"
	"riseup/internal/store"
)

// Invalidator drops rendered public pages from the cache.
type Invalidator interface {
	InvalidatePage(ctx context.Context, path string)
	InvalidateAll(ctx context.Context)
}

// CacheLogger records cache invalidations for auditing.
type CacheLogger interface {
	Log(ctx context.Context, entityType, entityKey, action string)
}

// Publisher owns the draft, publish and rollback operations.
type Publisher struct {
	db            *sqlx.DB
	content       *store.ContentStore
	versions      *store.VersionStore
	drafts        *store.DraftStore
	announcements *store.AnnouncementStore
	visibility    *store.VisibilityStore

	cache    Invalidator
	cacheLog CacheLogger
	metrics  *metrics.Metrics
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithCacheLog records every invalidation through l.
func WithCacheLog(l CacheLogger) Option {
	return func(p *Publisher) { p.cacheLog = l }
}

// WithMetrics counts published drafts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// New creates a Publisher over db. cache may be nil, in which case no
// pages are invalidated.
func New(db *sqlx.DB, cache Invalidator, opts ...Option) *Publisher {
	p := &Publisher{
		db:            db,
		content:       store.NewContentStore(db),
		versions:      store.NewVersionStore(db),
		drafts:        store.NewDraftStore(db),
		announcements: store.NewAnnouncementStore(db),
		visibility:    store.NewVisibilityStore(db),
		cache:         cache,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDraft is a proposed change submitted by an editor.
type NewDraft struct {
	ContentKey string
	Type       models.DraftType
	Content    models.JSON
	CreatedBy  string
}

// CreateDraft validates nd, captures the current live value as the
// draft's previous value when the caller did not supply one, and stores
// the draft. Announcement and visibility drafts get their canonical key.
func (p *Publisher) CreateDraft(ctx context.Context, nd NewDraft) (uuid.UUID, error) {
	if !nd.Type.Valid() {
		return uuid.Nil, fmt.Errorf("%w: %w: %q", ErrInvalidDraft, ErrUnknownDraftType, nd.Type)
	}
	if strings.TrimSpace(nd.CreatedBy) == "" {
		return uuid.Nil, fmt.Errorf("%w: created_by is required", ErrInvalidDraft)
	}

	payload, err := models.DecodeDraftPayload(nd.Type, nd.Content)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}

	key := canonicalKey(nd.ContentKey, payload)
	if !models.ValidContentKey(key) {
		return uuid.Nil, fmt.Errorf("%w: content key %q is not dot-namespaced", ErrInvalidDraft, key)
	}

	prior, err := p.liveValue(ctx, key, payload)
	if err != nil {
		return uuid.Nil, err
	}
	models.WithPrior(payload, prior)

	d := &models.Draft{
		ContentKey: key,
		Type:       nd.Type,
		Content:    models.MustJSON(payload),
		CreatedBy:  nd.CreatedBy,
	}
	if err := p.drafts.Create(ctx, d); err != nil {
		return uuid.Nil, err
	}

	slog.Info("draft created", "draft_id", d.ID, "key", key, "type", d.Type, "created_by", d.CreatedBy)
	return d.ID, nil
}

// canonicalKey returns the content key a payload is stored under.
func canonicalKey(key string, payload models.DraftPayload) string {
	switch pl := payload.(type) {
	case *models.AnnouncementDraft:
		return models.AnnouncementKey
	case *models.VisibilityDraft:
		return models.VisibilityKey(pl.SectionKey)
	default:
		return strings.TrimSpace(key)
	}
}

// liveValue returns the live JSON value the payload would replace, or nil
// when nothing is live. Text and image drafts may not change a key's type.
func (p *Publisher) liveValue(ctx context.Context, key string, payload models.DraftPayload) (models.JSON, error) {
	switch pl := payload.(type) {
	case *models.TextDraft, *models.ImageDraft:
		item, err := p.content.Get(ctx, key)
		if err != nil || item == nil {
			return nil, err
		}
		if want := contentTypeFor(payload.DraftType()); item.Type != want {
			return nil, fmt.Errorf("%w: %s holds %s content, not %s", ErrInvalidDraft, key, item.Type, want)
		}
		return item.Content, nil

	case *models.AnnouncementDraft:
		a, err := p.announcements.Active(ctx)
		if err != nil || a == nil {
			return nil, err
		}
		return announcementJSON(a), nil

	case *models.VisibilityDraft:
		vis, err := p.visibility.All(ctx)
		if err != nil {
			return nil, err
		}
		return models.MustJSON(models.VisibilityContent{Visible: vis.Visible(pl.SectionKey)}), nil
	}
	return nil, ErrUnknownDraftType
}

func contentTypeFor(t models.DraftType) models.ContentType {
	if t == models.DraftTypeImage {
		return models.ContentTypeImage
	}
	return models.ContentTypeText
}

func announcementJSON(a *models.Announcement) models.JSON {
	v := models.AnnouncementDraft{Action: models.AnnouncementActionSet, Message: a.Message}
	if a.LinkURL != nil {
		v.LinkURL = *a.LinkURL
	}
	if a.LinkText != nil {
		v.LinkText = *a.LinkText
	}
	return models.MustJSON(v)
}

// ListDrafts returns pending drafts, newest first.
func (p *Publisher) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	return p.drafts.List(ctx)
}

// Draft returns a pending draft by id.
func (p *Publisher) Draft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	d, err := p.drafts.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// Cancel discards a draft without applying it.
func (p *Publisher) Cancel(ctx context.Context, id uuid.UUID) error {
	deleted, err := p.drafts.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrDraftNotFound
	}
	slog.Info("draft cancelled", "draft_id", id)
	return nil
}

// PublishResult describes an applied draft.
type PublishResult struct {
	Draft  *models.Draft
	Routes []string
}

// Publish applies a draft to live content and deletes it, in one
// transaction. Text and image drafts archive the value they replace.
// A draft whose type is not in the closed set fails with
// ErrUnknownDraftType and is kept.
func (p *Publisher) Publish(ctx context.Context, id uuid.UUID) (*PublishResult, error) {
	var draft *models.Draft
	err := store.InTx(ctx, p.db, func(tx *sqlx.Tx) error {
		drafts := p.drafts.WithTx(tx)

		d, err := drafts.FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return ErrDraftNotFound
		}

		payload, err := d.Payload()
		if errors.Is(err, ErrUnknownDraftType) {
			return err
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDraft, err)
		}

		if err := p.apply(ctx, tx, d.ContentKey, payload); err != nil {
			return err
		}
		if _, err := drafts.Delete(ctx, d.ID); err != nil {
			return err
		}
		draft = d
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnknownDraftType) {
			slog.Warn("draft has unknown type, kept for review", "draft_id", id, "error", err)
		}
		return nil, err
	}

	routes := AffectedRoutes(draft)
	p.InvalidateRoutes(ctx, entityFor(draft.Type), draft.ContentKey, "publish", routes)
	p.metrics.DraftPublished(string(draft.Type))

	slog.Info("draft published", "draft_id", draft.ID, "key", draft.ContentKey, "type", draft.Type)
	return &PublishResult{Draft: draft, Routes: routes}, nil
}

// apply performs the type-specific live write inside tx.
func (p *Publisher) apply(ctx context.Context, tx *sqlx.Tx, key string, payload models.DraftPayload) error {
	switch pl := payload.(type) {
	case *models.TextDraft:
		return p.replaceVersioned(ctx, tx, key, models.ContentTypeText,
			models.MustJSON(models.TextContent{Text: pl.Text}))

	case *models.ImageDraft:
		return p.replaceVersioned(ctx, tx, key, models.ContentTypeImage,
			models.MustJSON(models.ImageContent{URL: pl.URL, Alt: pl.Alt, Position: pl.Position}))

	case *models.AnnouncementDraft:
		announcements := p.announcements.WithTx(tx)
		if _, err := announcements.DeactivateActive(ctx); err != nil {
			return err
		}
		if pl.Action == models.AnnouncementActionRemove {
			return nil
		}
		return announcements.Create(ctx, &models.Announcement{
			Message:  pl.Message,
			LinkURL:  optional(pl.LinkURL),
			LinkText: optional(pl.LinkText),
		})

	case *models.VisibilityDraft:
		if err := p.visibility.WithTx(tx).Set(ctx, pl.SectionKey, pl.Visible); err != nil {
			return err
		}
		return p.content.WithTx(tx).Upsert(ctx, models.NewContentItem(
			models.VisibilityKey(pl.SectionKey),
			models.ContentTypeVisibility,
			models.MustJSON(models.VisibilityContent{Visible: pl.Visible}),
		))
	}
	return ErrUnknownDraftType
}

// replaceVersioned archives the live value of key, if any, and writes the
// new value. A live value of another content type is left untouched.
func (p *Publisher) replaceVersioned(ctx context.Context, tx *sqlx.Tx, key string, typ models.ContentType, value models.JSON) error {
	content := p.content.WithTx(tx)

	current, err := content.GetForUpdate(ctx, key)
	if err != nil {
		return err
	}
	if current != nil {
		if current.Type != typ {
			return fmt.Errorf("%w: %w: %s holds %s content, not %s", ErrInvalidDraft, ErrContentTypeMismatch, key, current.Type, typ)
		}
		if _, err := p.versions.WithTx(tx).Append(ctx, key, current.Content); err != nil {
			return err
		}
	}
	return content.Upsert(ctx, models.NewContentItem(key, typ, value))
}

// History returns the retained versions of every key, newest first.
func (p *Publisher) History(ctx context.Context) ([]models.KeyHistory, error) {
	return p.versions.History(ctx, models.MaxVersionsPerKey)
}

// Restore makes an archived version live again. The value it replaces is
// archived first, so a restore can itself be undone.
func (p *Publisher) Restore(ctx context.Context, versionID int64) error {
	var key string
	err := store.InTx(ctx, p.db, func(tx *sqlx.Tx) error {
		v, err := p.versions.WithTx(tx).Find(ctx, versionID)
		if err != nil {
			return err
		}
		if v == nil {
			return ErrVersionNotFound
		}
		key = v.ContentKey

		content := p.content.WithTx(tx)
		current, err := content.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}

		typ := inferContentType(v.Content)
		if current != nil {
			if current.Type != typ {
				return fmt.Errorf("%w: version %d holds %s content, %s is %s", ErrContentTypeMismatch, versionID, typ, key, current.Type)
			}
			if _, err := p.versions.WithTx(tx).Append(ctx, key, current.Content); err != nil {
				return err
			}
		}
		return content.Upsert(ctx, models.NewContentItem(key, typ, v.Content))
	})
	if err != nil {
		return err
	}

	p.InvalidateRoutes(ctx, store.EntityContent, key, "restore", RoutesForKey(key))
	slog.Info("version restored", "version_id", versionID, "key", key)
	return nil
}

// inferContentType derives the content type of an archived payload from
// its shape.
func inferContentType(raw models.JSON) models.ContentType {
	s := string(raw)
	switch {
	case strings.Contains(s, `"url"`):
		return models.ContentTypeImage
	case strings.Contains(s, `"visible"`):
		return models.ContentTypeVisibility
	default:
		return models.ContentTypeText
	}
}

// InvalidateRoutes drops routes from the page cache and records the
// invalidation in the cache log. Failures are logged, never returned.
func (p *Publisher) InvalidateRoutes(ctx context.Context, entityType, entityKey, action string, routes []string) {
	if p.cache == nil || len(routes) == 0 {
		return
	}

	if isAllRoutes(routes) {
		p.cache.InvalidateAll(ctx)
	} else {
		for _, r := range routes {
			p.cache.InvalidatePage(ctx, r)
		}
	}

	if p.cacheLog != nil {
		p.cacheLog.Log(ctx, entityType, entityKey, action)
	}
}

func entityFor(t models.DraftType) string {
	switch t {
	case models.DraftTypeAnnouncement:
		return store.EntityAnnouncement
	case models.DraftTypeVisibility:
		return store.EntityVisibility
	default:
		return store.EntityContent
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
