// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"riseup/internal/metrics"
	"riseup/internal/middleware"
	"riseup/internal/models"
	"riseup/internal/publish"
	"riseup/internal/render"
)

// LiveContent reads the content public pages render from.
type LiveContent interface {
	LiveSnapshot(ctx context.Context) (*publish.Snapshot, error)
	Draft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
}

// PageCache stores rendered public pages by route path.
type PageCache interface {
	Get(ctx context.Context, path string) ([]byte, bool)
	Set(ctx context.Context, path string, html []byte)
}

// Public groups handlers for the public site. Rendered pages are served
// from the Valkey page cache when the request has no query string; an
// admin's ?draft=<id> preview is rendered fresh and never cached.
type Public struct {
	renderer *render.Renderer
	content  LiveContent
	sponsors Sponsors
	cache    PageCache
	metrics  *metrics.Metrics
	defaults *publish.Snapshot
	validate *validator.Validate
}

// NewPublic creates a new Public handler group. defaults supplies values
// for content keys that are not live yet.
func NewPublic(renderer *render.Renderer, content LiveContent, sponsors Sponsors, cache PageCache, m *metrics.Metrics, defaults *publish.Snapshot) *Public {
	return &Public{
		renderer: renderer,
		content:  content,
		sponsors: sponsors,
		cache:    cache,
		metrics:  m,
		defaults: defaults,
		validate: newValidator(),
	}
}

// Home renders the home page.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, "home", &render.PublicData{})
}

// Programs renders the programs page.
func (p *Public) Programs(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, "programs", &render.PublicData{Title: "Programs"})
}

// Sponsors renders the approved sponsor grid and the submission form.
func (p *Public) Sponsors(w http.ResponseWriter, r *http.Request) {
	data := &render.PublicData{Title: "Sponsors"}
	if r.URL.Query().Get("submitted") != "" {
		data.Flash = "Thank you! Your sponsorship is awaiting review."
	}
	p.serve(w, r, "sponsors", data)
}

// SubmitSponsor records a sponsor submission as pending.
func (p *Public) SubmitSponsor(w http.ResponseWriter, r *http.Request) {
	req := sponsorRequest{
		Name:         strings.TrimSpace(r.FormValue("name")),
		ContactName:  strings.TrimSpace(r.FormValue("contact_name")),
		ContactEmail: strings.TrimSpace(r.FormValue("contact_email")),
		WebsiteURL:   strings.TrimSpace(r.FormValue("website_url")),
		LogoURL:      strings.TrimSpace(r.FormValue("logo_url")),
		Tier:         r.FormValue("tier"),
		Message:      strings.TrimSpace(r.FormValue("message")),
	}

	if err := p.validate.Struct(req); err != nil {
		html, ok := p.build(w, r, "sponsors", &render.PublicData{
			Title: "Sponsors",
			Path:  publish.RouteSponsors,
			Form: &render.SponsorForm{
				Name:         req.Name,
				ContactName:  req.ContactName,
				ContactEmail: req.ContactEmail,
				WebsiteURL:   req.WebsiteURL,
				LogoURL:      req.LogoURL,
				Tier:         req.Tier,
				Message:      req.Message,
				Error:        validationMessage(err),
			},
		}, nil)
		if ok {
			writeHTML(w, http.StatusBadRequest, html)
		}
		return
	}

	sp := &models.Sponsor{
		Name:         req.Name,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		WebsiteURL:   optionalString(req.WebsiteURL),
		LogoURL:      req.LogoURL,
		Tier:         models.SponsorTier(req.Tier),
		Message:      optionalString(req.Message),
	}
	if err := p.sponsors.Create(r.Context(), sp); err != nil {
		slog.Error("create sponsor failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("sponsor submitted", "sponsor_id", sp.ID, "tier", sp.Tier)
	http.Redirect(w, r, publish.RouteSponsors+"?submitted=1", http.StatusSeeOther)
}

// serve answers a public page from the cache or renders it. Requests
// with a query string bypass the cache in both directions.
func (p *Public) serve(w http.ResponseWriter, r *http.Request, name string, data *render.PublicData) {
	ctx := r.Context()
	path := r.URL.Path
	data.Path = path

	var draft *models.Draft
	if raw := r.URL.Query().Get("draft"); raw != "" && middleware.SessionFromCtx(ctx).IsAdmin() {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid draft ID", http.StatusBadRequest)
			return
		}
		draft, err = p.content.Draft(ctx, id)
		if errors.Is(err, publish.ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("load preview draft failed", "draft_id", id, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	cacheable := r.URL.RawQuery == ""
	if cacheable {
		if html, ok := p.cache.Get(ctx, path); ok {
			p.metrics.PageCacheLookup(true)
			writeHTML(w, http.StatusOK, html)
			return
		}
		p.metrics.PageCacheLookup(false)
	}

	html, ok := p.build(w, r, name, data, draft)
	if !ok {
		return
	}
	if cacheable {
		p.cache.Set(ctx, path, html)
	}
	writeHTML(w, http.StatusOK, html)
}

// build loads live content, overlays draft when set, and renders the
// page. On failure it writes an error response and returns false.
func (p *Public) build(w http.ResponseWriter, r *http.Request, name string, data *render.PublicData, draft *models.Draft) ([]byte, bool) {
	ctx := r.Context()

	live, err := p.content.LiveSnapshot(ctx)
	if err != nil {
		slog.Error("load live content failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	if draft != nil {
		live, err = live.Overlay(draft)
		if err != nil {
			slog.Warn("draft overlay failed", "draft_id", draft.ID, "error", err)
			http.Error(w, "Draft cannot be previewed: "+err.Error(), http.StatusBadRequest)
			return nil, false
		}
		data.Preview = true
	}
	data.Live = live
	data.Defaults = p.defaults

	if name == "sponsors" {
		data.Sponsors, err = p.sponsors.ListApproved(ctx)
		if err != nil {
			slog.Error("list approved sponsors failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return nil, false
		}
	}

	html, err := p.renderer.Public(name, data)
	if err != nil {
		slog.Error("render public page failed", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return html, true
}

func writeHTML(w http.ResponseWriter, status int, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(html)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
