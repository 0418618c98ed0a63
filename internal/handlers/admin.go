// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the RiseUp site.
// Handlers are grouped by concern (admin, auth, public, webhook, chat)
// and receive their dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"riseup/internal/assistant"
	"riseup/internal/middleware"
	"riseup/internal/models"
	"riseup/internal/publish"
	"riseup/internal/render"
)

// maxDraftBody caps JSON draft submissions.
const maxDraftBody = 64 << 10

// Drafts is the publishing workflow behind the admin dashboard.
type Drafts interface {
	CreateDraft(ctx context.Context, nd publish.NewDraft) (uuid.UUID, error)
	Preview(ctx context.Context, id uuid.UUID) (*publish.DraftPreview, error)
	Publish(ctx context.Context, id uuid.UUID) (*publish.PublishResult, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	ListDrafts(ctx context.Context) ([]models.Draft, error)
	History(ctx context.Context) ([]models.KeyHistory, error)
	Restore(ctx context.Context, versionID int64) error
	LiveSnapshot(ctx context.Context) (*publish.Snapshot, error)
	InvalidateRoutes(ctx context.Context, entityType, entityKey, action string, routes []string)
}

// Sponsors is the sponsor storage used by public and admin handlers.
type Sponsors interface {
	Create(ctx context.Context, sp *models.Sponsor) error
	ListApproved(ctx context.Context) ([]models.Sponsor, error)
	ListByStatus(ctx context.Context, status models.SponsorStatus) ([]models.Sponsor, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Sponsor, error)
	Approve(ctx context.Context, id uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context) (map[models.SponsorStatus]int, error)
}

// Admin groups the admin dashboard HTTP handlers and their dependencies.
type Admin struct {
	renderer *render.Renderer
	drafts   Drafts
	sponsors Sponsors
}

// NewAdmin creates a new Admin handler group with the given dependencies.
func NewAdmin(renderer *render.Renderer, drafts Drafts, sponsors Sponsors) *Admin {
	return &Admin{renderer: renderer, drafts: drafts, sponsors: sponsors}
}

// editableField is one inline-editable text key on the dashboard.
type editableField struct {
	Key   string
	Value string
}

// Dashboard renders pending drafts, sponsor counts and the inline editors.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	drafts, err := a.drafts.ListDrafts(ctx)
	if err != nil {
		slog.Error("list drafts failed", "error", err)
	}
	counts, err := a.sponsors.CountByStatus(ctx)
	if err != nil {
		slog.Error("count sponsors failed", "error", err)
	}
	live, err := a.drafts.LiveSnapshot(ctx)
	if err != nil {
		slog.Error("load live content failed", "error", err)
		live = &publish.Snapshot{}
	}

	editable := make([]editableField, 0, len(assistant.EditableKeys))
	for _, key := range assistant.EditableKeys {
		editable = append(editable, editableField{Key: key, Value: live.Text(key, "")})
	}

	var flashes []render.Flash
	q := r.URL.Query()
	if q.Get("published") != "" {
		flashes = append(flashes, render.Flash{Type: "success", Message: "Draft published."})
	}
	if q.Get("discarded") != "" {
		flashes = append(flashes, render.Flash{Type: "info", Message: "Draft discarded."})
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Flashes: flashes,
		Data: map[string]any{
			"Drafts":     drafts,
			"DraftCount": len(drafts),
			"SponsorCounts": map[string]int{
				"pending":  counts[models.SponsorStatusPending],
				"approved": counts[models.SponsorStatusApproved],
			},
			"Editable": editable,
		},
	})
}

// Preview renders the diff of a draft against live content with an
// iframe of the public page showing the draft overlaid.
func (a *Admin) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("draft"))
	if err != nil {
		http.Error(w, "Invalid draft ID", http.StatusBadRequest)
		return
	}

	pv, err := a.drafts.Preview(r.Context(), id)
	if errors.Is(err, publish.ErrDraftNotFound) {
		http.Error(w, "Draft not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("preview draft failed", "draft_id", id, "error", err)
		http.Error(w, "Failed to load draft", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "preview", &render.PageData{
		Title:   "Preview",
		Section: "dashboard",
		Data:    map[string]any{"Preview": pv},
	})
}

// draftRequest is the JSON body accepted by CreateDraft.
type draftRequest struct {
	ContentKey string          `json:"content_key"`
	DraftType  string          `json:"draft_type"`
	Content    json.RawMessage `json:"content"`
}

// CreateDraft stores an inline edit as a draft. Form posts redirect to the
// preview page; JSON callers get the new id.
func (a *Admin) CreateDraft(w http.ResponseWriter, r *http.Request) {
	asJSON := isJSONBody(r)

	var req draftRequest
	if asJSON {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftBody)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid JSON body"))
			return
		}
	} else {
		req = draftFromForm(r)
	}

	id, err := a.drafts.CreateDraft(r.Context(), publish.NewDraft{
		ContentKey: req.ContentKey,
		Type:       models.DraftType(req.DraftType),
		Content:    models.JSON(req.Content),
		CreatedBy:  middleware.SessionFromCtx(r.Context()).Actor(),
	})
	if errors.Is(err, publish.ErrInvalidDraft) {
		if asJSON {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("create draft failed", "content_key", req.ContentKey, "error", err)
		if asJSON {
			writeJSON(w, http.StatusInternalServerError, errorResponse("failed to create draft"))
			return
		}
		http.Error(w, "Failed to create draft", http.StatusInternalServerError)
		return
	}

	if asJSON {
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":     true,
			"id":          id,
			"preview_url": assistant.PreviewURL(id),
		})
		return
	}
	http.Redirect(w, r, assistant.PreviewURL(id), http.StatusSeeOther)
}

// draftFromForm builds the typed draft payload from inline editor fields.
func draftFromForm(r *http.Request) draftRequest {
	req := draftRequest{
		ContentKey: strings.TrimSpace(r.FormValue("content_key")),
		DraftType:  r.FormValue("draft_type"),
	}

	var content any
	switch models.DraftType(req.DraftType) {
	case models.DraftTypeText:
		content = models.TextDraft{Text: r.FormValue("text")}
	case models.DraftTypeImage:
		content = models.ImageDraft{
			URL:      strings.TrimSpace(r.FormValue("url")),
			Alt:      r.FormValue("alt"),
			Position: r.FormValue("position"),
		}
	case models.DraftTypeAnnouncement:
		content = models.AnnouncementDraft{
			Action:   r.FormValue("action"),
			Message:  r.FormValue("message"),
			LinkURL:  strings.TrimSpace(r.FormValue("link_url")),
			LinkText: r.FormValue("link_text"),
		}
	case models.DraftTypeVisibility:
		visible, _ := strconv.ParseBool(r.FormValue("visible"))
		content = models.VisibilityDraft{
			SectionKey: r.FormValue("section_key"),
			Visible:    visible,
		}
	default:
		content = map[string]any{}
	}
	req.Content = json.RawMessage(models.MustJSON(content))
	return req
}

// PublishDraft applies a draft to live content.
func (a *Admin) PublishDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := draftIDParam(w, r)
	if !ok {
		return
	}

	res, err := a.drafts.Publish(r.Context(), id)
	if err != nil {
		status, msg := http.StatusInternalServerError, "Failed to publish draft"
		switch {
		case errors.Is(err, publish.ErrDraftNotFound):
			status, msg = http.StatusNotFound, "Draft not found"
		case errors.Is(err, publish.ErrUnknownDraftType), errors.Is(err, publish.ErrInvalidDraft):
			status, msg = http.StatusBadRequest, err.Error()
		default:
			slog.Error("publish draft failed", "draft_id", id, "error", err)
		}
		a.fail(w, r, status, msg)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "routes": res.Routes})
		return
	}
	http.Redirect(w, r, "/admin/dashboard?published=1", http.StatusSeeOther)
}

// CancelDraft discards a draft without applying it.
func (a *Admin) CancelDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := draftIDParam(w, r)
	if !ok {
		return
	}

	err := a.drafts.Cancel(r.Context(), id)
	if errors.Is(err, publish.ErrDraftNotFound) {
		a.fail(w, r, http.StatusNotFound, "Draft not found")
		return
	}
	if err != nil {
		slog.Error("cancel draft failed", "draft_id", id, "error", err)
		a.fail(w, r, http.StatusInternalServerError, "Failed to discard draft")
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	http.Redirect(w, r, "/admin/dashboard?discarded=1", http.StatusSeeOther)
}

// History lists retained versions per key.
func (a *Admin) History(w http.ResponseWriter, r *http.Request) {
	history, err := a.drafts.History(r.Context())
	if err != nil {
		slog.Error("load history failed", "error", err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	var flashes []render.Flash
	if restored, _ := strconv.ParseBool(r.URL.Query().Get("restored")); restored {
		flashes = append(flashes, render.Flash{Type: "success", Message: "Version restored."})
	}

	a.renderer.Page(w, r, "history", &render.PageData{
		Title:   "Version history",
		Section: "history",
		Flashes: flashes,
		Data:    map[string]any{"History": history},
	})
}

// RestoreVersion overwrites a key's live value with an archived version.
func (a *Admin) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	versionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid version ID", http.StatusBadRequest)
		return
	}

	err = a.drafts.Restore(r.Context(), versionID)
	if errors.Is(err, publish.ErrVersionNotFound) {
		http.Error(w, "Version not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, publish.ErrContentTypeMismatch) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		slog.Error("restore version failed", "version_id", versionID, "error", err)
		http.Error(w, "Failed to restore version", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/dashboard/history?restored=true", http.StatusSeeOther)
}

// SponsorsList renders pending and approved sponsors.
func (a *Admin) SponsorsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pending, err := a.sponsors.ListByStatus(ctx, models.SponsorStatusPending)
	if err != nil {
		slog.Error("list pending sponsors failed", "error", err)
	}
	approved, err := a.sponsors.ListByStatus(ctx, models.SponsorStatusApproved)
	if err != nil {
		slog.Error("list approved sponsors failed", "error", err)
	}

	var flashes []render.Flash
	if r.URL.Query().Get("approved") != "" {
		flashes = append(flashes, render.Flash{Type: "success", Message: "Sponsor approved."})
	}

	a.renderer.Page(w, r, "sponsors", &render.PageData{
		Title:   "Sponsors",
		Section: "sponsors",
		Flashes: flashes,
		Data:    map[string]any{"Pending": pending, "Approved": approved},
	})
}

// ApproveSponsor marks a pending sponsor approved. Approving an approved
// sponsor is a no-op and shows no flash.
func (a *Admin) ApproveSponsor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid sponsor ID", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	changed, err := a.sponsors.Approve(ctx, id)
	if err != nil {
		slog.Error("approve sponsor failed", "sponsor_id", id, "error", err)
		http.Error(w, "Failed to approve sponsor", http.StatusInternalServerError)
		return
	}
	if changed {
		slog.Info("sponsor approved", "sponsor_id", id)
		a.drafts.InvalidateRoutes(ctx, "sponsor", id.String(), "approve", []string{publish.RouteSponsors})
		http.Redirect(w, r, "/admin/sponsors?approved=1", http.StatusSeeOther)
		return
	}

	sp, err := a.sponsors.Find(ctx, id)
	if err != nil {
		slog.Error("find sponsor failed", "sponsor_id", id, "error", err)
		http.Error(w, "Failed to approve sponsor", http.StatusInternalServerError)
		return
	}
	if sp == nil {
		http.Error(w, "Sponsor not found", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/admin/sponsors", http.StatusSeeOther)
}

// fail reports an error as JSON or plain text depending on the caller.
func (a *Admin) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		writeJSON(w, status, errorResponse(msg))
		return
	}
	http.Error(w, msg, status)
}

func draftIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid draft ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

func errorResponse(msg string) map[string]any {
	return map[string]any{"success": false, "error": msg}
}

// wantsJSON reports whether the caller asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") || isJSONBody(r)
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
