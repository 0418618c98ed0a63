// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared fakes for handler tests. Handlers are
// exercised through httptest with in-memory dependencies; the integration
// scenario in scenario_test.go is skipped when PostgreSQL is unavailable.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"riseup/internal/auth"
	"riseup/internal/middleware"
	"riseup/internal/models"
	"riseup/internal/publish"
	"riseup/internal/render"
	"riseup/internal/session"
)

// fakeDrafts implements Drafts and LiveContent in memory.
type fakeDrafts struct {
	mu sync.Mutex

	drafts   map[uuid.UUID]*models.Draft
	live     *publish.Snapshot
	history  []models.KeyHistory
	versions map[int64]bool

	created     []publish.NewDraft
	published   []uuid.UUID
	restored    []int64
	invalidated []string

	createErr  error
	publishErr error
	liveErr    error
	restoreErr map[int64]error
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{
		drafts:   make(map[uuid.UUID]*models.Draft),
		live:     &publish.Snapshot{Items: map[string]models.ContentItem{}, Visibility: models.VisibilityMap{}},
		versions: make(map[int64]bool),
	}
}

func (f *fakeDrafts) add(key string, typ models.DraftType, content string) *models.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &models.Draft{
		ID:         uuid.New(),
		ContentKey: key,
		Type:       typ,
		Content:    models.JSON(content),
		CreatedBy:  "coach@riseup.local",
		CreatedAt:  time.Now(),
	}
	f.drafts[d.ID] = d
	return d
}

func (f *fakeDrafts) CreateDraft(_ context.Context, nd publish.NewDraft) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	if _, err := models.DecodeDraftPayload(nd.Type, nd.Content); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", publish.ErrInvalidDraft, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, nd)
	id := uuid.New()
	f.drafts[id] = &models.Draft{ID: id, ContentKey: nd.ContentKey, Type: nd.Type, Content: nd.Content, CreatedBy: nd.CreatedBy}
	return id, nil
}

func (f *fakeDrafts) Preview(_ context.Context, id uuid.UUID) (*publish.DraftPreview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return nil, publish.ErrDraftNotFound
	}
	return &publish.DraftPreview{Draft: d, Label: "Update text", ShowDiff: true, PublicPath: publish.PreviewPath(d)}, nil
}

func (f *fakeDrafts) Publish(_ context.Context, id uuid.UUID) (*publish.PublishResult, error) {
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return nil, publish.ErrDraftNotFound
	}
	delete(f.drafts, id)
	f.published = append(f.published, id)
	return &publish.PublishResult{Draft: d, Routes: publish.AffectedRoutes(d)}, nil
}

func (f *fakeDrafts) Cancel(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.drafts[id]; !ok {
		return publish.ErrDraftNotFound
	}
	delete(f.drafts, id)
	return nil
}

func (f *fakeDrafts) ListDrafts(context.Context) ([]models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Draft, 0, len(f.drafts))
	for _, d := range f.drafts {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDrafts) History(context.Context) ([]models.KeyHistory, error) {
	return f.history, nil
}

func (f *fakeDrafts) Restore(_ context.Context, versionID int64) error {
	if err := f.restoreErr[versionID]; err != nil {
		return err
	}
	if !f.versions[versionID] {
		return publish.ErrVersionNotFound
	}
	f.restored = append(f.restored, versionID)
	return nil
}

func (f *fakeDrafts) LiveSnapshot(context.Context) (*publish.Snapshot, error) {
	if f.liveErr != nil {
		return nil, f.liveErr
	}
	return f.live, nil
}

func (f *fakeDrafts) Draft(_ context.Context, id uuid.UUID) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return nil, publish.ErrDraftNotFound
	}
	return d, nil
}

func (f *fakeDrafts) InvalidateRoutes(_ context.Context, _, _, _ string, routes []string) {
	f.invalidated = append(f.invalidated, routes...)
}

func (f *fakeDrafts) setText(key, text string) {
	f.live.Items[key] = *models.NewContentItem(key, models.ContentTypeText, models.MustJSON(models.TextContent{Text: text}))
}

// fakeSponsors implements Sponsors in memory.
type fakeSponsors struct {
	mu       sync.Mutex
	sponsors []*models.Sponsor
}

func (f *fakeSponsors) Create(_ context.Context, sp *models.Sponsor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sp.ID = uuid.New()
	sp.Status = models.SponsorStatusPending
	sp.CreatedAt = time.Now()
	f.sponsors = append(f.sponsors, sp)
	return nil
}

func (f *fakeSponsors) ListApproved(ctx context.Context) ([]models.Sponsor, error) {
	return f.ListByStatus(ctx, models.SponsorStatusApproved)
}

func (f *fakeSponsors) ListByStatus(_ context.Context, status models.SponsorStatus) ([]models.Sponsor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Sponsor
	for _, sp := range f.sponsors {
		if sp.Status == status {
			out = append(out, *sp)
		}
	}
	return out, nil
}

func (f *fakeSponsors) Find(_ context.Context, id uuid.UUID) (*models.Sponsor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sp := range f.sponsors {
		if sp.ID == id {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSponsors) Approve(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sp := range f.sponsors {
		if sp.ID == id && sp.Status == models.SponsorStatusPending {
			now := time.Now()
			sp.Status = models.SponsorStatusApproved
			sp.ApprovedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSponsors) CountByStatus(context.Context) (map[models.SponsorStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[models.SponsorStatus]int{}
	for _, sp := range f.sponsors {
		counts[sp.Status]++
	}
	return counts, nil
}

// memCache implements PageCache and publish.Invalidator in memory.
type memCache struct {
	mu    sync.Mutex
	pages map[string][]byte
	sets  int
}

func newMemCache() *memCache { return &memCache{pages: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, path string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	html, ok := c.pages[path]
	return html, ok
}

func (c *memCache) Set(_ context.Context, path string, html []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[path] = html
	c.sets++
}

func (c *memCache) InvalidatePage(_ context.Context, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, path)
}

func (c *memCache) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.pages)
}

// fakeSessions implements SessionManager.
type fakeSessions struct {
	created   []*session.Data
	destroyed int
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.created = append(f.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test-session"})
	return "test-session", nil
}

func (f *fakeSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	f.destroyed++
	return nil
}

// fakeUsers implements UserFinder with one account.
type fakeUsers struct {
	user     *models.User
	password string
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUsers) CheckPassword(_ *models.User, password string) bool {
	return password == f.password
}

// fakeTokens implements TokenVerifier accepting a single token.
type fakeTokens struct {
	valid string
}

func (f fakeTokens) Enabled() bool { return f.valid != "" }

func (f fakeTokens) VerifyAdmin(token string) (*auth.Claims, error) {
	token = strings.TrimPrefix(token, "Bearer ")
	if f.valid == "" || token != f.valid {
		return nil, auth.ErrInvalidToken
	}
	c := &auth.Claims{Email: "coach@riseup.local", Role: "admin"}
	c.Subject = "user-1"
	return c, nil
}

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	rn, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return rn
}

func adminSession() *session.Data {
	return &session.Data{
		Subject:     "1",
		Email:       "coach@riseup.local",
		DisplayName: "Coach",
		Role:        "admin",
		Provider:    session.ProviderPassword,
	}
}

// withSession returns r carrying sess as the loaded session.
func withSession(r *http.Request, sess *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, sess))
}

// withURLParam sets a chi URL parameter on r.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
