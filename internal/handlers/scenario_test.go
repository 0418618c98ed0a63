// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"riseup/internal/database"
	"riseup/internal/models"
	"riseup/internal/publish"
	"riseup/internal/render"
	"riseup/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestDraftToPublishedScenario walks an edit from draft to the public
// page against a real database.
func TestDraftToPublishedScenario(t *testing.T) {
	dsn := "postgres://" + envOr("POSTGRES_USER", "riseup") + ":" + envOr("POSTGRES_PASSWORD", "changeme") +
		"@" + envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") +
		"/" + envOr("POSTGRES_DB", "riseup") + "?sslmode=disable"

	db, err := database.Connect(dsn)
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db.DB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := t.Context()
	content := store.NewContentStore(db)
	const key = "hero.headline"

	before, err := content.Get(ctx, key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	t.Cleanup(func() {
		bg := context.Background()
		if before != nil {
			content.Upsert(bg, before)
			return
		}
		db.ExecContext(bg, "DELETE FROM site_content WHERE content_key = $1", key)
	})

	cache := newMemCache()
	pub := publish.New(db, cache)
	sponsors := store.NewSponsorStore(db)
	rn := newRenderer(t)
	admin := NewAdmin(rn, pub, sponsors)
	public := NewPublic(rn, pub, sponsors, cache, nil, render.DefaultSnapshot(nil))

	// Warm the cache with the current home page.
	rec := httptest.NewRecorder()
	public.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, ok := cache.pages["/"]; !ok {
		t.Fatal("home page should be cached after the first render")
	}

	// Propose the headline.
	body := `{"content_key":"hero.headline","draft_type":"text","content":{"text":"Registration Open"}}`
	req := httptest.NewRequest(http.MethodPost, "/admin/content/drafts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	admin.CreateDraft(rec, withSession(req, adminSession()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create draft: got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// The admin preview overlays the draft; visitors still see the cache.
	rec = httptest.NewRecorder()
	public.Home(rec, withSession(httptest.NewRequest(http.MethodGet, "/?draft="+created.ID, nil), adminSession()))
	if !strings.Contains(rec.Body.String(), "Registration Open") {
		t.Error("admin preview should show the draft headline")
	}
	rec = httptest.NewRecorder()
	public.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Contains(rec.Body.String(), "Registration Open") {
		t.Error("visitors must not see an unpublished draft")
	}

	// Publish.
	req = withURLParam(httptest.NewRequest(http.MethodPost, "/admin/dashboard/drafts/"+created.ID+"/publish", nil), "id", created.ID)
	rec = httptest.NewRecorder()
	admin.PublishDraft(rec, withSession(req, adminSession()))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("publish: got %d: %s", rec.Code, rec.Body.String())
	}

	item, err := content.Get(ctx, key)
	if err != nil || item == nil {
		t.Fatalf("live %s: item=%v err=%v", key, item, err)
	}
	var text models.TextContent
	if err := json.Unmarshal(item.Content, &text); err != nil || text.Text != "Registration Open" {
		t.Errorf("live content: got %s", item.Content)
	}

	d, err := store.NewDraftStore(db).Find(ctx, uuid.MustParse(created.ID))
	if err != nil {
		t.Fatalf("find draft: %v", err)
	}
	if d != nil {
		t.Error("published draft should be deleted")
	}

	rec = httptest.NewRecorder()
	public.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(rec.Body.String(), "Registration Open") {
		t.Error("visitors should see the published headline")
	}
}
