// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riseup/internal/models"
)

func liveFixture() *Snapshot {
	return &Snapshot{
		Items: map[string]models.ContentItem{
			"hero.headline": *models.NewContentItem("hero.headline", models.ContentTypeText,
				models.JSON(`{"text":"Play Ball"}`)),
		},
		Announcement: &models.Announcement{Message: "Old", Active: true},
		Visibility:   models.VisibilityMap{"sponsors": true},
	}
}

func TestOverlayDoesNotModifyLive(t *testing.T) {
	live := liveFixture()
	d := &models.Draft{
		ID:         uuid.New(),
		ContentKey: "hero.headline",
		Type:       models.DraftTypeText,
		Content:    models.JSON(`{"text":"Registration Open"}`),
	}

	out, err := live.Overlay(d)
	require.NoError(t, err)
	assert.Equal(t, "Registration Open", out.Text("hero.headline", ""))
	assert.Equal(t, "Play Ball", live.Text("hero.headline", ""))
}

func TestOverlayAnnouncementAndVisibility(t *testing.T) {
	live := liveFixture()

	out, err := live.Overlay(&models.Draft{
		ContentKey: models.AnnouncementKey,
		Type:       models.DraftTypeAnnouncement,
		Content:    models.JSON(`{"action":"remove"}`),
	})
	require.NoError(t, err)
	assert.Nil(t, out.Announcement)
	assert.NotNil(t, live.Announcement)

	out, err = live.Overlay(&models.Draft{
		ContentKey: "sponsors.visible",
		Type:       models.DraftTypeVisibility,
		Content:    models.JSON(`{"section_key":"sponsors","visible":false}`),
	})
	require.NoError(t, err)
	assert.False(t, out.Visible("sponsors"))
	assert.True(t, live.Visible("sponsors"))
}

func TestOverlayUnknownType(t *testing.T) {
	_, err := liveFixture().Overlay(&models.Draft{Type: "banner", Content: models.JSON(`{}`)})
	assert.ErrorIs(t, err, ErrUnknownDraftType)
}

func TestSnapshotFallbacks(t *testing.T) {
	s := &Snapshot{}
	assert.Equal(t, "Default", s.Text("hero.headline", "Default"))
	assert.Equal(t, "https://x.test/d.jpg", s.Image("hero.image", models.ImageContent{URL: "https://x.test/d.jpg"}).URL)
	assert.True(t, s.Visible("programs"))
}

func TestLiveSnapshot(t *testing.T) {
	h := newHarness(t)

	h.mock.ExpectQuery(q("FROM site_content ORDER BY content_key")).
		WillReturnRows(sqlmock.NewRows(contentCols).
			AddRow("hero.headline", "text", []byte(`{"text":"Play Ball"}`), "home", "hero", time.Now()))
	h.mock.ExpectQuery(q("FROM announcements WHERE active")).
		WillReturnRows(sqlmock.NewRows(annCols))
	h.mock.ExpectQuery(q("FROM section_visibility")).
		WillReturnRows(sqlmock.NewRows([]string{"section_key", "visible", "updated_at"}).
			AddRow("sponsors", false, time.Now()))

	s, err := h.pub.LiveSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Play Ball", s.Text("hero.headline", ""))
	assert.Nil(t, s.Announcement)
	assert.False(t, s.Visible("sponsors"))
}

func TestRoutes(t *testing.T) {
	assert.Equal(t, []string{RouteHome}, RoutesForKey("hero.headline"))
	assert.Equal(t, []string{RouteSponsors}, RoutesForKey("sponsors.intro"))
	assert.Equal(t, AllRoutes, RoutesForKey("footer.copyright"))

	assert.Equal(t, AllRoutes, AffectedRoutes(&models.Draft{Type: models.DraftTypeAnnouncement}))
	assert.Equal(t, []string{RouteHome, RoutePrograms},
		AffectedRoutes(&models.Draft{Type: models.DraftTypeImage, ContentKey: "programs.photo"}))

	assert.True(t, isAllRoutes([]string{RouteSponsors, RouteHome, RoutePrograms}))
	assert.False(t, isAllRoutes([]string{RouteHome}))
}
