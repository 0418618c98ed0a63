// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"slices"

	"riseup/internal/models"
)

// Public routes served from the page cache.
const (
	RouteHome     = "/"
	RoutePrograms = "/programs"
	RouteSponsors = "/sponsors"
)

// AllRoutes lists every cached public route.
var AllRoutes = []string{RouteHome, RoutePrograms, RouteSponsors}

// RoutesForKey returns the public routes that render key.
func RoutesForKey(key string) []string {
	switch models.SectionOf(key) {
	case "hero":
		return []string{RouteHome}
	case "programs":
		return []string{RouteHome, RoutePrograms}
	case "sponsors":
		return []string{RouteSponsors}
	default:
		return AllRoutes
	}
}

// AffectedRoutes returns the public routes whose output changes when d is
// published. Announcements and visibility show on every page.
func AffectedRoutes(d *models.Draft) []string {
	switch d.Type {
	case models.DraftTypeText, models.DraftTypeImage:
		return RoutesForKey(d.ContentKey)
	default:
		return AllRoutes
	}
}

func isAllRoutes(routes []string) bool {
	for _, r := range AllRoutes {
		if !slices.Contains(routes, r) {
			return false
		}
	}
	return true
}
