// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"errors"

	"riseup/internal/models"
)

var (
	// ErrDraftNotFound is returned when a draft id matches no pending draft.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrVersionNotFound is returned when a version id matches no archived version.
	ErrVersionNotFound = errors.New("version not found")

	// ErrInvalidDraft wraps validation failures of a proposed draft.
	ErrInvalidDraft = errors.New("invalid draft")

	// ErrContentTypeMismatch is returned when a write would change the
	// content type of a live key.
	ErrContentTypeMismatch = errors.New("content type mismatch")

	// ErrUnknownDraftType is returned for draft types outside the closed set.
	ErrUnknownDraftType = models.ErrUnknownDraftType
)
