// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// MaxVersionsPerKey is how many archived values are kept for each key.
const MaxVersionsPerKey = 10

// ContentVersion is an archived prior value of a content key. Versions
// are written whenever a versioned item is overwritten, and enable
// restoring earlier values.
type ContentVersion struct {
	ID         int64     `db:"id" json:"id"`
	ContentKey string    `db:"content_key" json:"content_key"`
	Content    JSON      `db:"content" json:"content"`
	ChangedAt  time.Time `db:"changed_at" json:"changed_at"`
}

// KeyHistory groups the retained versions of one key, newest first.
type KeyHistory struct {
	ContentKey string
	Versions   []ContentVersion
}
