// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// WebhookEvent records an externally delivered event that has been
// claimed for processing. The event id is the idempotency key.
type WebhookEvent struct {
	EventID    string    `db:"event_id" json:"event_id"`
	Provider   string    `db:"provider" json:"provider"`
	EventType  string    `db:"event_type" json:"event_type"`
	ReceivedAt time.Time `db:"received_at" json:"received_at"`
}
