// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package webhook verifies and processes payment provider webhooks. Each
// event id is claimed once in storage so replayed deliveries are not
// handled twice.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"riseup/internal/metrics"
	"riseup/internal/models"
)

// ProviderStripe names the payment provider in webhook_events.
const ProviderStripe = "stripe"

// Handled event types.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventInvoicePaid         = "invoice.paid"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is the envelope of a delivered webhook.
type Event struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseEvent decodes a webhook body. Both id and type are required.
func ParseEvent(payload []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("webhook: decode event: %w", err)
	}
	if e.ID == "" || e.Type == "" {
		return nil, errors.New("webhook: event id and type are required")
	}
	return &e, nil
}

// Claimer records that an event id has been taken for processing. Claim
// returns false when the id was already claimed.
type Claimer interface {
	Claim(ctx context.Context, e *models.WebhookEvent) (bool, error)
}

// HandlerFunc processes one event type.
type HandlerFunc func(ctx context.Context, e *Event) error

// Processor claims events and dispatches them by type.
type Processor struct {
	claimer  Claimer
	handlers map[string]HandlerFunc
	metrics  *metrics.Metrics
}

// NewProcessor creates a Processor with the default handlers registered.
// m may be nil.
func NewProcessor(claimer Claimer, m *metrics.Metrics) *Processor {
	p := &Processor{
		claimer:  claimer,
		handlers: make(map[string]HandlerFunc),
		metrics:  m,
	}
	p.On(EventCheckoutCompleted, logEvent("checkout completed"))
	p.On(EventInvoicePaid, logEvent("invoice paid"))
	p.On(EventSubscriptionDeleted, logEvent("subscription cancelled"))
	return p
}

// On registers fn for eventType, replacing any previous handler.
func (p *Processor) On(eventType string, fn HandlerFunc) {
	p.handlers[eventType] = fn
}

// Process claims e and runs its handler. It returns the outcome recorded
// in metrics. A claim failure is logged and the event is still handled,
// accepting a possible duplicate over a lost event.
func (p *Processor) Process(ctx context.Context, e *Event) (string, error) {
	claimed, err := p.claimer.Claim(ctx, &models.WebhookEvent{
		EventID:   e.ID,
		Provider:  ProviderStripe,
		EventType: e.Type,
	})
	if err != nil {
		slog.Error("webhook claim failed, handling anyway", "event_id", e.ID, "error", err)
		claimed = true
	}
	if !claimed {
		slog.Info("webhook duplicate ignored", "event_id", e.ID, "type", e.Type)
		p.metrics.WebhookEvent(metrics.WebhookDuplicate)
		return metrics.WebhookDuplicate, nil
	}

	fn, ok := p.handlers[e.Type]
	if !ok {
		slog.Info("webhook event type not handled", "event_id", e.ID, "type", e.Type)
		p.metrics.WebhookEvent(metrics.WebhookIgnored)
		return metrics.WebhookIgnored, nil
	}

	p.metrics.WebhookEvent(metrics.WebhookHandled)
	if err := fn(ctx, e); err != nil {
		return metrics.WebhookHandled, fmt.Errorf("webhook %s: %w", e.Type, err)
	}
	return metrics.WebhookHandled, nil
}

// logEvent returns a handler that only logs the event's object id.
func logEvent(msg string) HandlerFunc {
	return func(_ context.Context, e *Event) error {
		var data struct {
			Object struct {
				ID string `json:"id"`
			} `json:"object"`
		}
		_ = json.Unmarshal(e.Data, &data)
		slog.Info(msg, "event_id", e.ID, "object_id", data.Object.ID)
		return nil
	}
}
