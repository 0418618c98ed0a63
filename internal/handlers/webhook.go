// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"riseup/internal/webhook"
)

// maxWebhookBody caps payment provider webhook payloads.
const maxWebhookBody = 64 << 10

// EventProcessor claims and dispatches verified webhook events.
type EventProcessor interface {
	Process(ctx context.Context, e *webhook.Event) (string, error)
}

// Webhook handles payment provider callbacks.
type Webhook struct {
	secret    string
	tolerance time.Duration
	processor EventProcessor
	now       func() time.Time
}

// NewWebhook creates a Webhook handler verifying signatures with secret.
func NewWebhook(secret string, processor EventProcessor) *Webhook {
	return &Webhook{
		secret:    secret,
		tolerance: webhook.DefaultTolerance,
		processor: processor,
		now:       time.Now,
	}
}

var receivedResponse = map[string]bool{"received": true}

// Stripe verifies and processes a Stripe event. Once the signature is
// valid the response is always 200 so the provider stops retrying;
// processing failures are logged.
func (h *Webhook) Stripe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("payload too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("unreadable body"))
		return
	}

	header := r.Header.Get(webhook.SignatureHeader)
	if err := webhook.VerifySignature(body, header, h.secret, h.tolerance, h.now()); err != nil {
		slog.Warn("webhook signature rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid signature"))
		return
	}

	e, err := webhook.ParseEvent(body)
	if err != nil {
		slog.Warn("webhook payload rejected", "error", err)
		writeJSON(w, http.StatusOK, receivedResponse)
		return
	}

	outcome, err := h.processor.Process(r.Context(), e)
	if err != nil {
		slog.Error("webhook handler failed", "event_id", e.ID, "type", e.Type, "error", err)
	} else {
		slog.Debug("webhook processed", "event_id", e.ID, "type", e.Type, "outcome", outcome)
	}
	writeJSON(w, http.StatusOK, receivedResponse)
}
