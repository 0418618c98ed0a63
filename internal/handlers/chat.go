// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"riseup/internal/ai"
	"riseup/internal/assistant"
)

// maxChatBody caps the chat request body.
const maxChatBody = 512 << 10

// ContentEditor runs one assistant chat turn.
type ContentEditor interface {
	Run(ctx context.Context, messages []ai.Message) (*assistant.Result, error)
}

// Chat serves the JSON endpoint of the AI content editor.
type Chat struct {
	editor   ContentEditor
	validate *validator.Validate
}

// NewChat creates a Chat handler.
func NewChat(editor ContentEditor) *Chat {
	return &Chat{editor: editor, validate: newValidator()}
}

// Handle runs the conversation in the request through the assistant and
// returns its reply with the drafts it proposed.
func (c *Chat) Handle(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid JSON body"))
		return
	}
	if err := c.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(validationMessage(err)))
		return
	}

	res, err := c.editor.Run(r.Context(), req.Messages)
	if err != nil {
		slog.Error("assistant chat failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse("the assistant is unavailable, try again later"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"reply":    res.Reply,
		"drafts":   res.Drafts,
		"rejected": res.Rejected,
	})
}
