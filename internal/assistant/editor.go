// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assistant turns an admin's chat conversation into text drafts.
// The model is given a single tool that proposes a new value for one of a
// fixed set of content keys; every accepted call becomes a draft that an
// admin still has to preview and publish.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/google/uuid"

	"riseup/internal/ai"
	"riseup/internal/models"
	"riseup/internal/publish"
)

// CreatedBy is recorded on drafts proposed by the assistant.
const CreatedBy = "ai-assistant"

// ToolName is the only tool offered to the model.
const ToolName = "propose_text_edit"

// EditableKeys are the content keys the assistant may propose edits for.
var EditableKeys = []string{
	"hero.headline",
	"hero.subtitle",
	"hero.cta_primary",
	"hero.cta_secondary",
	"programs.section_title",
}

// Chatter sends a conversation to an LLM.
type Chatter interface {
	Chat(ctx context.Context, req *ai.ChatRequest) (*ai.ChatResponse, error)
}

// DraftCreator stores proposed drafts.
type DraftCreator interface {
	CreateDraft(ctx context.Context, nd publish.NewDraft) (uuid.UUID, error)
}

// ContentReader reads live content items.
type ContentReader interface {
	Get(ctx context.Context, key string) (*models.ContentItem, error)
}

// ProposedDraft is a draft created from a tool call.
type ProposedDraft struct {
	ID         uuid.UUID `json:"id"`
	ContentKey string    `json:"content_key"`
	Text       string    `json:"text"`
	PreviewURL string    `json:"preview_url"`
}

// Rejection is a tool call that did not become a draft.
type Rejection struct {
	ContentKey string `json:"content_key,omitempty"`
	Reason     string `json:"reason"`
}

// Result is the outcome of one chat turn.
type Result struct {
	Reply    string          `json:"reply"`
	Drafts   []ProposedDraft `json:"drafts"`
	Rejected []Rejection     `json:"rejected"`
}

// Editor runs chat turns against the model and records proposals.
type Editor struct {
	chat    Chatter
	drafts  DraftCreator
	content ContentReader
}

// NewEditor creates an Editor.
func NewEditor(chat Chatter, drafts DraftCreator, content ContentReader) *Editor {
	return &Editor{chat: chat, drafts: drafts, content: content}
}

// Run sends messages to the model with the current values of the editable
// keys in the system prompt, and turns each tool call into a text draft.
func (e *Editor) Run(ctx context.Context, messages []ai.Message) (*Result, error) {
	system, err := e.systemPrompt(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := e.chat.Chat(ctx, &ai.ChatRequest{
		System:   system,
		Messages: messages,
		Tools:    []ai.Tool{proposeTextEdit()},
	})
	if err != nil {
		return nil, fmt.Errorf("assistant chat: %w", err)
	}

	res := &Result{
		Reply:    resp.Text,
		Drafts:   []ProposedDraft{},
		Rejected: []Rejection{},
	}
	for _, call := range resp.ToolCalls {
		if err := e.apply(ctx, call, res); err != nil {
			return nil, err
		}
	}

	slog.Info("assistant turn", "drafts", len(res.Drafts), "rejected", len(res.Rejected))
	return res, nil
}

// apply records a single tool call on res. Only storage failures are
// returned; invalid proposals are reported as rejections.
func (e *Editor) apply(ctx context.Context, call ai.ToolCall, res *Result) error {
	if call.Name != ToolName {
		res.Rejected = append(res.Rejected, Rejection{Reason: fmt.Sprintf("unknown tool %q", call.Name)})
		return nil
	}

	var in struct {
		ContentKey string `json:"content_key"`
		Text       string `json:"text"`
	}
	if err := json.Unmarshal(call.Input, &in); err != nil {
		res.Rejected = append(res.Rejected, Rejection{Reason: "malformed tool input"})
		return nil
	}
	if !slices.Contains(EditableKeys, in.ContentKey) {
		res.Rejected = append(res.Rejected, Rejection{ContentKey: in.ContentKey, Reason: "key is not editable"})
		return nil
	}

	id, err := e.drafts.CreateDraft(ctx, publish.NewDraft{
		ContentKey: in.ContentKey,
		Type:       models.DraftTypeText,
		Content:    models.MustJSON(models.TextContent{Text: in.Text}),
		CreatedBy:  CreatedBy,
	})
	if errors.Is(err, publish.ErrInvalidDraft) {
		res.Rejected = append(res.Rejected, Rejection{ContentKey: in.ContentKey, Reason: err.Error()})
		return nil
	}
	if err != nil {
		return err
	}

	res.Drafts = append(res.Drafts, ProposedDraft{
		ID:         id,
		ContentKey: in.ContentKey,
		Text:       in.Text,
		PreviewURL: PreviewURL(id),
	})
	return nil
}

// PreviewURL is the admin preview page for a draft.
func PreviewURL(id uuid.UUID) string {
	return "/admin/dashboard/preview?" + url.Values{"draft": {id.String()}}.Encode()
}

func (e *Editor) systemPrompt(ctx context.Context) (string, error) {
	var sb strings.Builder
	sb.WriteString(`You are the content editor for the RiseUp youth sports league website.
You can change website copy only by calling the propose_text_edit tool. Each call
creates a draft that a league admin reviews before it goes live. Keep copy short,
friendly and suitable for families. Only the keys listed below can be edited.

Current values:
`)
	for _, key := range EditableKeys {
		item, err := e.content.Get(ctx, key)
		if err != nil {
			return "", err
		}
		value := item.Text()
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(&sb, "- %s: %q\n", key, value)
	}
	return sb.String(), nil
}

func proposeTextEdit() ai.Tool {
	return ai.Tool{
		Name:        ToolName,
		Description: "Propose a new text value for one website content key. Creates a draft for admin review.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content_key": map[string]any{
					"type":        "string",
					"enum":        EditableKeys,
					"description": "The content key to change.",
				},
				"text": map[string]any{
					"type":        "string",
					"description": "The proposed new text.",
				},
			},
			"required": []string{"content_key", "text"},
		},
	}
}
