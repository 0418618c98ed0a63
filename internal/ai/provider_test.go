// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"os"
	"testing"
	"time"
)

var liveTool = Tool{
	Name:        "propose_text_edit",
	Description: "Propose a new value for a content key.",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content_key": map[string]any{"type": "string", "enum": []string{"hero.headline"}},
			"text":        map[string]any{"type": "string"},
		},
		"required": []string{"content_key", "text"},
	},
}

func runLive(t *testing.T, name string, cfg ProviderConfig) {
	t.Helper()

	reg := NewRegistry(name, map[string]ProviderConfig{name: cfg})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := reg.Chat(ctx, &ChatRequest{
		System:   "You edit website copy. Always use the propose_text_edit tool.",
		Messages: []Message{{Role: "user", Content: "Change the headline to 'Registration Open'."}},
		Tools:    []Tool{liveTool},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Text == "" && len(resp.ToolCalls) == 0 {
		t.Fatal("Chat returned neither text nor tool calls")
	}
	t.Logf("%s response: %q, %d tool call(s)", name, resp.Text, len(resp.ToolCalls))
}

// TestClaudeLive tests the Claude provider against the real API.
// Skipped if CLAUDE_API_KEY is not set.
func TestClaudeLive(t *testing.T) {
	key := os.Getenv("CLAUDE_API_KEY")
	if key == "" {
		t.Skip("CLAUDE_API_KEY not set")
	}

	model := os.Getenv("CLAUDE_MODEL")
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	runLive(t, "claude", ProviderConfig{APIKey: key, Model: model})
}

// TestOpenAILive tests the OpenAI provider against the real API.
// Skipped if OPENAI_API_KEY is not set.
func TestOpenAILive(t *testing.T) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		t.Skip("OPENAI_API_KEY not set")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o"
	}
	runLive(t, "openai", ProviderConfig{APIKey: key, Model: model})
}
