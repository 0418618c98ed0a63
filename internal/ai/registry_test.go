// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// mockProvider is a test double implementing the Provider interface.
// It records calls and returns configurable responses.
type mockProvider struct {
	name      string
	response  *ChatResponse
	err       error
	callCount int
	lastReq   *ChatRequest
	mu        sync.Mutex
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.lastReq = req
	return m.response, m.err
}

// ---------- Registry.Chat ----------

func TestRegistryChat(t *testing.T) {
	t.Run("delegates to active provider", func(t *testing.T) {
		mock := &mockProvider{name: "test", response: &ChatResponse{Text: "Hello from mock"}}

		reg := &Registry{
			providers: map[string]Provider{"test": mock},
			active:    "test",
		}

		req := &ChatRequest{System: "system", Messages: []Message{{Role: "user", Content: "user"}}}
		result, err := reg.Chat(context.Background(), req)
		if err != nil {
			t.Fatalf("Chat: unexpected error: %v", err)
		}
		if result.Text != "Hello from mock" {
			t.Errorf("result: got %q, want %q", result.Text, "Hello from mock")
		}

		mock.mu.Lock()
		defer mock.mu.Unlock()
		if mock.callCount != 1 {
			t.Errorf("callCount: got %d, want 1", mock.callCount)
		}
		if mock.lastReq != req {
			t.Error("provider did not receive the request")
		}
	})

	t.Run("propagates provider error", func(t *testing.T) {
		mock := &mockProvider{name: "test", err: fmt.Errorf("api failure")}

		reg := &Registry{
			providers: map[string]Provider{"test": mock},
			active:    "test",
		}

		_, err := reg.Chat(context.Background(), &ChatRequest{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if err.Error() != "api failure" {
			t.Errorf("error: got %q, want %q", err.Error(), "api failure")
		}
	})

	t.Run("error when active name does not match any registered provider", func(t *testing.T) {
		reg := &Registry{
			providers: map[string]Provider{"openai": &mockProvider{name: "openai"}},
			active:    "claude",
		}

		if _, err := reg.Chat(context.Background(), &ChatRequest{}); err == nil {
			t.Fatal("expected error for mismatched active provider, got nil")
		}
	})
}

// ---------- Registry.SetActive ----------

func TestRegistrySetActive(t *testing.T) {
	reg := &Registry{
		providers: map[string]Provider{
			"a": &mockProvider{name: "a"},
			"b": &mockProvider{name: "b"},
		},
		active: "a",
	}

	if err := reg.SetActive("b"); err != nil {
		t.Fatalf("SetActive: unexpected error: %v", err)
	}
	if reg.ActiveName() != "b" {
		t.Errorf("ActiveName: got %q, want %q", reg.ActiveName(), "b")
	}

	if err := reg.SetActive("missing"); err == nil {
		t.Fatal("expected error for unavailable provider, got nil")
	}
	if reg.ActiveName() != "b" {
		t.Errorf("ActiveName after failed switch: got %q, want %q", reg.ActiveName(), "b")
	}
}

func TestRegistryAvailableSorted(t *testing.T) {
	reg := NewRegistry("openai", map[string]ProviderConfig{
		"openai": {APIKey: "k1", Model: "gpt-4o"},
		"claude": {APIKey: "k2", Model: "claude-sonnet-4-5"},
	})

	got := reg.Available()
	if len(got) != 2 || got[0] != "claude" || got[1] != "openai" {
		t.Errorf("Available: got %v, want [claude openai]", got)
	}
}

func TestRegistryConcurrency(t *testing.T) {
	reg := &Registry{
		providers: map[string]Provider{
			"a": &mockProvider{name: "a", response: &ChatResponse{}},
			"b": &mockProvider{name: "b", response: &ChatResponse{}},
		},
		active: "a",
	}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = reg.SetActive("b")
			} else {
				_ = reg.SetActive("a")
			}
			_, _ = reg.Chat(context.Background(), &ChatRequest{})
			_ = reg.Available()
			_ = reg.HasProvider("a")
		}(i)
	}
	wg.Wait()
}

// ---------- NewRegistry ----------

func TestNewRegistryProviderNames(t *testing.T) {
	for _, name := range []string{"openai", "claude"} {
		t.Run(name, func(t *testing.T) {
			reg := NewRegistry(name, map[string]ProviderConfig{
				name: {APIKey: "test-key", Model: "test-model"},
			})

			p, err := reg.Active()
			if err != nil {
				t.Fatalf("Active: unexpected error: %v", err)
			}
			if p.Name() != name {
				t.Errorf("Name: got %q, want %q", p.Name(), name)
			}
		})
	}
}

func TestNewRegistrySkipsEmptyAPIKey(t *testing.T) {
	reg := NewRegistry("openai", map[string]ProviderConfig{
		"openai": {APIKey: "", Model: "gpt-4o"},
		"claude": {APIKey: "valid-key", Model: "claude-sonnet-4-5"},
	})

	if reg.HasProvider("openai") {
		t.Error("openai should be skipped (no API key)")
	}
	if !reg.HasProvider("claude") {
		t.Error("claude should be available (has API key)")
	}
}

func TestNewRegistryIgnoresUnknownProvider(t *testing.T) {
	reg := NewRegistry("unknown", map[string]ProviderConfig{
		"unknown": {APIKey: "key", Model: "model"},
	})

	if reg.HasProvider("unknown") {
		t.Error("unknown provider should not be registered")
	}
	if n := len(reg.Available()); n != 0 {
		t.Errorf("len(Available): got %d, want 0", n)
	}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry("custom", nil)
	reg.Register("custom", &mockProvider{name: "custom", response: &ChatResponse{Text: "ok"}})

	resp, err := reg.Chat(context.Background(), &ChatRequest{})
	if err != nil {
		t.Fatalf("Chat: unexpected error: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text: got %q, want %q", resp.Text, "ok")
	}
}
