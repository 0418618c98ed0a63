// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified chat interface over LLM providers
// (Anthropic Claude, OpenAI) with tool calling. Each provider implements
// the Provider interface, and the Registry selects the active one by name.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Provider defines the interface that all AI providers must implement.
// Each provider handles its own HTTP communication and response parsing.
type Provider interface {
	// Chat sends a conversation and the available tools to the model and
	// returns its reply text and any tool calls it made.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the provider identifier (e.g., "claude", "openai").
	Name() string
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=8000"`
}

// Tool describes a function the model may call. Schema is a JSON Schema
// object describing the tool's input.
type Tool struct {
	Name        string
	Description string
	Schema      map[string]any
}

// ToolCall is a single invocation of a Tool requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ChatRequest is a provider-neutral chat completion request.
type ChatRequest struct {
	System    string
	Messages  []Message
	Tools     []Tool
	MaxTokens int
}

// ChatResponse is a provider-neutral chat completion result.
type ChatResponse struct {
	Text      string
	ToolCalls []ToolCall
}

const defaultMaxTokens = 1024

func (r *ChatRequest) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultMaxTokens
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Registry manages available AI providers and selects the active one.
// It supports runtime switching by changing the active provider name.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
}

// NewRegistry creates a registry and initialises providers for every config
// that has a non-empty API key. Providers without keys are silently skipped,
// as are unknown provider names.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "claude":
			r.providers[name] = newClaude(cfg)
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		}
	}
	return r
}

// Chat calls the active provider's Chat method.
func (r *Registry) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	p, err := r.Active()
	if err != nil {
		return nil, err
	}
	return p.Chat(ctx, req)
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// SetActive switches the active provider at runtime. Returns an error if
// the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the sorted names of all configured providers.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a provider in the registry. This allows injecting
// custom providers at runtime (e.g. for testing).
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// HasProvider checks whether a named provider is configured and available.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}
