// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile defines the model profile registry.
//
// A profile bundles a remote model identifier, a display name, a daily
// message limit and a system instruction text. The set is closed and
// statically configured: three profiles exist, and lookups always resolve,
// falling back to the default profile for unknown keys.
package profile

// DefaultKey is the profile every lookup falls back to. The default profile
// is also the downgrade target when a non-default profile exhausts its daily
// limit; it has no fallback of its own.
const DefaultKey = "flex"

// =============================================================================
// PROFILE TYPE
// =============================================================================

// Profile is an immutable model configuration.
type Profile struct {
	Key           string
	RemoteModelID string
	DisplayName   string
	DailyLimit    int
	SystemPrompt  string
}

// IsDefault reports whether this is the default profile.
func (p Profile) IsDefault() bool {
	return p.Key == DefaultKey
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry resolves profile keys to profiles. The zero value is not usable;
// construct with NewRegistry.
type Registry struct {
	profiles map[string]Profile
	order    []string
}

// NewRegistry returns the registry with the built-in profile set.
func NewRegistry() *Registry {
	builtin := []Profile{
		{
			Key:           "flex",
			RemoteModelID: "openai/gpt-oss-20b",
			DisplayName:   "Flex 1.0",
			DailyLimit:    25,
			SystemPrompt: "You are Divine AI, an independent AI assistant. " +
				"You must ALWAYS refer to yourself as “Divine AI.” " +
				"You must NEVER refer to yourself as ChatGPT, OpenAI, or any other AI name " +
				"under any circumstances. You are helpful, accurate, and clear.",
		},
		{
			Key:           "comfort",
			RemoteModelID: "openai/gpt-oss-20b",
			DisplayName:   "Comfort 1.0",
			DailyLimit:    25,
			SystemPrompt: "You are Divine AI, running as Divine Comfort 1, a casual and friendly " +
				"conversational AI designed primarily for chatting and companionship. " +
				"You must ALWAYS refer to yourself as “Divine AI” (or “Divine Comfort”). " +
				"Never mention any other AI brand. Be warm and supportive.",
		},
		{
			Key:           "agent",
			RemoteModelID: "openai/gpt-oss-20b",
			DisplayName:   "Agent 1.0",
			DailyLimit:    25,
			SystemPrompt: "You are Divine AI, running as Divine Agent 1, a specialized AI focused " +
				"on coding and programming tasks. " +
				"You must ALWAYS refer to yourself as “Divine AI” (or “Divine Agent”). " +
				"Never mention any other AI brand. Provide precise code-focused answers.",
		},
	}

	r := &Registry{profiles: make(map[string]Profile, len(builtin))}
	for _, p := range builtin {
		r.profiles[p.Key] = p
		r.order = append(r.order, p.Key)
	}
	return r
}

// Resolve returns the profile for key, or the default profile when the key
// is unknown or empty. Always returns a valid profile.
func (r *Registry) Resolve(key string) Profile {
	if p, ok := r.profiles[key]; ok {
		return p
	}
	return r.profiles[DefaultKey]
}

// Default returns the default profile.
func (r *Registry) Default() Profile {
	return r.profiles[DefaultKey]
}

// Known reports whether key names a registered profile.
func (r *Registry) Known(key string) bool {
	_, ok := r.profiles[key]
	return ok
}

// Keys returns the profile keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
