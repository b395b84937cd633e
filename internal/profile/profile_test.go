// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import "testing"

func TestResolveKnownKeys(t *testing.T) {
	r := NewRegistry()

	for _, key := range []string{"flex", "comfort", "agent"} {
		p := r.Resolve(key)
		if p.Key != key {
			t.Errorf("Resolve(%q).Key = %q", key, p.Key)
		}
		if p.DailyLimit <= 0 {
			t.Errorf("Resolve(%q).DailyLimit = %d, want > 0", key, p.DailyLimit)
		}
		if p.SystemPrompt == "" {
			t.Errorf("Resolve(%q) has empty system prompt", key)
		}
		if p.RemoteModelID == "" {
			t.Errorf("Resolve(%q) has empty remote model id", key)
		}
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r := NewRegistry()

	for _, key := range []string{"", "nope", "FLEX"} {
		p := r.Resolve(key)
		if p.Key != DefaultKey {
			t.Errorf("Resolve(%q).Key = %q, want %q", key, p.Key, DefaultKey)
		}
	}
}

func TestIsDefault(t *testing.T) {
	r := NewRegistry()

	if !r.Default().IsDefault() {
		t.Error("Default().IsDefault() = false")
	}
	if r.Resolve("comfort").IsDefault() {
		t.Error("comfort should not be the default profile")
	}
	if r.Resolve("agent").IsDefault() {
		t.Error("agent should not be the default profile")
	}
}

func TestKeysStableOrder(t *testing.T) {
	r := NewRegistry()

	keys := r.Keys()
	want := []string{"flex", "comfort", "agent"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestKnown(t *testing.T) {
	r := NewRegistry()
	if !r.Known("agent") {
		t.Error("Known(agent) = false")
	}
	if r.Known("turbo") {
		t.Error("Known(turbo) = true")
	}
}
