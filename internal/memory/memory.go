// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package memory manages the user's long-term memory text. The text lives
// locally in the key-value store and is injected into outbound requests as
// a system message immediately after the base system prompt. It is never
// persisted inside any chat session.
package memory

import (
	"strings"

	"github.com/jeranaias/divine-tui/internal/store"
)

// promptPrefix frames the memory text when injected into a request.
const promptPrefix = "The user has provided the following long-term memory / preferences. Follow them:\n\n"

// Manager reads and writes the memory text.
type Manager struct {
	kv *store.Store
}

// NewManager creates a manager over the given store.
func NewManager(kv *store.Store) *Manager {
	return &Manager{kv: kv}
}

// Load returns the trimmed memory text, or "" when none is stored.
func (m *Manager) Load() string {
	text, ok := m.kv.Get(store.KeyMemory)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

// Save stores the memory text verbatim.
func (m *Manager) Save(text string) error {
	return m.kv.Set(store.KeyMemory, text)
}

// Clear removes the memory text.
func (m *Manager) Clear() error {
	return m.kv.Set(store.KeyMemory, "")
}

// SystemMessage returns the framed memory text for request injection, or
// "" when no memory is set.
func (m *Manager) SystemMessage() string {
	text := m.Load()
	if text == "" {
		return ""
	}
	return promptPrefix + text
}
