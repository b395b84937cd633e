// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultName is the name given to freshly created sessions.
	DefaultName = "New Chat"

	// UntitledName replaces an empty name on rename.
	UntitledName = "Untitled"

	// MaxNameLen is the maximum session name length in runes.
	MaxNameLen = 80

	// autoNameMax is the longest first message used verbatim as a name;
	// longer messages are cut to autoNameCut runes plus an ellipsis marker.
	autoNameMax = 40
	autoNameCut = 37
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds one conversation: ordered messages plus metadata.
//
// ID is generated once, never reused and never mutated. RemoteModelID is a
// snapshot of the profile's remote identifier taken at creation or switch
// time, so an exported session replays against the model it was actually
// talking to.
type Session struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ModelKey      string    `json:"model_key"`
	RemoteModelID string    `json:"remote_model_id"`
	Messages      []Message `json:"messages"`
}

// NewSession creates a session seeded with the profile's system instruction
// as its first message.
func NewSession(modelKey, remoteModelID, systemPrompt string) *Session {
	return &Session{
		ID:            NewID(),
		Name:          DefaultName,
		ModelKey:      modelKey,
		RemoteModelID: remoteModelID,
		Messages:      []Message{NewSystemMessage(systemPrompt)},
	}
}

// NewID generates a fresh opaque session identifier.
func NewID() string {
	return uuid.NewString()
}

// =============================================================================
// MESSAGE ACCESS
// =============================================================================

// Append adds a message to the end of the session.
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
}

// HasRole reports whether any message has the given role.
func (s *Session) HasRole(role Role) bool {
	for _, m := range s.Messages {
		if m.Role == role {
			return true
		}
	}
	return false
}

// UserMessageCount returns the number of user turns.
func (s *Session) UserMessageCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// LastUserMessage returns the most recent user message and whether one
// exists.
func (s *Session) LastUserMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// DropLastAssistant removes the most recent assistant message, scanning from
// the end and stopping at the first assistant turn found. Returns true if a
// message was removed. Used by regenerate; any trailing non-assistant
// messages are left in place.
func (s *Session) DropLastAssistant() bool {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			s.Messages = append(s.Messages[:i], s.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// SwitchProfile reassigns the session's active profile. The seeded system
// message is left untouched; only the keys change.
func (s *Session) SwitchProfile(modelKey, remoteModelID string) {
	s.ModelKey = modelKey
	s.RemoteModelID = remoteModelID
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		if m.Timestamp != nil {
			ts := *m.Timestamp
			m.Timestamp = &ts
		}
		clone.Messages[i] = m
	}
	return &clone
}

// =============================================================================
// NAMING
// =============================================================================

// AutoName derives a session name from the first user message: the text
// verbatim when it fits, otherwise the leading runes plus an ellipsis
// marker. Rune-based so multi-byte characters are never split.
func AutoName(text string) string {
	runes := []rune(text)
	if len(runes) <= autoNameMax {
		return text
	}
	return string(runes[:autoNameCut]) + "..."
}

// CleanName normalizes a user-supplied session name: trims whitespace,
// substitutes the untitled placeholder for empty input, and clamps to
// MaxNameLen runes.
func CleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return UntitledName
	}
	runes := []rune(name)
	if len(runes) > MaxNameLen {
		return string(runes[:MaxNameLen])
	}
	return name
}
