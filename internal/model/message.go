// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the label used for the role in transcripts and exports.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "AI"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single turn in a session.
//
// Role and Content are immutable after creation; corrections happen via
// regenerate or delete, never in-place edits. Timestamp is epoch millis and
// is present only for user and assistant turns.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// NewSystemMessage creates a system message. System messages carry no
// timestamp.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(content string) Message {
	return stamped(RoleUser, content, time.Now())
}

// NewAssistantMessage creates an assistant message stamped with the current
// time.
func NewAssistantMessage(content string) Message {
	return stamped(RoleAssistant, content, time.Now())
}

// NewUserMessageAt creates a user message with an explicit timestamp.
func NewUserMessageAt(content string, at time.Time) Message {
	return stamped(RoleUser, content, at)
}

// NewAssistantMessageAt creates an assistant message with an explicit
// timestamp.
func NewAssistantMessageAt(content string, at time.Time) Message {
	return stamped(RoleAssistant, content, at)
}

func stamped(role Role, content string, at time.Time) Message {
	ts := at.UnixMilli()
	return Message{Role: role, Content: content, Timestamp: &ts}
}

// Time returns the message timestamp, or the zero time if absent.
func (m Message) Time() time.Time {
	if m.Timestamp == nil {
		return time.Time{}
	}
	return time.UnixMilli(*m.Timestamp)
}

// Preview returns a truncated single-line preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
