// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

func TestNewSessionSeedsSystemMessage(t *testing.T) {
	s := NewSession("flex", "openai/gpt-oss-20b", "be helpful")

	if s.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if s.Name != DefaultName {
		t.Errorf("Name = %q, want %q", s.Name, DefaultName)
	}
	if len(s.Messages) != 1 {
		t.Fatalf("Messages count = %d, want 1", len(s.Messages))
	}
	if s.Messages[0].Role != RoleSystem {
		t.Errorf("first message role = %q, want system", s.Messages[0].Role)
	}
	if s.Messages[0].Content != "be helpful" {
		t.Errorf("system content = %q", s.Messages[0].Content)
	}
	if s.Messages[0].Timestamp != nil {
		t.Error("system message should carry no timestamp")
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate ID %q", id)
		}
		seen[id] = true
	}
}

func TestMessageTimestamps(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	msg := NewUserMessageAt("hi", at)

	if msg.Timestamp == nil {
		t.Fatal("user message should carry a timestamp")
	}
	if *msg.Timestamp != 1700000000000 {
		t.Errorf("Timestamp = %d, want 1700000000000", *msg.Timestamp)
	}
	if !msg.Time().Equal(at) {
		t.Errorf("Time() = %v, want %v", msg.Time(), at)
	}
}

func TestDropLastAssistant(t *testing.T) {
	s := NewSession("flex", "m", "sys")
	s.Append(NewUserMessage("A"))
	s.Append(NewAssistantMessage("R1"))

	if !s.DropLastAssistant() {
		t.Fatal("expected an assistant message to be removed")
	}
	if len(s.Messages) != 2 {
		t.Fatalf("Messages count = %d, want 2", len(s.Messages))
	}
	if s.Messages[1].Role != RoleUser || s.Messages[1].Content != "A" {
		t.Errorf("unexpected tail message %+v", s.Messages[1])
	}

	// Nothing left to drop.
	if s.DropLastAssistant() {
		t.Error("expected no assistant message to remove")
	}
}

func TestDropLastAssistantSkipsTrailingUser(t *testing.T) {
	s := NewSession("flex", "m", "sys")
	s.Append(NewUserMessage("A"))
	s.Append(NewAssistantMessage("R1"))
	s.Append(NewUserMessage("B"))

	if !s.DropLastAssistant() {
		t.Fatal("expected removal")
	}
	if got := len(s.Messages); got != 3 {
		t.Fatalf("Messages count = %d, want 3", got)
	}
	if s.Messages[2].Content != "B" {
		t.Errorf("trailing user message lost: %+v", s.Messages[2])
	}
}

func TestAutoName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short kept verbatim", "hello world", "hello world"},
		{"exactly 40 kept verbatim", strings.Repeat("x", 40), strings.Repeat("x", 40)},
		{"41 truncated", strings.Repeat("x", 41), strings.Repeat("x", 37) + "..."},
		{"45 truncated to 40 total", strings.Repeat("y", 45), strings.Repeat("y", 37) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AutoName(tt.in)
			if got != tt.want {
				t.Errorf("AutoName(%d runes) = %q, want %q", len([]rune(tt.in)), got, tt.want)
			}
		})
	}

	// The truncated form is always exactly 40 runes.
	if got := len([]rune(AutoName(strings.Repeat("z", 100)))); got != 40 {
		t.Errorf("truncated name length = %d, want 40", got)
	}
}

func TestCleanName(t *testing.T) {
	if got := CleanName("   "); got != UntitledName {
		t.Errorf("CleanName(blank) = %q, want %q", got, UntitledName)
	}
	if got := CleanName("  hi  "); got != "hi" {
		t.Errorf("CleanName = %q, want %q", got, "hi")
	}
	long := strings.Repeat("a", 120)
	if got := CleanName(long); len([]rune(got)) != MaxNameLen {
		t.Errorf("clamped name length = %d, want %d", len([]rune(got)), MaxNameLen)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewSession("flex", "m", "sys")
	s.Append(NewUserMessage("A"))

	clone := s.Clone()
	clone.Messages[1] = NewUserMessageAt("B", time.UnixMilli(1))
	clone.Name = "other"

	if s.Messages[1].Content != "A" {
		t.Error("clone mutation leaked into original messages")
	}
	if s.Name != DefaultName {
		t.Error("clone mutation leaked into original name")
	}
}

func TestLastUserMessage(t *testing.T) {
	s := NewSession("flex", "m", "sys")
	if _, ok := s.LastUserMessage(); ok {
		t.Error("expected no user message in a fresh session")
	}
	s.Append(NewUserMessage("first"))
	s.Append(NewAssistantMessage("r"))
	s.Append(NewUserMessage("second"))

	msg, ok := s.LastUserMessage()
	if !ok || msg.Content != "second" {
		t.Errorf("LastUserMessage = %+v, ok=%v", msg, ok)
	}
}
