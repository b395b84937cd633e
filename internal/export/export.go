// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export converts sessions to and from their portable forms: the
// share JSON envelope, the import path back into a session, and the
// markdown transcript.
//
// The JSON wire format uses camelCase keys and millisecond timestamps so
// exports remain interchangeable with files produced by earlier clients.
package export

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jeranaias/divine-tui/internal/model"
	"github.com/jeranaias/divine-tui/internal/profile"
)

// ImportedName is the name given to imported chats that carry none.
const ImportedName = "Imported Chat"

// ErrInvalidFormat indicates the input is not a chat JSON document.
var ErrInvalidFormat = errors.New("invalid chat JSON format")

// tsLayout matches the locale-style timestamps in markdown exports.
const tsLayout = "1/2/2006, 3:04:05 PM"

// =============================================================================
// WIRE TYPES
// =============================================================================

// PayloadMessage is one message in the portable chat object. Timestamp is
// explicit null when the message has none.
type PayloadMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp *int64 `json:"timestamp"`
}

// Payload is the portable chat object.
type Payload struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	ModelKey string           `json:"modelKey"`
	ModelID  string           `json:"modelId"`
	Messages []PayloadMessage `json:"messages"`
}

// Envelope wraps a payload for sharing.
type Envelope struct {
	Version    int     `json:"version"`
	ExportedAt int64   `json:"exportedAt"`
	Chat       Payload `json:"chat"`
}

// =============================================================================
// EXPORT
// =============================================================================

// Object projects a session to its portable form.
func Object(sess *model.Session) Payload {
	msgs := make([]PayloadMessage, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		msgs = append(msgs, PayloadMessage{
			Role:      m.Role.String(),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return Payload{
		ID:       sess.ID,
		Name:     sess.Name,
		ModelKey: sess.ModelKey,
		ModelID:  sess.RemoteModelID,
		Messages: msgs,
	}
}

// Share renders the versioned envelope as indented JSON. now stamps the
// exportedAt field.
func Share(sess *model.Session, now time.Time) ([]byte, error) {
	env := Envelope{
		Version:    1,
		ExportedAt: now.UnixMilli(),
		Chat:       Object(sess),
	}
	return json.MarshalIndent(env, "", "  ")
}

// Filename builds a download name from the session name plus extension,
// with filesystem-hostile characters replaced.
func Filename(name, ext string) string {
	if name == "" {
		name = "chat"
	}
	return SafeFilename(name + ext)
}

// SafeFilename replaces characters that are unsafe in filenames on common
// platforms with underscores.
func SafeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

// =============================================================================
// IMPORT
// =============================================================================

// Import parses a shared chat document into a fresh session. Both the
// versioned envelope and a bare chat object are accepted. The imported
// session always gets a new id, a bounded name, a resolvable profile
// (fallbackKey, then the default), and a system message at the head.
// Malformed message entries are dropped.
func Import(raw []byte, registry *profile.Registry, fallbackKey string) (*model.Session, error) {
	var wrapper struct {
		Chat json.RawMessage `json:"chat"`
	}
	body := raw
	if json.Unmarshal(raw, &wrapper) == nil && len(wrapper.Chat) > 0 && string(wrapper.Chat) != "null" {
		body = wrapper.Chat
	}

	var obj struct {
		Name     string            `json:"name"`
		ModelKey string            `json:"modelKey"`
		ModelID  string            `json:"modelId"`
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, ErrInvalidFormat
	}
	if obj.Messages == nil {
		return nil, ErrInvalidFormat
	}

	key := obj.ModelKey
	if key == "" {
		key = fallbackKey
	}
	prof := registry.Resolve(key)

	remoteID := obj.ModelID
	if remoteID == "" {
		remoteID = prof.RemoteModelID
	}

	sess := &model.Session{
		ID:            model.NewID(),
		Name:          importName(obj.Name),
		ModelKey:      prof.Key,
		RemoteModelID: remoteID,
		Messages:      importMessages(obj.Messages),
	}

	if len(sess.Messages) == 0 || sess.Messages[0].Role != model.RoleSystem {
		sess.Messages = append([]model.Message{model.NewSystemMessage(prof.SystemPrompt)}, sess.Messages...)
	}
	return sess, nil
}

// importName bounds the chat name, substituting a default when empty.
func importName(name string) string {
	if name == "" {
		return ImportedName
	}
	runes := []rune(name)
	if len(runes) > model.MaxNameLen {
		runes = runes[:model.MaxNameLen]
	}
	return string(runes)
}

// importMessages keeps entries that carry a role and a string content,
// dropping everything else. Content is decoded through a pointer so an
// absent field is told apart from an empty string and dropped too.
func importMessages(raws []json.RawMessage) []model.Message {
	out := make([]model.Message, 0, len(raws))
	for _, r := range raws {
		var pm struct {
			Role      string  `json:"role"`
			Content   *string `json:"content"`
			Timestamp *int64  `json:"timestamp"`
		}
		if err := json.Unmarshal(r, &pm); err != nil {
			continue
		}
		if pm.Role == "" || pm.Content == nil {
			continue
		}
		out = append(out, model.Message{
			Role:      model.Role(pm.Role),
			Content:   *pm.Content,
			Timestamp: pm.Timestamp,
		})
	}
	return out
}

// =============================================================================
// MARKDOWN
// =============================================================================

// ToMarkdown renders the session as a markdown transcript. System messages
// are skipped; user messages are attributed to "You" and everything else
// to "AI". now stamps the footer.
func ToMarkdown(sess *model.Session, registry *profile.Registry, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Divine Chat Export\n\n")
	b.WriteString("**Model:** " + registry.Resolve(sess.ModelKey).DisplayName + "\n\n")

	for _, m := range sess.Messages {
		if m.Role == model.RoleSystem {
			continue
		}
		b.WriteString("\n---\n")
		if m.Timestamp != nil {
			b.WriteString("*" + m.Time().Format(tsLayout) + "*\n")
		}
		who := "**AI:**"
		if m.Role == model.RoleUser {
			who = "**You:**"
		}
		b.WriteString(who + "\n\n" + strings.TrimSpace(m.Content) + "\n")
	}

	b.WriteString("\n---\n*Exported on " + now.Format(tsLayout) + "*\n")
	return b.String()
}
