// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal interface for divine-tui.
//
// This file defines the async commands: dispatching requests, file
// import/export, and clipboard operations. Commands never touch the model;
// they return messages the Update loop applies.
package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/divine-tui/internal/dispatch"
	"github.com/jeranaias/divine-tui/internal/export"
	"github.com/jeranaias/divine-tui/internal/model"
	"github.com/jeranaias/divine-tui/internal/util"
)

// bubbleDuration is how long a floating notice stays up.
const bubbleDuration = 4 * time.Second

// dispatchCmd runs the blocking network call on its own goroutine.
func dispatchCmd(req *dispatch.Request) tea.Cmd {
	return func() tea.Msg {
		return ResponseMsg{Result: req.Do()}
	}
}

// showBubble installs a floating notice and schedules its expiry.
func (m *Model) showBubble(text string) tea.Cmd {
	m.bubbleText = text
	m.bubbleSeq++
	seq := m.bubbleSeq
	return tea.Tick(bubbleDuration, func(time.Time) tea.Msg {
		return BubbleExpiredMsg{Seq: seq}
	})
}

// importCmd reads and parses a shared chat file.
func (m *Model) importCmd(path string) tea.Cmd {
	registry := m.registry
	fallback := m.sessions.SelectedProfile().Key
	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err != nil {
			return ActionErrorMsg{Err: fmt.Errorf("import failed: %w", err)}
		}
		sess, err := export.Import(raw, registry, fallback)
		if err != nil {
			return ActionErrorMsg{Err: fmt.Errorf("import failed: %w", err)}
		}
		return ImportedMsg{Session: sess}
	}
}

// exportDir is where share and markdown files land.
func (m *Model) exportDir() string {
	return filepath.Join(m.cfg.DataDir, "exports")
}

// shareJSONCmd writes the share envelope to disk and copies it to the
// clipboard. A clipboard failure is not fatal; the file write is.
func (m *Model) shareJSONCmd() tea.Cmd {
	snapshot := m.sessions.CurrentSnapshot()
	if snapshot == nil {
		return nil
	}
	dir := m.exportDir()
	return func() tea.Msg {
		raw, err := export.Share(snapshot, time.Now())
		if err != nil {
			return ActionErrorMsg{Err: fmt.Errorf("share failed: %w", err)}
		}
		path := filepath.Join(dir, export.Filename(snapshot.Name, ".json"))
		if err := util.AtomicWriteFile(path, raw, 0o600); err != nil {
			return ActionErrorMsg{Err: fmt.Errorf("share failed: %w", err)}
		}
		clipboard.WriteAll(string(raw))
		return FileWrittenMsg{Path: path}
	}
}

// exportMarkdownCmd writes the markdown transcript to disk.
func (m *Model) exportMarkdownCmd() tea.Cmd {
	snapshot := m.sessions.CurrentSnapshot()
	if snapshot == nil {
		return nil
	}
	registry := m.registry
	dir := m.exportDir()
	return func() tea.Msg {
		md := export.ToMarkdown(snapshot, registry, time.Now())
		path := filepath.Join(dir, export.Filename(snapshot.Name, ".md"))
		if err := util.AtomicWriteFile(path, []byte(md), 0o600); err != nil {
			return ActionErrorMsg{Err: fmt.Errorf("export failed: %w", err)}
		}
		return FileWrittenMsg{Path: path}
	}
}

// copyReplyCmd copies the last assistant message to the clipboard.
func (m *Model) copyReplyCmd() tea.Cmd {
	sess := m.sessions.CurrentSnapshot()
	if sess == nil {
		return nil
	}
	var content string
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		if sess.Messages[i].Role == model.RoleAssistant {
			content = sess.Messages[i].Content
			break
		}
	}
	if content == "" {
		return nil
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(content); err != nil {
			return ActionErrorMsg{Err: fmt.Errorf("copy failed: %w", err)}
		}
		return CopiedMsg{What: "reply"}
	}
}
