// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal interface for divine-tui.
//
// This file is the Update loop. Key handling branches on the active mode;
// async outcomes arrive as messages from commands.go.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/divine-tui/internal/dispatch"
)

// quotaBlockedText mirrors the hard-block notice shown when the default
// profile's daily limit is reached.
const quotaBlockedText = "Daily message limit reached. Try again tomorrow!"

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildRenderer()
		m.layoutViewport()
		m.refreshTranscript()
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		if !m.pipeline.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.refreshTranscript()
		return m, cmd

	case ResponseMsg:
		return m.handleResponse(msg.Result)

	case BubbleMsg:
		return m, m.showBubble(msg.Text)

	case BubbleExpiredMsg:
		if msg.Seq == m.bubbleSeq {
			m.bubbleText = ""
		}
		return m, nil

	case ImportedMsg:
		m.sessions.Insert(msg.Session)
		m.transient = ""
		m.refreshTranscript()
		return m, m.showBubble("Chat imported.")

	case ActionErrorMsg:
		return m, m.showBubble(msg.Err.Error())

	case FileWrittenMsg:
		return m, m.showBubble("Saved " + msg.Path)

	case CopiedMsg:
		return m, m.showBubble("Copied " + msg.What + " to clipboard.")

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// layoutViewport sizes the transcript viewport to the current window.
func (m *Model) layoutViewport() {
	height := m.height - 6 // status, input box, padding
	if height < 3 {
		height = 3
	}
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.transcriptWidth(), height)
	} else {
		m.viewport.Width = m.transcriptWidth()
		m.viewport.Height = height
	}
}

// handleResponse applies a request outcome.
func (m *Model) handleResponse(res dispatch.Result) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if res.Downgraded && !m.downgradeShown {
		cmds = append(cmds, m.showBubble(dispatch.DowngradeNotice))
	}
	m.downgradeShown = false

	if !res.Discarded && res.SessionID == m.sessions.CurrentID() {
		switch res.Kind {
		case dispatch.ResultCompleted:
			m.transient = ""
		case dispatch.ResultCancelled, dispatch.ResultFailed:
			m.transient = res.Text
		}
		m.refreshTranscript()
	}
	return m, tea.Batch(cmds...)
}

// handleKey routes a key press to the active mode.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.mode {
	case modePicker:
		return m.updatePicker(msg)
	case modeMemory:
		return m.updateMemory(msg)
	case modeRename:
		return m.updateRename(msg)
	case modeConfirmDelete:
		return m.updateConfirmDelete(msg)
	case modeImport:
		return m.updateImport(msg)
	case modeHelp:
		m.mode = modeChat
		return m, nil
	}
	return m.updateChat(msg)
}

// =============================================================================
// CHAT MODE
// =============================================================================

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys

	switch {
	case key.Matches(msg, keys.Submit):
		return m.submit()

	case key.Matches(msg, keys.Stop):
		m.pipeline.Stop()
		return m, nil

	case key.Matches(msg, keys.NewChat):
		m.sessions.Create(m.sessions.SelectedProfile())
		m.transient = ""
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, keys.NextChat):
		m.cycleSession(1)
		return m, nil

	case key.Matches(msg, keys.PrevChat):
		m.cycleSession(-1)
		return m, nil

	case key.Matches(msg, keys.Regenerate):
		return m.regenerate()

	case key.Matches(msg, keys.Rename):
		sess := m.sessions.CurrentSnapshot()
		if sess == nil {
			return m, nil
		}
		m.prompt.Placeholder = "Chat name"
		m.prompt.SetValue(sess.Name)
		m.prompt.CursorEnd()
		m.prompt.Focus()
		m.mode = modeRename
		return m, nil

	case key.Matches(msg, keys.DeleteChat):
		m.mode = modeConfirmDelete
		return m, nil

	case key.Matches(msg, keys.ModelPicker):
		m.pickerIndex = 0
		selected := m.sessions.SelectedProfile().Key
		for i, k := range m.registry.Keys() {
			if k == selected {
				m.pickerIndex = i
				break
			}
		}
		m.mode = modePicker
		return m, nil

	case key.Matches(msg, keys.Memory):
		m.memEdit.SetValue(m.memory.Load())
		m.memEdit.Focus()
		m.mode = modeMemory
		return m, nil

	case key.Matches(msg, keys.ExportMD):
		return m, m.exportMarkdownCmd()

	case key.Matches(msg, keys.ShareJSON):
		return m, m.shareJSONCmd()

	case key.Matches(msg, keys.Import):
		m.prompt.Placeholder = "Path to chat JSON file"
		m.prompt.SetValue("")
		m.prompt.Focus()
		m.mode = modeImport
		return m, nil

	case key.Matches(msg, keys.CopyReply):
		return m, m.copyReplyCmd()

	case key.Matches(msg, keys.Theme):
		m.toggleTheme()
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, keys.Help):
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, keys.ScrollUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, keys.ScrollDown):
		m.viewport.ViewDown()
		return m, nil
	}

	if m.inputLocked() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit dispatches the input field content.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	req, err := m.pipeline.Begin(m.sessions.CurrentID(), text)
	switch {
	case err == nil:
	case err == dispatch.ErrQuotaExhausted:
		return m, m.showBubble(quotaBlockedText)
	case err == dispatch.ErrBusy:
		return m, nil
	default:
		return m, m.showBubble(err.Error())
	}

	m.input.SetValue("")
	m.transient = ""
	m.refreshTranscript()

	cmds := []tea.Cmd{dispatchCmd(req), m.spin.Tick}
	if req.Downgraded {
		m.downgradeShown = true
		cmds = append(cmds, m.showBubble(dispatch.DowngradeNotice))
	}
	return m, tea.Batch(cmds...)
}

// regenerate re-dispatches the current session's history.
func (m *Model) regenerate() (tea.Model, tea.Cmd) {
	req, err := m.pipeline.BeginRegenerate(m.sessions.CurrentID())
	switch {
	case err == nil:
	case err == dispatch.ErrQuotaExhausted:
		return m, m.showBubble(quotaBlockedText)
	case err == dispatch.ErrBusy, err == dispatch.ErrNothingToRegenerate:
		return m, nil
	default:
		return m, m.showBubble(err.Error())
	}

	m.transient = ""
	m.refreshTranscript()

	cmds := []tea.Cmd{dispatchCmd(req), m.spin.Tick}
	if req.Downgraded {
		m.downgradeShown = true
		cmds = append(cmds, m.showBubble(dispatch.DowngradeNotice))
	}
	return m, tea.Batch(cmds...)
}

// cycleSession moves the selection through the sidebar list.
func (m *Model) cycleSession(delta int) {
	list := m.sessions.List()
	if len(list) < 2 {
		return
	}
	current := m.sessions.CurrentID()
	for i, sess := range list {
		if sess.ID == current {
			next := (i + delta + len(list)) % len(list)
			m.sessions.Select(list[next].ID)
			m.transient = ""
			m.refreshTranscript()
			return
		}
	}
}

// =============================================================================
// OVERLAY MODES
// =============================================================================

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.registry.Keys()
	switch msg.String() {
	case "up", "k":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case "down", "j":
		if m.pickerIndex < len(keys)-1 {
			m.pickerIndex++
		}
	case "enter":
		choice := m.registry.Resolve(keys[m.pickerIndex])
		m.sessions.SetSelectedKey(choice.Key)
		m.mode = modeChat
		return m, m.showBubble("New chats will use " + choice.DisplayName + ".")
	case "esc":
		m.mode = modeChat
	}
	return m, nil
}

func (m *Model) updateMemory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.memEdit.Blur()
		m.mode = modeChat
		if err := m.memory.Save(m.memEdit.Value()); err != nil {
			return m, m.showBubble("Memory save failed: " + err.Error())
		}
		return m, m.showBubble("Memory saved.")
	case "ctrl+x":
		m.memEdit.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.memEdit, cmd = m.memEdit.Update(msg)
	return m, cmd
}

func (m *Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.sessions.Rename(m.sessions.CurrentID(), m.prompt.Value())
		m.prompt.Blur()
		m.mode = modeChat
		return m, nil
	case "esc":
		m.prompt.Blur()
		m.mode = modeChat
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "y" {
		m.sessions.Delete(m.sessions.CurrentID())
		m.transient = ""
		m.refreshTranscript()
	}
	m.mode = modeChat
	return m, nil
}

func (m *Model) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(m.prompt.Value())
		m.prompt.Blur()
		m.mode = modeChat
		if path == "" {
			return m, nil
		}
		return m, m.importCmd(path)
	case "esc":
		m.prompt.Blur()
		m.mode = modeChat
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}
