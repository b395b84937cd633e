// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal interface for divine-tui.
//
// This file renders the interface: sidebar, transcript, input area,
// status line, and the modal overlays.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/divine-tui/internal/model"
	"github.com/jeranaias/divine-tui/internal/util"
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.mode {
	case modePicker:
		return m.centered(m.pickerView())
	case modeMemory:
		return m.centered(m.memoryView())
	case modeHelp:
		return m.centered(m.helpView())
	}

	sidebar := m.renderSidebar()
	main := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		m.renderInputArea(),
		m.renderStatus(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

// centered places an overlay in the middle of the window.
func (m *Model) centered(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m *Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Divine AI"))
	b.WriteString("\n\n")

	current := m.sessions.CurrentID()
	for _, sess := range m.sessions.List() {
		name := util.TruncateWidth(sess.Name, sidebarWidth-3)
		if sess.ID == current {
			b.WriteString(m.theme.SessionItemSelected.Render("> " + name))
		} else {
			b.WriteString(m.theme.SessionItem.Render("  " + name))
		}
		b.WriteString("\n")
	}

	height := m.height - 1
	if height < 3 {
		height = 3
	}
	return m.theme.Sidebar.Width(sidebarWidth).Height(height).Render(b.String())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the conversation into the viewport and
// follows the tail.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) renderTranscript() string {
	// Rendered from a snapshot: a response landing on the worker goroutine
	// must not grow the message slice mid-iteration.
	sess := m.sessions.CurrentSnapshot()
	if sess == nil {
		return ""
	}

	var b strings.Builder
	for _, msg := range sess.Messages {
		switch msg.Role {
		case model.RoleSystem:
			continue
		case model.RoleUser:
			b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()+":") + "\n")
			b.WriteString(msg.Content + "\n\n")
		default:
			b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()+":") + "\n")
			b.WriteString(strings.TrimRight(m.markdown(msg.Content), "\n") + "\n\n")
		}
	}

	if m.pipeline.Pending() {
		b.WriteString(m.theme.AssistantLabel.Render("AI:") + "\n")
		b.WriteString(m.spin.View() + m.theme.Thinking.Render("Thinking...") + "\n")
	} else if m.transient != "" {
		b.WriteString(m.theme.AssistantLabel.Render("AI:") + "\n")
		b.WriteString(m.theme.Transient.Render(m.transient) + "\n")
	}
	return b.String()
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m *Model) renderInputArea() string {
	width := m.transcriptWidth()

	switch m.mode {
	case modeRename:
		label := m.theme.PromptLabel.Render("Rename: ")
		return m.theme.InputContainer.Width(width).Render(label + m.prompt.View())
	case modeImport:
		label := m.theme.PromptLabel.Render("Import: ")
		return m.theme.InputContainer.Width(width).Render(label + m.prompt.View())
	case modeConfirmDelete:
		warning := m.theme.ErrorText.Render("Delete this chat? (y/n)")
		return m.theme.InputContainer.Width(width).Render(warning)
	}
	if m.inputLocked() {
		return m.theme.InputContainer.Width(width).Render(m.theme.InputDisabled.Render(quotaBlockedText))
	}
	return m.theme.InputContainer.Width(width).Render(m.input.View())
}

func (m *Model) renderStatus() string {
	if m.bubbleText != "" {
		return m.theme.Bubble.Render(m.bubbleText)
	}

	prof := m.selectedProfile()
	count := m.tracker.Count()
	quotaStyle := m.theme.QuotaOK
	quotaLine := fmt.Sprintf("Daily messages: %d / %d", count, prof.DailyLimit)
	if count >= prof.DailyLimit {
		quotaStyle = m.theme.QuotaWarn
		quotaLine += " (limit reached)"
	}
	quotaText := quotaStyle.Render(quotaLine)
	modelText := m.theme.StatusBar.Render(prof.DisplayName)

	var help []string
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		help = append(help, m.theme.HelpKey.Render(h.Key)+" "+m.theme.HelpDesc.Render(h.Desc))
	}

	return m.theme.StatusBar.Render(modelText + "  " + quotaText + "  " + strings.Join(help, "  "))
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m *Model) pickerView() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Model for new chats"))
	b.WriteString("\n\n")

	for i, key := range m.registry.Keys() {
		prof := m.registry.Resolve(key)
		line := fmt.Sprintf("%s  (%d messages/day)", prof.DisplayName, prof.DailyLimit)
		if i == m.pickerIndex {
			b.WriteString(m.theme.PickerSelected.Render("> " + line))
		} else {
			b.WriteString(m.theme.PickerItem.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.HelpDesc.Render("enter select · esc cancel"))
	return m.theme.PickerBox.Render(b.String())
}

func (m *Model) memoryView() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Long-term memory"))
	b.WriteString("\n\n")
	b.WriteString(m.memEdit.View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.HelpDesc.Render("esc save & close · ctrl+x clear"))
	return m.theme.PickerBox.Render(b.String())
}

func (m *Model) helpView() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Keyboard shortcuts"))
	b.WriteString("\n\n")

	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(m.theme.HelpKey.Render(padRight(h.Key, 10)))
			b.WriteString(m.theme.HelpDesc.Render(h.Desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.theme.HelpDesc.Render("press any key to close"))
	return m.theme.PickerBox.Render(b.String())
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
