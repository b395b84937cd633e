// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal interface for divine-tui.
//
// This file defines the central Model: the session sidebar, the transcript
// viewport, the input field, and the modal overlays (model picker, memory
// editor, rename, delete confirmation, import, help).
package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/divine-tui/internal/config"
	"github.com/jeranaias/divine-tui/internal/dispatch"
	"github.com/jeranaias/divine-tui/internal/memory"
	"github.com/jeranaias/divine-tui/internal/profile"
	"github.com/jeranaias/divine-tui/internal/quota"
	"github.com/jeranaias/divine-tui/internal/session"
	"github.com/jeranaias/divine-tui/internal/store"
)

// mode selects what the keyboard is currently driving.
type mode int

const (
	modeChat mode = iota
	modePicker
	modeMemory
	modeRename
	modeConfirmDelete
	modeImport
	modeHelp
)

// sidebarWidth is the fixed column width of the session list.
const sidebarWidth = 24

// Model is the Bubble Tea model for the whole interface.
type Model struct {
	cfg      *config.Config
	theme    *Theme
	keys     KeyMap
	kv       *store.Store
	sessions *session.Store
	pipeline *dispatch.Pipeline
	registry *profile.Registry
	tracker  *quota.Tracker
	memory   *memory.Manager

	input    textinput.Model
	prompt   textinput.Model
	memEdit  textarea.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	mode   mode
	width  int
	height int
	ready  bool

	pickerIndex int

	// bubble is the transient floating notice; seq guards stale expiry.
	bubbleText string
	bubbleSeq  int

	// transient is the display-only outcome line for a stopped or failed
	// request, cleared on the next dispatch or session switch.
	transient string

	// downgradeShown suppresses a second downgrade notice when the
	// pre-flight gate already showed one for the in-flight request.
	downgradeShown bool
}

// Deps carries the collaborators the interface needs.
type Deps struct {
	Config   *config.Config
	KV       *store.Store
	Sessions *session.Store
	Pipeline *dispatch.Pipeline
	Registry *profile.Registry
	Tracker  *quota.Tracker
	Memory   *memory.Manager
}

// New builds the interface model.
func New(d Deps) *Model {
	theme := NewTheme(loadThemePreference(d.KV, d.Config))

	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.CharLimit = 0
	input.Focus()

	prompt := textinput.New()
	prompt.CharLimit = 0

	memEdit := textarea.New()
	memEdit.Placeholder = "Notes the assistant should always know..."
	memEdit.CharLimit = 0

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(Purple)

	m := &Model{
		cfg:      d.Config,
		theme:    theme,
		keys:     DefaultKeyMap(),
		kv:       d.KV,
		sessions: d.Sessions,
		pipeline: d.Pipeline,
		registry: d.Registry,
		tracker:  d.Tracker,
		memory:   d.Memory,
		input:    input,
		prompt:   prompt,
		memEdit:  memEdit,
		spin:     spin,
	}
	return m
}

// loadThemePreference resolves the dark-theme choice: stored preference
// first, then the config file, then terminal detection.
func loadThemePreference(kv *store.Store, cfg *config.Config) *bool {
	if raw, ok := kv.Get(store.KeyTheme); ok {
		dark := raw == "1"
		return &dark
	}
	return cfg.DarkTheme
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// rebuildRenderer recreates the markdown renderer for the current theme
// and transcript width.
func (m *Model) rebuildRenderer() {
	width := m.transcriptWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.theme.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// transcriptWidth is the inner width available to message content.
func (m *Model) transcriptWidth() int {
	w := m.width - sidebarWidth - 4
	if w < 20 {
		w = 20
	}
	return w
}

// markdown renders assistant content, falling back to the raw text when
// the renderer is unavailable.
func (m *Model) markdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

// toggleTheme flips dark mode, persists the choice, and rebuilds styles.
func (m *Model) toggleTheme() {
	dark := !m.theme.IsDark
	m.theme = NewTheme(&dark)
	if dark {
		m.kv.Set(store.KeyTheme, "1")
	} else {
		m.kv.Set(store.KeyTheme, "0")
	}
	m.rebuildRenderer()
}

// selectedProfile resolves the profile of the current session. The key is
// read through the session store so a downgrade landing on the worker
// goroutine is seen whole.
func (m *Model) selectedProfile() profile.Profile {
	return m.registry.Resolve(m.sessions.CurrentModelKey())
}

// inputLocked reports whether the daily limit shuts the input field: the
// default profile has no downgrade left, so typing is pointless until the
// day rolls over.
func (m *Model) inputLocked() bool {
	prof := m.selectedProfile()
	return prof.IsDefault() && m.tracker.Count() >= prof.DailyLimit
}
