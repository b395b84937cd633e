// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal interface for divine-tui.
//
// This file holds the visual styling system. All colors use Lip Gloss
// AdaptiveColor for automatic light/dark detection.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// COLORS
// =============================================================================

// Purple - primary accent, assistant messages, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - brand color, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - errors, delete confirmation
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - warnings, quota display near the limit
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Overlay - borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// TextPrimary - main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - hints, timestamps
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components for the interface.
type Theme struct {
	IsDark bool

	Sidebar             lipgloss.Style
	SidebarTitle        lipgloss.Style
	SessionItem         lipgloss.Style
	SessionItemSelected lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Transient      lipgloss.Style
	Thinking       lipgloss.Style

	InputContainer lipgloss.Style
	InputDisabled  lipgloss.Style
	StatusBar      lipgloss.Style
	QuotaOK        lipgloss.Style
	QuotaWarn      lipgloss.Style
	Bubble         lipgloss.Style
	ErrorText      lipgloss.Style

	PickerBox      lipgloss.Style
	PickerItem     lipgloss.Style
	PickerSelected lipgloss.Style
	PromptLabel    lipgloss.Style
	HelpKey        lipgloss.Style
	HelpDesc       lipgloss.Style
}

// NewTheme creates a theme. dark overrides terminal background detection
// when non-nil.
func NewTheme(dark *bool) *Theme {
	isDark := termenv.HasDarkBackground()
	if dark != nil {
		isDark = *dark
	}

	t := &Theme{IsDark: isDark}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SessionItemSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Transient = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Thinking = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.QuotaOK = lipgloss.NewStyle().
		Foreground(Emerald)

	t.QuotaWarn = lipgloss.NewStyle().
		Foreground(Amber)

	t.Bubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.PickerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.PickerItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.PickerSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.PromptLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// GlamourStyle returns the glamour style name matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
