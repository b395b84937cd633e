// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal interface for divine-tui.
//
// This file defines the keyboard bindings. Plain letters stay free for the
// input field; every action rides a control key.
package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard bindings for the interface.
type KeyMap struct {
	Submit      key.Binding
	Stop        key.Binding
	Quit        key.Binding
	NewChat     key.Binding
	NextChat    key.Binding
	PrevChat    key.Binding
	Regenerate  key.Binding
	Rename      key.Binding
	DeleteChat  key.Binding
	ModelPicker key.Binding
	Memory      key.Binding
	ExportMD    key.Binding
	ShareJSON   key.Binding
	Import      key.Binding
	CopyReply   key.Binding
	Theme       key.Binding
	Help        key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Stop: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "stop response"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		NextChat: key.NewBinding(
			key.WithKeys("ctrl+down"),
			key.WithHelp("C-down", "next chat"),
		),
		PrevChat: key.NewBinding(
			key.WithKeys("ctrl+up"),
			key.WithHelp("C-up", "previous chat"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "regenerate"),
		),
		Rename: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "rename chat"),
		),
		DeleteChat: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "delete chat"),
		),
		ModelPicker: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "pick model"),
		),
		Memory: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "edit memory"),
		),
		ExportMD: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "export markdown"),
		),
		ShareJSON: key.NewBinding(
			key.WithKeys("ctrl+j"),
			key.WithHelp("C-j", "share JSON"),
		),
		Import: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "import chat"),
		),
		CopyReply: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy last reply"),
		),
		Theme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "toggle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("C-h", "toggle help"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
	}
}

// ShortHelp returns the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Stop, k.NewChat, k.ModelPicker, k.Help, k.Quit}
}

// FullHelp returns all bindings, grouped for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Stop, k.Regenerate, k.CopyReply},
		{k.NewChat, k.NextChat, k.PrevChat, k.Rename, k.DeleteChat},
		{k.ModelPicker, k.Memory, k.Theme},
		{k.ExportMD, k.ShareJSON, k.Import},
		{k.ScrollUp, k.ScrollDown, k.Help, k.Quit},
	}
}
