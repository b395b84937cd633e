// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal interface for divine-tui.
//
// This file defines the Bubble Tea message types used by the interface.
// All message types follow Bubble Tea conventions and are immutable.
package ui

import (
	"github.com/jeranaias/divine-tui/internal/dispatch"
	"github.com/jeranaias/divine-tui/internal/model"
)

// ResponseMsg delivers the terminal outcome of a dispatched request.
type ResponseMsg struct {
	Result dispatch.Result
}

// BubbleMsg shows a transient floating notice.
type BubbleMsg struct {
	Text string
}

// BubbleExpiredMsg hides the floating notice, matched by sequence number
// so a newer bubble is not cleared by the expiry of an older one.
type BubbleExpiredMsg struct {
	Seq int
}

// ImportedMsg delivers a successfully parsed chat import.
type ImportedMsg struct {
	Session *model.Session
}

// ActionErrorMsg reports a failed menu action (import, export, clipboard).
type ActionErrorMsg struct {
	Err error
}

// FileWrittenMsg reports a successful export.
type FileWrittenMsg struct {
	Path string
}

// CopiedMsg reports a successful clipboard copy.
type CopiedMsg struct {
	What string
}
