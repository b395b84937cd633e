// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// A Session is one persisted conversation: an ordered message list plus
// metadata (name, active model profile). The first message of every session
// is a system message carrying the active profile's instruction text; it is
// inserted at creation and never removed by normal operation. User and
// assistant turns are append-only; the only deletions are replacing a
// trailing assistant message during regenerate, or discarding the whole
// session.
package model
