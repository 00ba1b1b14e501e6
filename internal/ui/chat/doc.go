// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the client-side chat panel for the shopchat TUI.

The panel is a Bubble Tea model wrapped around a session.ClientSession.
Conversation state lives entirely in the session; the panel drains the
session's event channel with a self-re-issuing command, feeds each event
through Apply, and re-renders.

# File Organization

model.go    - Model struct, constructor, resize handling
update.go   - Update loop, keyboard routing, submission
commands.go - Slash commands (/say, /attach, /detach, /export, /quit)
view.go     - Rendering (header, viewport, input, status bar, help)
keys.go     - Key bindings and help text
messages.go - Bubble Tea messages and the commands that produce them
*/
package chat
