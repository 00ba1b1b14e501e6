// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package operator provides the operator-side panel for the shopchat TUI.

The panel is a Bubble Tea model wrapped around a session.OperatorSession.
It renders a client roster sidebar next to the selected conversation.
Roster and conversation state live in the session; the panel drains the
session's event channel with a self-re-issuing command, feeds each event
through Apply, and re-renders.

Tab and Shift+Tab cycle through clients; "/select <client|n>" jumps
directly. Switching to a client clears its unread count.
*/
package operator
