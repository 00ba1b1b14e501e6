// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package operator provides the operator-side panel for the TUI.
//
// This file defines the Bubble Tea messages that carry session events and
// command results into the update loop, and the commands that produce them.
package operator

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopchat-tui/internal/session"
)

// sendTimeout bounds a single send, including any attachment upload.
const sendTimeout = 90 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// ConnectResultMsg reports the outcome of the initial connect.
type ConnectResultMsg struct {
	Err error
}

// SessionEventMsg wraps one session event for the update loop.
type SessionEventMsg struct {
	Event session.Event
}

// SessionClosedMsg signals that the session's event channel closed.
type SessionClosedMsg struct{}

// SendResultMsg reports the outcome of a send.
type SendResultMsg struct {
	Err error
}

// ExportDoneMsg reports the outcome of a conversation export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// =============================================================================
// COMMANDS
// =============================================================================

// ConnectCmd opens the operator socket and starts the roster poll.
func ConnectCmd(sess *session.OperatorSession) tea.Cmd {
	return func() tea.Msg {
		return ConnectResultMsg{Err: sess.Connect(context.Background())}
	}
}

// WaitForEvent blocks on the session event channel and delivers the next
// event. The update loop re-issues it after every delivery, so exactly one
// reader drains the channel.
func WaitForEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return SessionClosedMsg{}
		}
		return SessionEventMsg{Event: ev}
	}
}

// SendCmd sends body to the selected client, uploading any staged
// attachment first.
func SendCmd(sess *session.OperatorSession, body string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return SendResultMsg{Err: sess.Send(ctx, body)}
	}
}
