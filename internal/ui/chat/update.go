// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopchat-tui/internal/session"
	"github.com/jeranaias/shopchat-tui/internal/store"
	"github.com/jeranaias/shopchat-tui/internal/ui/components"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update is the Bubble Tea update function for the chat panel.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ConnectResultMsg:
		if msg.Err != nil {
			m.connState = components.StateDisconnected
			m.note = msg.Err.Error()
		}
		return m, nil

	case SessionEventMsg:
		// All state mutation happens inside Apply; the panel only mirrors
		// the result and keeps the drain loop going.
		m.session.Apply(msg.Event)
		switch msg.Event.(type) {
		case session.ConnectedEvent:
			m.connState = components.StateConnected
			m.note = ""
		case session.DisconnectedEvent:
			m.connState = components.StateDisconnected
		}
		m.refreshViewport(true)
		return m, WaitForEvent(m.session.Events())

	case SessionClosedMsg:
		return m, tea.Quit

	case SendResultMsg:
		if msg.Err != nil {
			m.note = msg.Err.Error()
		} else {
			m.note = ""
		}
		m.refreshViewport(true)
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.note = "export failed: " + msg.Err.Error()
		} else {
			m.note = "exported to " + msg.Path
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey routes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.session.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd("md")

	case key.Matches(msg, m.keys.Detach):
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.session.Attachments().Pending() != nil {
			m.session.Attachments().Cancel()
			m.note = "attachment dropped"
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit sends the input line, routing slash commands first.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if text == "" && m.session.Attachments().Pending() == nil {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		return m.handleCommand(text)
	}

	return m, SendCmd(m.session, text)
}

// activatePrompt re-sends the echo text of the numbered prompt, as if the
// user had typed it.
func (m Model) activatePrompt(n int) (tea.Model, tea.Cmd) {
	thread := m.session.Store().Thread(store.ImplicitThread)
	prompts := thread.Prompts()
	if n < 1 || n > len(prompts) {
		m.note = fmt.Sprintf("no prompt #%d", n)
		return m, nil
	}
	return m, SendCmd(m.session, prompts[n-1].Echo)
}
