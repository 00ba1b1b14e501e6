// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package operator

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopchat-tui/internal/export"
	"github.com/jeranaias/shopchat-tui/internal/session"
	"github.com/jeranaias/shopchat-tui/internal/ui/components"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update is the Bubble Tea update function for the operator panel.
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
		m.session.Apply(msg.Event)
		switch ev := msg.Event.(type) {
		case session.ConnectedEvent:
			m.connState = components.StateConnected
			m.note = ""
		case session.DisconnectedEvent:
			m.connState = components.StateDisconnected
		case session.RosterEvent:
			if ev.Err != nil {
				m.note = "roster: " + ev.Err.Error()
			}
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

	case key.Matches(msg, m.keys.NextClient):
		m.selectOffset(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevClient):
		m.selectOffset(-1)
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

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleCommand dispatches a "/command arg" line.
func (m Model) handleCommand(text string) (tea.Model, tea.Cmd) {
	parts := strings.SplitN(text, " ", 2)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/select":
		return m.selectClient(arg)

	case "/attach":
		if arg == "" {
			m.note = "usage: /attach <path>"
			return m, nil
		}
		if err := m.session.Attachments().Select(arg); err != nil {
			m.note = err.Error()
			return m, nil
		}
		m.note = "staged " + m.session.Attachments().Pending().Label()
		return m, nil

	case "/detach":
		m.session.Attachments().Cancel()
		m.note = "attachment dropped"
		return m, nil

	case "/export":
		format := arg
		if format == "" {
			format = "md"
		}
		return m, m.exportCmd(format)

	case "/help":
		m.showHelp = !m.showHelp
		return m, nil

	case "/quit":
		m.session.Close()
		return m, tea.Quit

	default:
		m.note = "unknown command: " + cmd
		return m, nil
	}
}

// selectClient switches to the client named by arg, which may be an id or
// a 1-based roster position.
func (m Model) selectClient(arg string) (tea.Model, tea.Cmd) {
	if arg == "" {
		m.note = "usage: /select <client|number>"
		return m, nil
	}

	entries := m.session.Roster().Entries()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(entries) {
			m.note = "no client #" + arg
			return m, nil
		}
		m.session.SelectPeer(entries[n-1].ID)
		m.refreshViewport(true)
		return m, nil
	}

	for _, e := range entries {
		if e.ID == arg {
			m.session.SelectPeer(e.ID)
			m.refreshViewport(true)
			return m, nil
		}
	}
	m.note = "unknown client: " + arg
	return m, nil
}

// exportCmd writes the selected conversation to a file. The thread is
// cloned here, on the update loop, before the command goroutine touches
// it.
func (m Model) exportCmd(format string) tea.Cmd {
	opts := m.exportOpts
	thread := m.session.Store().SelectedThread().Clone()
	return func() tea.Msg {
		var exporter export.Exporter
		switch format {
		case "json":
			exporter = export.NewJSONExporter()
		case "md", "markdown":
			exporter = export.NewMarkdownExporter(opts)
		default:
			return ExportDoneMsg{Err: export.ErrUnknownFormat}
		}

		path, err := export.ToFile(thread, exporter, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}
