// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the client-side chat panel for the TUI.
//
// This file implements the slash commands typed into the input line.
package chat

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopchat-tui/internal/export"
	"github.com/jeranaias/shopchat-tui/internal/store"
)

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
	case "/say":
		n, err := strconv.Atoi(arg)
		if err != nil {
			m.note = "usage: /say <number>"
			return m, nil
		}
		return m.activatePrompt(n)

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

// exportCmd writes the conversation to a file in the requested format.
// The thread is cloned here, on the update loop, before the command
// goroutine touches it.
func (m Model) exportCmd(format string) tea.Cmd {
	opts := m.exportOpts
	thread := m.session.Store().Thread(store.ImplicitThread).Clone()
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
