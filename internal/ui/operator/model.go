// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package operator provides the operator-side panel for the TUI.
package operator

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopchat-tui/internal/export"
	"github.com/jeranaias/shopchat-tui/internal/session"
	"github.com/jeranaias/shopchat-tui/internal/ui/components"
	"github.com/jeranaias/shopchat-tui/internal/ui/styles"
)

// rosterWidth is the fixed width of the client sidebar.
const rosterWidth = 24

// =============================================================================
// OPERATOR MODEL
// =============================================================================

// Model is the Bubble Tea model for the operator panel: a roster sidebar
// on the left and the selected conversation on the right. Conversation and
// roster state live in the session; the model only holds presentation state.
type Model struct {
	// Session
	session *session.OperatorSession

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// UI components
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	statusBar *components.StatusBar
	roster    *components.RosterList

	// Key bindings
	keys KeyMap

	// Presentation state
	connState components.ConnState
	note      string
	showHelp  bool

	// Export settings
	exportOpts *export.Options
}

// New creates an operator panel bound to sess. The caller owns the session
// and is expected to Close it after the program exits.
func New(sess *session.OperatorSession, theme *styles.Theme, exportOpts *export.Options) Model {
	input := textinput.New()
	input.Placeholder = "Reply to the selected client"
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.TextStyle = theme.InputText
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 4000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.InfoStyle

	if exportOpts == nil {
		exportOpts = export.DefaultOptions()
	}

	return Model{
		session:    sess,
		theme:      theme,
		input:      input,
		spinner:    spin,
		statusBar:  components.NewStatusBar(theme),
		roster:     components.NewRosterList(theme),
		keys:       DefaultKeyMap(),
		connState:  components.StateConnecting,
		exportOpts: exportOpts,
	}
}

// Init opens the socket and begins draining session events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		ConnectCmd(m.session),
		WaitForEvent(m.session.Events()),
	)
}

// Session exposes the underlying session, mainly for teardown by the caller.
func (m Model) Session() *session.OperatorSession {
	return m.session
}

// handleResize recomputes component sizes after a terminal resize.
// Layout: header (1) + [roster | viewport] + pending (1) + input (2) + status (1).
func (m *Model) handleResize(width, height int) {
	m.width = width
	m.height = height

	chrome := 5
	paneHeight := height - chrome
	if paneHeight < 3 {
		paneHeight = 3
	}
	chatWidth := width - rosterWidth - 1
	if chatWidth < 20 {
		chatWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(chatWidth, paneHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = paneHeight
	}
	m.roster.SetSize(rosterWidth, paneHeight)
	m.input.Width = width - 6

	m.refreshViewport(true)
}

// refreshViewport re-renders the selected conversation into the viewport.
func (m *Model) refreshViewport(gotoBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// selectOffset moves the selection through the roster by delta, wrapping.
func (m *Model) selectOffset(delta int) {
	entries := m.session.Roster().Entries()
	if len(entries) == 0 {
		return
	}

	selected, ok := m.session.Selected()
	idx := 0
	if ok {
		for i, e := range entries {
			if e.ID == selected {
				idx = (i + delta + len(entries)) % len(entries)
				break
			}
		}
	}
	m.session.SelectPeer(entries[idx].ID)
	m.refreshViewport(true)
}
