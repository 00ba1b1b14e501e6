// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the client-side chat panel for the TUI.
package chat

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

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the client chat panel. All conversation
// state lives in the session; the model only holds presentation state.
type Model struct {
	// Session
	session *session.ClientSession

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

	// Key bindings
	keys KeyMap

	// Presentation state
	connState components.ConnState
	note      string
	showHelp  bool

	// Export settings
	exportOpts *export.Options
}

// New creates a chat panel bound to sess. The caller owns the session and
// is expected to Close it after the program exits.
func New(sess *session.ClientSession, theme *styles.Theme, exportOpts *export.Options) Model {
	input := textinput.New()
	input.Placeholder = "Type a message, or /help for commands"
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
		keys:       DefaultKeyMap(),
		connState:  components.StateConnecting,
		exportOpts: exportOpts,
	}
}

// Init starts the connect and begins draining session events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		ConnectCmd(m.session),
		WaitForEvent(m.session.Events()),
	)
}

// Session exposes the underlying session, mainly for teardown by the caller.
func (m Model) Session() *session.ClientSession {
	return m.session
}

// handleResize recomputes component sizes after a terminal resize.
// Layout: header (1) + viewport + pending line (1) + input (2) + status (1).
func (m *Model) handleResize(width, height int) {
	m.width = width
	m.height = height

	chrome := 5
	vpHeight := height - chrome
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 6

	m.refreshViewport(true)
}

// refreshViewport re-renders the conversation into the viewport.
func (m *Model) refreshViewport(gotoBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}
