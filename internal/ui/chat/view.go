// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the client-side chat panel for the TUI.
//
// This file contains all rendering logic for the panel: header, message
// viewport, pending attachment line, input area, status bar, and the help
// overlay.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopchat-tui/internal/model"
	"github.com/jeranaias/shopchat-tui/internal/store"
	"github.com/jeranaias/shopchat-tui/internal/ui/components"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat panel.
// Layout: header (1) + messages (viewport) + pending (1) + input (2) + status (1).
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	header := m.renderHeader()
	pending := m.renderPendingLine()
	input := m.renderInput()

	note := m.note
	if m.connState == components.StateConnecting && note == "" {
		note = m.spinner.View() + " connecting"
	}
	status := m.statusBar.Render(m.width, m.connState, m.session.Identity(), m.session.Peer(), note)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		pending,
		input,
		status,
	)
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("shopchat")
	sub := m.theme.HeaderSubtitle.Render("support")
	return m.theme.Header.Width(m.width).Render(title + " · " + sub)
}

// renderMessages renders the whole conversation, numbering actionable
// prompts as it goes so "/say <n>" lines up with what is on screen.
func (m Model) renderMessages() string {
	thread := m.session.Store().Thread(store.ImplicitThread)
	if thread == nil || thread.IsEmpty() {
		return m.theme.InputPlaceholder.Render("No messages yet. Say hello!")
	}

	var blocks []string
	promptNum := 0
	for _, msg := range thread.History() {
		bubble := components.NewMessageBubble(msg, m.theme)
		bubble.SetWidth(m.width)
		if msg.Kind == model.KindPrompt && msg.IsActionable() {
			promptNum++
			bubble.PromptIndex = promptNum
		}
		blocks = append(blocks, bubble.View())
	}
	return strings.Join(blocks, "\n")
}

func (m Model) renderPendingLine() string {
	p := m.session.Attachments().Pending()
	if p == nil {
		return ""
	}
	return m.theme.PendingFile.Render(" attach: " + p.Label() + "  (Esc to drop)")
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelpOverlay() string {
	var b strings.Builder
	b.WriteString(m.theme.HelpTitle.Render("Keys") + "\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(m.theme.HelpKey.Render(padKey(h.Key)) + "  " + m.theme.HelpDesc.Render(h.Desc) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.theme.HelpTitle.Render("Commands") + "\n\n")
	for _, line := range []struct{ cmd, desc string }{
		{"/say <n>", "activate numbered prompt"},
		{"/attach <path>", "stage a file to send"},
		{"/detach", "drop the staged file"},
		{"/export [md|json]", "export conversation"},
		{"/quit", "leave the chat"},
	} {
		b.WriteString(m.theme.HelpKey.Render(padKey(line.cmd)) + "  " + m.theme.HelpDesc.Render(line.desc) + "\n")
	}

	box := m.theme.HelpBox.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func padKey(k string) string {
	const w = 18
	if len(k) >= w {
		return k
	}
	return k + strings.Repeat(" ", w-len(k))
}
