// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopchat-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// ConnState is the connection state shown in the left segment of the bar.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateConnected
	StateDisconnected
)

// String returns the display string for the state.
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "online"
	case StateDisconnected:
		return "offline"
	default:
		return "unknown"
	}
}

// StatusBar renders the single-line bar at the bottom of the screen:
// connection state, identity, active peer, and a transient note.
type StatusBar struct {
	theme *styles.Theme
}

// NewStatusBar creates a status bar bound to theme.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme}
}

// Render draws the bar at the given width.
func (s *StatusBar) Render(width int, state ConnState, identity, peer, note string) string {
	var stateStr string
	switch state {
	case StateConnected:
		stateStr = s.theme.StatusOnline.Render("● " + state.String())
	case StateConnecting:
		stateStr = s.theme.StatusConnecting.Render("◌ " + state.String())
	default:
		stateStr = s.theme.StatusOffline.Render("✗ " + state.String())
	}

	segments := []string{stateStr}
	if identity != "" {
		segments = append(segments, identity)
	}
	if peer != "" {
		segments = append(segments, "→ "+peer)
	}
	left := strings.Join(segments, "  │  ")

	right := ""
	if note != "" {
		right = s.theme.StatusNote.Render(note)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return s.theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
