// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package operator provides the operator-side panel for the TUI.
//
// This file defines keyboard bindings. The text input keeps focus, so
// every shortcut uses a modifier or a key the input does not consume.
package operator

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the operator panel.
type KeyMap struct {
	PageUp     key.Binding
	PageDown   key.Binding
	Home       key.Binding
	End        key.Binding
	Submit     key.Binding
	NextClient key.Binding
	PrevClient key.Binding
	Export     key.Binding
	Help       key.Binding
	Detach     key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings for the operator panel.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("Home", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "go to bottom"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		NextClient: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next client"),
		),
		PrevClient: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous client"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "export conversation"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "toggle help"),
		),
		Detach: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "drop pending attachment"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c/C-q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar hint.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextClient, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.PageUp, k.PageDown, k.Home, k.End},
		// Clients
		{k.NextClient, k.PrevClient},
		// Actions
		{k.Submit, k.Export, k.Detach},
		// Meta
		{k.Help, k.Quit},
	}
}
