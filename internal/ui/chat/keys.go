// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the client-side chat panel for the TUI.
//
// This file defines keyboard bindings and shortcuts for the chat panel.
// Because the text input keeps focus the whole time, every shortcut uses
// a modifier or a key the input does not consume.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat panel.
type KeyMap struct {
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Submit   key.Binding
	Export   key.Binding
	Help     key.Binding
	Detach   key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat panel.
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
	return []key.Binding{k.Submit, k.Export, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.PageUp, k.PageDown, k.Home, k.End},
		// Actions
		{k.Submit, k.Export, k.Detach},
		// Meta
		{k.Help, k.Quit},
	}
}
