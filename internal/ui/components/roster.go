// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/shopchat-tui/internal/roster"
	"github.com/jeranaias/shopchat-tui/internal/ui/styles"
	"github.com/jeranaias/shopchat-tui/internal/util"
)

// =============================================================================
// ROSTER LIST COMPONENT
// =============================================================================

// RosterList renders the operator's client sidebar: one line per client
// with an online dot, the client id, and an unread badge.
type RosterList struct {
	Width  int
	Height int

	theme *styles.Theme
}

// NewRosterList creates a roster list bound to theme.
func NewRosterList(theme *styles.Theme) *RosterList {
	return &RosterList{
		Width:  24,
		Height: 10,
		theme:  theme,
	}
}

// SetSize sets the pane dimensions.
func (r *RosterList) SetSize(width, height int) {
	r.Width = width
	r.Height = height
}

// View renders the sidebar. selected is the id of the active conversation.
func (r *RosterList) View(entries []*roster.Entry, selected string) string {
	inner := r.Width - 3
	if inner < 8 {
		inner = 8
	}

	lines := []string{r.theme.RosterTitle.Render("Clients")}
	if len(entries) == 0 {
		lines = append(lines, r.theme.RosterOffline.Render("(none yet)"))
	}

	for _, e := range entries {
		dot := r.theme.RosterOffline.Render("○")
		if e.Online {
			dot = r.theme.RosterOnline.Render("●")
		}

		badge := ""
		if e.Unread > 0 {
			badge = " " + r.theme.UnreadBadge.Render(fmt.Sprintf("%d", e.Unread))
		}

		name := util.TruncateWidth(e.ID, inner-4)
		line := dot + " " + name + badge
		if e.ID == selected {
			line = r.theme.RosterItemSelected.Render("▸ " + e.ID)
			if badge != "" {
				line += badge
			}
		} else {
			line = r.theme.RosterItem.Render(line)
		}
		lines = append(lines, line)
	}

	// Pad to the pane height so the border reaches the status bar.
	for len(lines) < r.Height {
		lines = append(lines, "")
	}
	if len(lines) > r.Height {
		lines = lines[:r.Height]
	}

	return r.theme.RosterPane.Width(r.Width).Render(strings.Join(lines, "\n"))
}
