// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds every lip gloss style used by the TUI, configured once at
// startup from the detected terminal capabilities.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	OwnBubble    lipgloss.Style
	PeerBubble   lipgloss.Style
	BotBubble    lipgloss.Style
	NoticeBubble lipgloss.Style

	SenderLabel  lipgloss.Style
	Timestamp    lipgloss.Style
	Attachment   lipgloss.Style
	PromptNumber lipgloss.Style
	PromptBody   lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	PendingFile      lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar        lipgloss.Style
	StatusOnline     lipgloss.Style
	StatusOffline    lipgloss.Style
	StatusConnecting lipgloss.Style
	StatusNote       lipgloss.Style

	// ==========================================================================
	// ROSTER STYLES
	// ==========================================================================

	RosterPane         lipgloss.Style
	RosterTitle        lipgloss.Style
	RosterItem         lipgloss.Style
	RosterItemSelected lipgloss.Style
	RosterOnline       lipgloss.Style
	RosterOffline      lipgloss.Style
	UnreadBadge        lipgloss.Style

	// ==========================================================================
	// HELP OVERLAY STYLES
	// ==========================================================================

	HelpBox   lipgloss.Style
	HelpTitle lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style

	// ==========================================================================
	// STATUS INDICATOR STYLES
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a theme from the detected terminal capabilities.
// Preference may be "dark", "light", or "auto"; anything else falls back
// to auto-detection.
func NewTheme(preference string) *Theme {
	colorProfile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()
	switch preference {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Message bubbles
	t.OwnBubble = lipgloss.NewStyle().
		Foreground(OwnBubbleFg).
		Background(OwnBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OwnBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.PeerBubble = lipgloss.NewStyle().
		Foreground(PeerBubbleFg).
		Background(PeerBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(PeerBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.BotBubble = lipgloss.NewStyle().
		Foreground(BotBubbleFg).
		Background(BotBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(BotBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.NoticeBubble = lipgloss.NewStyle().
		Foreground(NoticeFg).
		Background(NoticeBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(NoticeBorder).
		Padding(0, 2).
		Align(lipgloss.Center)

	t.SenderLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Attachment = lipgloss.NewStyle().
		Foreground(Indigo).
		Underline(true)

	t.PromptNumber = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.PromptBody = lipgloss.NewStyle().
		Foreground(BotBubbleFg)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.PendingFile = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusOnline = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StatusOffline = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.StatusConnecting = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.StatusNote = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Roster
	t.RosterPane = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.RosterTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.RosterItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.RosterItemSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Bold(true)

	t.RosterOnline = lipgloss.NewStyle().
		Foreground(Emerald)

	t.RosterOffline = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UnreadBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 1)

	// Help overlay
	t.HelpBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Teal).
		Padding(1, 2)

	t.HelpTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Status indicators
	t.SuccessStyle = lipgloss.NewStyle().Foreground(Emerald)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(Amber)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Teal)
}
