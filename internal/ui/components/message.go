// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the shopchat TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopchat-tui/internal/model"
	"github.com/jeranaias/shopchat-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders a single message as a styled bubble. Own messages
// hang right, peer and bot messages hang left, notices center.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	ShowTimestamp bool

	// PromptIndex numbers actionable prompts so they can be activated
	// with "/say <n>". Zero means the message is not numbered.
	PromptIndex int

	theme *styles.Theme
}

// NewMessageBubble creates a bubble for msg with sane defaults.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	if msg == nil {
		msg = model.NewNotice("")
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
	}
}

// SetWidth sets the total width the bubble may occupy.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	if b.Message.Kind == model.KindNotice {
		return b.renderNotice()
	}
	if b.Message.Own {
		return b.renderOwn()
	}
	switch b.Message.Origin {
	case model.OriginBot:
		return b.renderBot()
	default:
		return b.renderPeer()
	}
}

// ==========================================================================
// OWN BUBBLE - right-aligned feel
// ==========================================================================

func (b *MessageBubble) renderOwn() string {
	content := b.body()
	bubble := b.theme.OwnBubble.Width(b.contentWidth()).Render(content)

	meta := b.metaLine("You")
	block := lipgloss.JoinVertical(lipgloss.Right, meta, bubble)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
}

// ==========================================================================
// PEER BUBBLE - operator or client on the other end
// ==========================================================================

func (b *MessageBubble) renderPeer() string {
	content := b.body()
	bubble := b.theme.PeerBubble.Width(b.contentWidth()).Render(content)

	label := b.Message.Sender
	if label == "" {
		label = b.Message.Origin.DisplayName()
	}
	meta := b.metaLine(label)
	return lipgloss.JoinVertical(lipgloss.Left, meta, bubble)
}

// ==========================================================================
// BOT BUBBLE - greetings and actionable prompts
// ==========================================================================

func (b *MessageBubble) renderBot() string {
	content := b.body()
	if b.Message.IsActionable() && b.PromptIndex > 0 {
		num := b.theme.PromptNumber.Render(fmt.Sprintf("[%d]", b.PromptIndex))
		content = num + " " + b.theme.PromptBody.Render(b.Message.Body)
	}
	bubble := b.theme.BotBubble.Width(b.contentWidth()).Render(content)

	label := b.Message.Sender
	if label == "" {
		label = b.Message.Origin.DisplayName()
	}
	meta := b.metaLine(label)
	return lipgloss.JoinVertical(lipgloss.Left, meta, bubble)
}

// ==========================================================================
// NOTICE - out-of-band system line
// ==========================================================================

func (b *MessageBubble) renderNotice() string {
	bubble := b.theme.NoticeBubble.Render(b.Message.Body)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Center, bubble)
}

// ==========================================================================
// HELPERS
// ==========================================================================

// body assembles the message text plus any attachment line.
func (b *MessageBubble) body() string {
	var parts []string
	if strings.TrimSpace(b.Message.Body) != "" {
		parts = append(parts, b.Message.Body)
	}
	if b.Message.HasAttachment() {
		att := b.theme.Attachment.Render(fmt.Sprintf("[%s] %s", b.Message.MimeType, b.Message.FileURL))
		parts = append(parts, att)
	}
	if len(parts) == 0 {
		return "..."
	}
	return strings.Join(parts, "\n")
}

func (b *MessageBubble) metaLine(label string) string {
	meta := b.theme.SenderLabel.Render(label)
	if b.ShowTimestamp {
		meta += " " + b.theme.Timestamp.Render(b.Message.Timestamp.Format("15:04"))
	}
	return meta
}

// contentWidth bounds the bubble interior, accounting for borders, padding
// and the opposite-side margin.
func (b *MessageBubble) contentWidth() int {
	w := b.Width - 12
	if w < 20 {
		w = 20
	}
	return w
}
