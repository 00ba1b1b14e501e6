// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/shopchat-tui/internal/model"
	"github.com/jeranaias/shopchat-tui/internal/roster"
	"github.com/jeranaias/shopchat-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("dark")
}

func TestMessageBubbleOwn(t *testing.T) {
	msg := model.NewOwnMessage("shopper-7", "hello there")
	b := NewMessageBubble(msg, testTheme())
	b.SetWidth(80)

	out := b.View()
	if !strings.Contains(out, "hello there") {
		t.Errorf("own bubble missing body: %q", out)
	}
	if !strings.Contains(out, "You") {
		t.Errorf("own bubble missing sender label: %q", out)
	}
}

func TestMessageBubblePeerUsesSender(t *testing.T) {
	msg := model.NewMessage(model.OriginOperator, model.KindPlain, "how can I help?")
	msg.Sender = "support-1"
	b := NewMessageBubble(msg, testTheme())
	b.SetWidth(80)

	out := b.View()
	if !strings.Contains(out, "support-1") {
		t.Errorf("peer bubble should label with sender, got %q", out)
	}
}

func TestMessageBubbleNotice(t *testing.T) {
	b := NewMessageBubble(model.NewNotice("Connected to support."), testTheme())
	b.SetWidth(80)

	out := b.View()
	if !strings.Contains(out, "Connected to support.") {
		t.Errorf("notice missing body: %q", out)
	}
}

func TestMessageBubblePromptNumbering(t *testing.T) {
	msg := model.NewPrompt(model.OriginBot, "Track my order")
	b := NewMessageBubble(msg, testTheme())
	b.SetWidth(80)
	b.PromptIndex = 2

	out := b.View()
	if !strings.Contains(out, "[2]") {
		t.Errorf("actionable prompt should be numbered, got %q", out)
	}
	if !strings.Contains(out, "Track my order") {
		t.Errorf("prompt missing body: %q", out)
	}
}

func TestMessageBubbleAttachmentLine(t *testing.T) {
	msg := model.NewOwnMessage("shopper-7", "here is the photo")
	msg.Kind = model.KindMedia
	msg.FileURL = "http://localhost:8000/media/photo.png"
	msg.MimeType = "image/png"

	b := NewMessageBubble(msg, testTheme())
	b.SetWidth(100)

	out := b.View()
	if !strings.Contains(out, "image/png") {
		t.Errorf("media bubble missing mime type: %q", out)
	}
	if !strings.Contains(out, "photo.png") {
		t.Errorf("media bubble missing file url: %q", out)
	}
}

func TestMessageBubbleNilMessage(t *testing.T) {
	b := NewMessageBubble(nil, testTheme())
	b.SetWidth(80)
	// Must not panic.
	_ = b.View()
}

func TestRosterListView(t *testing.T) {
	tr := roster.NewTracker()
	tr.Refresh([]string{"shopper-1", "shopper-2"})
	tr.Bump("shopper-2")
	tr.Bump("shopper-2")

	list := NewRosterList(testTheme())
	list.SetSize(24, 8)

	out := list.View(tr.Entries(), "shopper-1")
	if !strings.Contains(out, "shopper-1") || !strings.Contains(out, "shopper-2") {
		t.Fatalf("roster missing entries: %q", out)
	}
	if !strings.Contains(out, "2") {
		t.Errorf("roster missing unread badge: %q", out)
	}
	if !strings.Contains(out, "▸ shopper-1") {
		t.Errorf("roster missing selection marker: %q", out)
	}
}

func TestRosterListEmpty(t *testing.T) {
	list := NewRosterList(testTheme())
	list.SetSize(24, 5)

	out := list.View(nil, "")
	if !strings.Contains(out, "none yet") {
		t.Errorf("empty roster should show placeholder, got %q", out)
	}
}

func TestStatusBarStates(t *testing.T) {
	bar := NewStatusBar(testTheme())

	out := bar.Render(80, StateConnected, "support-1", "shopper-3", "")
	if !strings.Contains(out, "online") || !strings.Contains(out, "support-1") || !strings.Contains(out, "shopper-3") {
		t.Errorf("connected bar missing segments: %q", out)
	}

	out = bar.Render(80, StateDisconnected, "support-1", "", "reconnect to continue")
	if !strings.Contains(out, "offline") || !strings.Contains(out, "reconnect to continue") {
		t.Errorf("disconnected bar missing segments: %q", out)
	}
}
