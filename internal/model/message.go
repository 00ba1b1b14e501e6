// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat threads and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// =============================================================================
// ORIGIN TYPE
// =============================================================================

// Origin identifies who produced a message.
type Origin string

const (
	OriginClient   Origin = "client"
	OriginOperator Origin = "operator"
	OriginBot      Origin = "bot"
	OriginSystem   Origin = "system"
)

// String returns the string representation of the origin.
func (o Origin) String() string {
	return string(o)
}

// DisplayName returns a human-readable name for the origin.
func (o Origin) DisplayName() string {
	switch o {
	case OriginClient:
		return "Client"
	case OriginOperator:
		return "Operator"
	case OriginBot:
		return "Bot"
	case OriginSystem:
		return "System"
	default:
		return string(o)
	}
}

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind classifies how a message is rendered and what it can do.
type Kind string

const (
	// KindPlain is an ordinary text message.
	KindPlain Kind = "plain"

	// KindPrompt is an actionable prompt: activating it re-sends its own
	// text as a new outgoing message.
	KindPrompt Kind = "prompt"

	// KindMedia carries an attachment reference alongside optional text.
	KindMedia Kind = "media"

	// KindNotice is a system notice rendered out-of-band.
	KindNotice Kind = "notice"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry in a conversation thread. Once appended to a thread a
// Message is never mutated or removed; the protocol has no edit operation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Classification
	Origin Origin `json:"origin"`
	Kind   Kind   `json:"kind"`

	// Own is true when the local participant sent this message.
	Own bool `json:"own"`

	// Sender is the display handle of whoever produced the message
	// (the wire "from" field, or the local identity for echoes).
	Sender string `json:"sender,omitempty"`

	// Content
	Body string `json:"body"`

	// Echo is the literal text an actionable prompt re-sends when
	// activated. Set only for KindPrompt.
	Echo string `json:"echo,omitempty"`

	// Attachment reference (KindMedia).
	FileURL  string `json:"file_url,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// NewMessage creates a message with a generated ID and the current wall clock.
func NewMessage(origin Origin, kind Kind, body string) *Message {
	return &Message{
		ID:        generateID(),
		Timestamp: time.Now(),
		Origin:    origin,
		Kind:      kind,
		Body:      body,
	}
}

// NewOwnMessage creates the optimistic local echo for an outgoing message.
func NewOwnMessage(sender, body string) *Message {
	msg := NewMessage(OriginClient, KindPlain, body)
	msg.Own = true
	msg.Sender = sender
	return msg
}

// NewNotice creates a system notice.
func NewNotice(body string) *Message {
	return NewMessage(OriginSystem, KindNotice, body)
}

// NewPrompt creates an actionable prompt whose activation re-sends body.
func NewPrompt(origin Origin, body string) *Message {
	msg := NewMessage(origin, KindPrompt, body)
	msg.Echo = body
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// HasAttachment reports whether the message carries an attachment reference.
func (m *Message) HasAttachment() bool {
	return m.FileURL != ""
}

// IsActionable reports whether the message behaves as a button.
func (m *Message) IsActionable() bool {
	return m.Kind == KindPrompt && m.Echo != ""
}

// Preview returns a truncated preview of the message body.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Body)
	if len(runes) <= maxLen {
		return m.Body
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has neither text nor an attachment.
func (m *Message) IsEmpty() bool {
	return m.Body == "" && m.FileURL == ""
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a message ID from the current time plus a random
// component. Uniqueness is only required within one session's lifetime.
func generateID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return "msg_" + strconv.FormatInt(time.Now().UnixNano(), 36) + hex.EncodeToString(bytes)
}
