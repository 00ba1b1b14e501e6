// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat threads and messages.
package model

import (
	"time"
)

// =============================================================================
// THREAD TYPE
// =============================================================================

// Thread holds the ordered message history of one conversation. Message order
// is append-only and equals arrival/send order; there is no client-side sort.
type Thread struct {
	// Peer is the remote counterpart's handle. Empty for the client role's
	// single implicit thread until an operator is discovered.
	Peer string `json:"peer"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []*Message `json:"messages"`
}

// NewThread creates an empty thread for the given peer.
func NewThread(peer string) *Thread {
	now := time.Now()
	return &Thread{
		Peer:      peer,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the thread.
func (t *Thread) Append(msg *Message) {
	t.Messages = append(t.Messages, msg)
	t.UpdatedAt = time.Now()
}

// Last returns the most recent message, or nil if the thread is empty.
// Safe on a nil thread, as are the other read accessors: the store hands
// out nil for peers it has never seen, and callers treat that the same
// as an empty thread.
func (t *Thread) Last() *Message {
	if t == nil || len(t.Messages) == 0 {
		return nil
	}
	return t.Messages[len(t.Messages)-1]
}

// Len returns the number of messages.
func (t *Thread) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Messages)
}

// IsEmpty returns true if there are no messages.
func (t *Thread) IsEmpty() bool {
	return t == nil || len(t.Messages) == 0
}

// History returns the message history for display.
func (t *Thread) History() []*Message {
	if t == nil {
		return nil
	}
	return t.Messages
}

// Prompts returns the actionable prompts in the thread, oldest first.
// The returned slice indexes are what /say <n> activates.
func (t *Thread) Prompts() []*Message {
	if t == nil {
		return nil
	}
	var prompts []*Message
	for _, msg := range t.Messages {
		if msg.IsActionable() {
			prompts = append(prompts, msg)
		}
	}
	return prompts
}

// Clone returns a copy whose Messages slice is independent of the
// original, so a reader off the event loop cannot race a concurrent
// Append. The messages themselves are shared; they are immutable once
// appended.
func (t *Thread) Clone() *Thread {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Messages = append([]*Message(nil), t.Messages...)
	return &cp
}

// Preview returns a short preview of the thread's latest message.
func (t *Thread) Preview(maxLen int) string {
	last := t.Last()
	if last == nil {
		return ""
	}
	prefix := ""
	if last.Own {
		prefix = "You: "
	}
	return prefix + last.Preview(maxLen)
}
