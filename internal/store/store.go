// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the session's conversation history: an append-only
// message log per conversation thread.
package store

import (
	"github.com/jeranaias/shopchat-tui/internal/model"
)

// ImplicitThread is the thread key the client role appends to. The client
// has a single conversation regardless of which operator answers.
const ImplicitThread = ""

// =============================================================================
// STORE TYPE
// =============================================================================

// Store maps peer identity to an ordered message thread. Threads are created
// lazily on first append and never destroyed individually; Clear wipes the
// whole store when the session disconnects.
//
// The store is not safe for concurrent use. All mutation happens on the
// session's event loop: inbound decode results and the local optimistic echo
// are its only writers.
type Store struct {
	threads map[string]*model.Thread

	// order remembers thread creation order so listings are stable.
	order []string

	// selected is the thread currently active for display (operator role).
	selected string
}

// New creates an empty store.
func New() *Store {
	return &Store{
		threads: make(map[string]*model.Thread),
	}
}

// =============================================================================
// APPEND
// =============================================================================

// Append adds a message to the named thread, creating the thread if absent.
// The client role passes ImplicitThread. Order within a thread is call order;
// no reordering ever happens.
func (s *Store) Append(peer string, msg *model.Message) {
	th, ok := s.threads[peer]
	if !ok {
		th = model.NewThread(peer)
		s.threads[peer] = th
		s.order = append(s.order, peer)
	}
	th.Append(msg)
}

// =============================================================================
// THREAD ACCESS
// =============================================================================

// Thread returns the named thread, or nil if it does not exist yet.
func (s *Store) Thread(peer string) *model.Thread {
	return s.threads[peer]
}

// Peers returns thread keys in creation order.
func (s *Store) Peers() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of threads.
func (s *Store) Len() int {
	return len(s.threads)
}

// =============================================================================
// SELECTION
// =============================================================================

// Select marks a thread active for display. It creates the thread if absent
// so an operator can open a conversation before the peer has written.
func (s *Store) Select(peer string) {
	if _, ok := s.threads[peer]; !ok {
		s.threads[peer] = model.NewThread(peer)
		s.order = append(s.order, peer)
	}
	s.selected = peer
}

// Selected returns the active thread key and whether one is selected.
func (s *Store) Selected() (string, bool) {
	if _, ok := s.threads[s.selected]; !ok {
		return "", false
	}
	return s.selected, true
}

// SelectedThread returns the active thread, or nil when none is selected.
func (s *Store) SelectedThread() *model.Thread {
	if peer, ok := s.Selected(); ok {
		return s.threads[peer]
	}
	return nil
}

// =============================================================================
// CLEAR
// =============================================================================

// Clear wipes all threads. Invoked on disconnect as part of session teardown.
func (s *Store) Clear() {
	s.threads = make(map[string]*model.Thread)
	s.order = nil
	s.selected = ""
}

// Snapshot returns all threads in creation order, for archiving or export.
func (s *Store) Snapshot() []*model.Thread {
	out := make([]*model.Thread, 0, len(s.order))
	for _, peer := range s.order {
		out = append(out, s.threads[peer])
	}
	return out
}
