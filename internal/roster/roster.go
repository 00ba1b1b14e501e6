// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package roster tracks which clients the operator can talk to. The list
// is the union of what the backend reports as connected and every peer a
// conversation already exists with, so a client that drops off mid-chat
// stays selectable.
package roster

import "sort"

// Entry is one selectable peer.
type Entry struct {
	// ID is the client identity.
	ID string

	// Online reports whether the most recent backend refresh listed
	// this client.
	Online bool

	// Unread counts messages received while the peer was not selected.
	Unread int
}

// Tracker maintains the operator's peer list. Not safe for concurrent
// use; all calls come from the session's event loop.
type Tracker struct {
	entries map[string]*Entry
	order   []string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*Entry)}
}

// ensure returns the entry for id, creating it at the end of the order.
func (t *Tracker) ensure(id string) *Entry {
	if e, ok := t.entries[id]; ok {
		return e
	}
	e := &Entry{ID: id}
	t.entries[id] = e
	t.order = append(t.order, id)
	return e
}

// Refresh applies a backend roster snapshot. Clients absent from the
// snapshot are not removed; they are marked offline and remain
// selectable as long as a conversation exists.
func (t *Tracker) Refresh(ids []string) {
	live := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		live[id] = true
		t.ensure(id).Online = true
	}
	for id, e := range t.entries {
		if !live[id] {
			e.Online = false
		}
	}
}

// Bump records an inbound message from id, creating the entry if the
// backend has not reported the client yet.
func (t *Tracker) Bump(id string) {
	if id == "" {
		return
	}
	t.ensure(id).Unread++
}

// MarkRead zeroes the unread count for id only. Other peers keep their
// counts.
func (t *Tracker) MarkRead(id string) {
	if e, ok := t.entries[id]; ok {
		e.Unread = 0
	}
}

// Entries returns the peers in first-seen order.
func (t *Tracker) Entries() []*Entry {
	out := make([]*Entry, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.entries[id])
	}
	return out
}

// Sorted returns the peers with online clients first, each group in
// first-seen order.
func (t *Tracker) Sorted() []*Entry {
	out := t.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Online && !out[j].Online
	})
	return out
}

// Len returns the number of tracked peers.
func (t *Tracker) Len() int {
	return len(t.order)
}

// Unread returns the total unread count across all peers.
func (t *Tracker) Unread() int {
	total := 0
	for _, e := range t.entries {
		total += e.Unread
	}
	return total
}

// Reset drops every entry.
func (t *Tracker) Reset() {
	t.entries = make(map[string]*Entry)
	t.order = nil
}
