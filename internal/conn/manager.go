// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conn

import (
	"context"
	"sync"
)

// =============================================================================
// CONNECTION STATE
// =============================================================================

// State is the connection lifecycle state. Exactly one live channel may
// exist per session at a time.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// =============================================================================
// EVENTS
// =============================================================================

// EventKind classifies connection events.
type EventKind int

const (
	// EventConnected reports the channel reached the connected state.
	EventConnected EventKind = iota

	// EventPayload delivers one inbound text frame.
	EventPayload

	// EventDisconnected reports the channel went down. Err is nil for a
	// clean local close and non-nil for a dial failure, transport error
	// or unexpected remote closure.
	EventDisconnected
)

// Event is a connection lifecycle or payload event. Events are delivered in
// arrival order on the manager's single event channel.
type Event struct {
	Kind EventKind
	Data []byte
	Err  error
}

// eventBuffer sizes the event channel. The UI event loop drains promptly;
// the buffer only absorbs bursts between update cycles.
const eventBuffer = 64

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the lifecycle of exactly one duplex channel per session. No
// other component writes to the channel directly; all sends route through
// Send and all inbound traffic surfaces on Events.
//
// State machine: disconnected -> connecting -> connected -> disconnected.
// Any transport error or remote closure drives the state to disconnected
// with no automatic reconnect.
type Manager struct {
	mu     sync.Mutex
	dialer Dialer
	state  State
	tr     Transport
	cancel context.CancelFunc

	// gen invalidates the previous channel's pump goroutine whenever the
	// channel is closed or reopened. Events from a stale generation are
	// discarded, so no inbound event is delivered after Close returns.
	gen uint64

	events chan Event
}

// NewManager creates a disconnected manager using the given dialer.
func NewManager(dialer Dialer) *Manager {
	return &Manager{
		dialer: dialer,
		state:  StateDisconnected,
		events: make(chan Event, eventBuffer),
	}
}

// Events returns the single-consumer event channel.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// =============================================================================
// OPEN / CLOSE
// =============================================================================

// Open initiates a connection to the given channel address. It returns
// immediately; the caller observes EventConnected or EventDisconnected on
// the event channel. If a channel is already open it is closed first —
// two live channels must never coexist.
func (m *Manager) Open(url string) {
	m.mu.Lock()
	m.closeLocked()

	m.state = StateConnecting
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()

	go m.run(ctx, gen, url)
}

// Close requests teardown of the current channel. Idempotent: closing an
// absent channel is a no-op. After Close returns, no further events from the
// closed channel are delivered.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// closeLocked tears down the live channel, if any. Caller holds m.mu.
func (m *Manager) closeLocked() {
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.tr != nil {
		m.tr.Close()
		m.tr = nil
	}
	m.state = StateDisconnected
}

// =============================================================================
// SEND
// =============================================================================

// Send writes one payload to the channel. Requires state connected: when the
// channel is not connected the payload is dropped (not buffered) and Send
// reports false. The UI gates send affordances on connection state; this is
// the backstop, not the primary guard.
func (m *Manager) Send(data []byte) bool {
	m.mu.Lock()
	tr := m.tr
	gen := m.gen
	ok := m.state == StateConnected
	m.mu.Unlock()

	if !ok || tr == nil {
		return false
	}

	if err := tr.Write(context.Background(), data); err != nil {
		m.drop(gen, err)
		return false
	}
	return true
}

// =============================================================================
// PUMP
// =============================================================================

// run dials and then pumps inbound frames until the channel dies. One run
// goroutine exists per generation; a stale generation silently exits.
func (m *Manager) run(ctx context.Context, gen uint64, url string) {
	tr, err := m.dialer.Dial(ctx, url)
	if err != nil {
		m.drop(gen, err)
		return
	}

	m.mu.Lock()
	if gen != m.gen {
		// Closed or reopened while dialing. Not our channel anymore.
		m.mu.Unlock()
		tr.Close()
		return
	}
	m.tr = tr
	m.state = StateConnected
	m.mu.Unlock()

	m.emit(gen, Event{Kind: EventConnected})

	for {
		data, err := tr.Read(ctx)
		if err != nil {
			m.drop(gen, err)
			return
		}
		m.emit(gen, Event{Kind: EventPayload, Data: data})
	}
}

// drop transitions to disconnected after a dial failure, read/write error or
// remote closure, and reports it. A local Close has already bumped the
// generation, so the error from our own teardown is not reported.
func (m *Manager) drop(gen uint64, err error) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.tr != nil {
		m.tr.Close()
		m.tr = nil
	}
	m.state = StateDisconnected

	select {
	case m.events <- Event{Kind: EventDisconnected, Err: err}:
	default:
	}
	m.mu.Unlock()
}

// emit delivers an event unless the generation went stale. The generation
// check and the channel send happen under the mutex Close holds, which is
// what makes the no-events-after-Close guarantee hold.
func (m *Manager) emit(gen uint64, ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	select {
	case m.events <- ev:
	default:
		// Consumer stalled past the buffer; dropping beats deadlock.
	}
}
