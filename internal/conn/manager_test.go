// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conn

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// FAKE TRANSPORT
// =============================================================================

// fakeTransport is an in-memory Transport fed by the test.
type fakeTransport struct {
	inbound chan []byte
	done    chan struct{}

	mu       sync.Mutex
	writes   [][]byte
	closed   bool
	closeCnt int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound: make(chan []byte, 16),
		done:    make(chan struct{}),
	}
}

func (f *fakeTransport) Read(ctx context.Context) ([]byte, error) {
	select {
	case data, ok := <-f.inbound:
		if !ok {
			return nil, io.EOF
		}
		return data, nil
	case <-f.done:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) Write(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("write on closed transport")
	}
	f.writes = append(f.writes, data)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCnt++
	if !f.closed {
		f.closed = true
		close(f.done)
	}
	return nil
}

func (f *fakeTransport) sentFrames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

// fakeDialer hands out prepared transports in order.
type fakeDialer struct {
	mu         sync.Mutex
	transports []*fakeTransport
	dialErr    error
	dials      int
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	if len(d.transports) == 0 {
		tr := newFakeTransport()
		d.transports = append(d.transports, tr)
		return tr, nil
	}
	tr := d.transports[len(d.transports)-1]
	if tr.isClosed() {
		tr = newFakeTransport()
		d.transports = append(d.transports, tr)
	}
	return tr, nil
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// waitEvent receives one event or fails the test.
func waitEvent(t *testing.T, m *Manager) Event {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestManager_OpenReachesConnected(t *testing.T) {
	d := &fakeDialer{}
	m := NewManager(d)

	if m.State() != StateDisconnected {
		t.Fatal("fresh manager should be disconnected")
	}

	m.Open("ws://localhost:8000/clients/bob")

	ev := waitEvent(t, m)
	if ev.Kind != EventConnected {
		t.Fatalf("first event = %v, want EventConnected", ev.Kind)
	}
	if m.State() != StateConnected {
		t.Errorf("state = %v, want connected", m.State())
	}
}

func TestManager_DialFailure(t *testing.T) {
	d := &fakeDialer{dialErr: errors.New("connection refused")}
	m := NewManager(d)
	m.Open("ws://localhost:8000/clients/bob")

	ev := waitEvent(t, m)
	if ev.Kind != EventDisconnected || ev.Err == nil {
		t.Fatalf("event = %+v, want EventDisconnected with error", ev)
	}
	if m.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected", m.State())
	}
	// No reconnect attempt happens on its own.
	time.Sleep(50 * time.Millisecond)
	d.mu.Lock()
	dials := d.dials
	d.mu.Unlock()
	if dials != 1 {
		t.Errorf("dials = %d, want 1 (no auto-reconnect)", dials)
	}
}

func TestManager_PayloadsInArrivalOrder(t *testing.T) {
	d := &fakeDialer{}
	m := NewManager(d)
	m.Open("ws://x/clients/bob")
	waitEvent(t, m) // connected

	tr := d.transports[0]
	tr.inbound <- []byte("one")
	tr.inbound <- []byte("two")
	tr.inbound <- []byte("three")

	for _, want := range []string{"one", "two", "three"} {
		ev := waitEvent(t, m)
		if ev.Kind != EventPayload || string(ev.Data) != want {
			t.Fatalf("event = %+v, want payload %q", ev, want)
		}
	}
}

func TestManager_RemoteCloseDisconnects(t *testing.T) {
	d := &fakeDialer{}
	m := NewManager(d)
	m.Open("ws://x/clients/bob")
	waitEvent(t, m)

	close(d.transports[0].inbound)

	ev := waitEvent(t, m)
	if ev.Kind != EventDisconnected {
		t.Fatalf("event = %v, want EventDisconnected", ev.Kind)
	}
	if m.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected", m.State())
	}
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	d := &fakeDialer{}
	m := NewManager(d)

	// Closing with no channel at all is a no-op.
	m.Close()
	m.Close()

	m.Open("ws://x/clients/bob")
	waitEvent(t, m)

	m.Close()
	m.Close()

	if m.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected", m.State())
	}
}

func TestManager_NoEventsAfterClose(t *testing.T) {
	d := &fakeDialer{}
	m := NewManager(d)
	m.Open("ws://x/clients/bob")
	waitEvent(t, m)

	tr := d.transports[0]
	m.Close()

	// The pump's read fails when Close tears down the transport, but its
	// generation is stale: nothing may surface after Close returns.
	time.Sleep(50 * time.Millisecond)
	select {
	case ev := <-m.Events():
		t.Fatalf("unexpected event after Close: %+v", ev)
	default:
	}

	if !tr.isClosed() {
		t.Error("transport should be closed")
	}
}

func TestManager_OpenWhileOpenClosesFirst(t *testing.T) {
	d := &fakeDialer{}
	m := NewManager(d)
	m.Open("ws://x/clients/bob")
	waitEvent(t, m)
	first := d.transports[0]

	m.Open("ws://x/clients/bob")
	ev := waitEvent(t, m)
	if ev.Kind != EventConnected {
		t.Fatalf("event = %v, want EventConnected on the new channel", ev.Kind)
	}

	if !first.isClosed() {
		t.Error("first channel must be closed before the second opens")
	}
	if len(d.transports) != 2 {
		t.Errorf("transports = %d, want 2", len(d.transports))
	}
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestManager_SendRequiresConnected(t *testing.T) {
	d := &fakeDialer{}
	m := NewManager(d)

	if m.Send([]byte("dropped")) {
		t.Error("Send while disconnected should report false")
	}

	m.Open("ws://x/clients/bob")
	waitEvent(t, m)

	if !m.Send([]byte("hello")) {
		t.Error("Send while connected should report true")
	}

	frames := d.transports[0].sentFrames()
	if len(frames) != 1 || string(frames[0]) != "hello" {
		t.Errorf("frames = %v", frames)
	}

	m.Close()
	if m.Send([]byte("late")) {
		t.Error("Send after Close should report false")
	}
	if got := len(d.transports[0].sentFrames()); got != 1 {
		t.Errorf("dropped send reached the wire: %d frames", got)
	}
}

// =============================================================================
// ENDPOINT TESTS
// =============================================================================

func TestEndpoint(t *testing.T) {
	tests := []struct {
		base, segment, id string
		want              string
	}{
		{"ws://localhost:8000", SegmentClients, "bob", "ws://localhost:8000/clients/bob"},
		{"ws://localhost:8000/", SegmentOperator, "ann", "ws://localhost:8000/operator/ann"},
		{"ws://h", SegmentClients, "strange name", "ws://h/clients/strange%20name"},
	}
	for _, tc := range tests {
		if got := Endpoint(tc.base, tc.segment, tc.id); got != tc.want {
			t.Errorf("Endpoint(%q,%q,%q) = %q, want %q", tc.base, tc.segment, tc.id, got, tc.want)
		}
	}
}
