// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/shopchat-tui/internal/backend"
	"github.com/jeranaias/shopchat-tui/internal/conn"
	"github.com/jeranaias/shopchat-tui/internal/model"
	"github.com/jeranaias/shopchat-tui/internal/store"
)

// =============================================================================
// FAKES
// =============================================================================

// fakeTransport feeds scripted inbound frames and records writes.
type fakeTransport struct {
	mu      sync.Mutex
	inbound chan []byte
	done    chan struct{}
	once    sync.Once
	writes  [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound: make(chan []byte, 16),
		done:    make(chan struct{}),
	}
}

func (t *fakeTransport) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, errors.New("transport closed")
	case data := <-t.inbound:
		return data, nil
	}
}

func (t *fakeTransport) Write(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writes = append(t.writes, append([]byte(nil), data...))
	return nil
}

func (t *fakeTransport) Close() error {
	t.once.Do(func() { close(t.done) })
	return nil
}

func (t *fakeTransport) written() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.writes))
	copy(out, t.writes)
	return out
}

// fakeDialer hands out one transport and remembers the URL.
type fakeDialer struct {
	mu  sync.Mutex
	tr  *fakeTransport
	url string
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (conn.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
	return d.tr, nil
}

func (d *fakeDialer) dialedURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

// fakeClientBackend resolves a fixed identity.
type fakeClientBackend struct {
	username   string
	resolveErr error
	upload     *backend.UploadResult
	uploadErr  error
}

func (b *fakeClientBackend) ResolveUser(ctx context.Context) (string, error) {
	if b.resolveErr != nil {
		return "", b.resolveErr
	}
	return b.username, nil
}

func (b *fakeClientBackend) UploadFile(ctx context.Context, path string) (*backend.UploadResult, error) {
	if b.uploadErr != nil {
		return nil, b.uploadErr
	}
	return b.upload, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// drainUntil applies events until pred is satisfied or the deadline hits.
type applier interface {
	Apply(Event)
	Events() <-chan Event
}

func drainUntil(t *testing.T, s applier, pred func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !pred() {
		select {
		case <-deadline:
			t.Fatal("condition not reached")
		case ev, ok := <-s.Events():
			if !ok {
				t.Fatal("event channel closed before condition")
			}
			s.Apply(ev)
		}
	}
}

func newTestClient(t *testing.T) (*ClientSession, *fakeTransport, *fakeDialer) {
	t.Helper()
	tr := newFakeTransport()
	d := &fakeDialer{tr: tr}
	s := NewClientSession(ClientOptions{
		Backend:          &fakeClientBackend{username: "shopper-7"},
		Dialer:           d,
		WSBase:           "ws://localhost:8000",
		GreetingInterval: 10 * time.Millisecond,
	})
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s, tr, d
}

func decodeFrame(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	return m
}

// =============================================================================
// TESTS
// =============================================================================

func TestClientConnect(t *testing.T) {
	s, _, d := newTestClient(t)

	drainUntil(t, s, func() bool {
		return s.Store().Thread(store.ImplicitThread).Len() == 1
	})

	if s.Identity() != "shopper-7" {
		t.Errorf("Identity() = %q", s.Identity())
	}
	if got, want := d.dialedURL(), "ws://localhost:8000/clients/shopper-7"; got != want {
		t.Errorf("dialed %q, want %q", got, want)
	}
	if last := s.Store().Thread(store.ImplicitThread).Last(); last.Kind != model.KindNotice {
		t.Errorf("first entry kind = %v, want notice", last.Kind)
	}
}

func TestClientConnectIdentityFailure(t *testing.T) {
	d := &fakeDialer{tr: newFakeTransport()}
	s := NewClientSession(ClientOptions{
		Backend: &fakeClientBackend{resolveErr: backend.ErrIdentity},
		Dialer:  d,
		WSBase:  "ws://localhost:8000",
	})
	defer s.Close()

	if err := s.Connect(context.Background()); !errors.Is(err, backend.ErrIdentity) {
		t.Fatalf("Connect() error = %v, want ErrIdentity", err)
	}
	if d.dialedURL() != "" {
		t.Error("socket dialed despite identity failure")
	}
}

func TestClientPeerCaching(t *testing.T) {
	s, tr, _ := newTestClient(t)
	drainUntil(t, s, func() bool { return s.Store().Thread(store.ImplicitThread).Len() == 1 })

	ctx := context.Background()

	// No operator has spoken: the outgoing frame has no recipient.
	if err := s.Send(ctx, "hello?"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	frame := decodeFrame(t, tr.written()[0])
	if _, ok := frame["to"]; ok {
		t.Errorf("frame before any reply has to = %v", frame["to"])
	}

	// bob answers; replies go to bob.
	tr.inbound <- []byte(`{"type":"operator_message","from":"bob","message":"hi, how can I help?"}`)
	drainUntil(t, s, func() bool { return s.Peer() == "bob" })

	if err := s.Send(ctx, "where is my order?"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if frame := decodeFrame(t, tr.written()[1]); frame["to"] != "bob" {
		t.Errorf("to = %v, want bob", frame["to"])
	}

	// alice takes over mid-conversation; subsequent sends follow her.
	tr.inbound <- []byte(`{"type":"operator_message","from":"alice","message":"taking over from bob"}`)
	drainUntil(t, s, func() bool { return s.Peer() == "alice" })

	if err := s.Send(ctx, "thanks"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if frame := decodeFrame(t, tr.written()[2]); frame["to"] != "alice" {
		t.Errorf("to = %v, want alice", frame["to"])
	}
}

func TestClientGreetingFanout(t *testing.T) {
	s, tr, _ := newTestClient(t)

	tr.inbound <- []byte(`{"type":"greeting","message":["Welcome!","Browse our sale","Ask me anything"]}`)

	prompts := func() []*model.Message {
		return s.Store().Thread(store.ImplicitThread).Prompts()
	}
	drainUntil(t, s, func() bool { return len(prompts()) == 3 })

	got := prompts()
	want := []string{"Welcome!", "Browse our sale", "Ask me anything"}
	for i := range want {
		if got[i].Body != want[i] {
			t.Errorf("prompt[%d] = %q, want %q", i, got[i].Body, want[i])
		}
		if got[i].Origin != model.OriginBot {
			t.Errorf("prompt[%d] origin = %v", i, got[i].Origin)
		}
	}
}

func TestClientCloseAbandonsPendingGreetings(t *testing.T) {
	tr := newFakeTransport()
	d := &fakeDialer{tr: tr}
	s := NewClientSession(ClientOptions{
		Backend:          &fakeClientBackend{username: "shopper-7"},
		Dialer:           d,
		WSBase:           "ws://localhost:8000",
		GreetingInterval: 25 * time.Millisecond,
	})
	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	tr.inbound <- []byte(`{"type":"greeting","message":["one","two","three","four","five"]}`)

	// Apply events until three prompts have landed, then tear down.
	delivered := 0
	deadline := time.After(2 * time.Second)
	for delivered < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d prompts delivered", delivered)
		case ev, ok := <-s.Events():
			if !ok {
				t.Fatal("channel closed early")
			}
			if _, isPrompt := ev.(GreetingEvent); isPrompt {
				delivered++
			}
			s.Apply(ev)
		}
	}
	s.Close()

	// The channel must close without the remaining two prompts.
	for ev := range s.Events() {
		if _, isPrompt := ev.(GreetingEvent); isPrompt {
			t.Fatal("prompt delivered after Close")
		}
	}
	time.Sleep(100 * time.Millisecond)
	if s.Store().Len() != 0 {
		t.Error("store not cleared by Close")
	}
}

func TestClientCloseTeardown(t *testing.T) {
	s, _, _ := newTestClient(t)
	drainUntil(t, s, func() bool { return s.Store().Thread(store.ImplicitThread).Len() == 1 })

	s.Close()
	s.Close() // idempotent

	if _, ok := <-s.Events(); ok {
		t.Error("events channel still open after Close")
	}
	if s.Store().Len() != 0 {
		t.Error("store not cleared")
	}
	if s.Attachments().Pending() != nil {
		t.Error("staged attachment survived Close")
	}
	if err := s.Send(context.Background(), "late"); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after Close = %v, want ErrClosed", err)
	}
}

func TestClientSendValidation(t *testing.T) {
	s, _, _ := newTestClient(t)
	drainUntil(t, s, func() bool { return s.Store().Thread(store.ImplicitThread).Len() == 1 })

	if err := s.Send(context.Background(), ""); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty Send() = %v, want ErrEmptyMessage", err)
	}
}

func TestClientSendRateLimited(t *testing.T) {
	s, _, _ := newTestClient(t)
	drainUntil(t, s, func() bool { return s.Store().Thread(store.ImplicitThread).Len() == 1 })

	ctx := context.Background()
	var limited bool
	for i := 0; i < sendBurst+1; i++ {
		if err := s.Send(ctx, "spam"); errors.Is(err, ErrRateLimited) {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("burst of sends never hit the limiter")
	}
}

func TestClientSendEchoesOwnMessage(t *testing.T) {
	s, _, _ := newTestClient(t)
	drainUntil(t, s, func() bool { return s.Store().Thread(store.ImplicitThread).Len() == 1 })

	if err := s.Send(context.Background(), "ping"); err != nil {
		t.Fatal(err)
	}

	// The echo arrives as an event and lands during Apply.
	drainUntil(t, s, func() bool {
		last := s.Store().Thread(store.ImplicitThread).Last()
		return last != nil && last.Own
	})
	last := s.Store().Thread(store.ImplicitThread).Last()
	if last.Body != "ping" || last.Sender != "shopper-7" {
		t.Errorf("echo = %+v", last)
	}
}

func TestClientSendWhileInboundApplies(t *testing.T) {
	s, tr, _ := newTestClient(t)
	drainUntil(t, s, func() bool { return s.Store().Thread(store.ImplicitThread).Len() == 1 })

	// Sends run on another goroutine while this one applies inbound
	// frames, the shape the panels produce.
	done := make(chan error, 1)
	go func() {
		for i := 0; i < 3; i++ {
			if err := s.Send(context.Background(), "ping"); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for i := 0; i < 3; i++ {
		tr.inbound <- []byte(`{"type":"operator_message","from":"bob","message":"pong"}`)
	}

	// 1 connect notice + 3 inbound + 3 echoes.
	drainUntil(t, s, func() bool {
		return s.Store().Thread(store.ImplicitThread).Len() == 7
	})
	if err := <-done; err != nil {
		t.Fatalf("concurrent Send() error = %v", err)
	}

	var echoes, inbound int
	for _, msg := range s.Store().Thread(store.ImplicitThread).History() {
		switch {
		case msg.Own:
			echoes++
		case msg.Origin == model.OriginOperator:
			inbound++
		}
	}
	if echoes != 3 || inbound != 3 {
		t.Errorf("echoes = %d, inbound = %d, want 3 and 3", echoes, inbound)
	}
}
