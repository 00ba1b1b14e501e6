// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/shopchat-tui/internal/attach"
	"github.com/jeranaias/shopchat-tui/internal/backend"
	"github.com/jeranaias/shopchat-tui/internal/conn"
	"github.com/jeranaias/shopchat-tui/internal/greeting"
	"github.com/jeranaias/shopchat-tui/internal/model"
	"github.com/jeranaias/shopchat-tui/internal/protocol"
	"github.com/jeranaias/shopchat-tui/internal/store"
)

// ClientBackend is the slice of the backend API the shopper session
// needs. *backend.Client satisfies it.
type ClientBackend interface {
	ResolveUser(ctx context.Context) (string, error)
	UploadFile(ctx context.Context, path string) (*backend.UploadResult, error)
}

// ClientOptions configures a shopper session.
type ClientOptions struct {
	// Backend resolves the identity and uploads attachments.
	Backend ClientBackend

	// Dialer opens the websocket channel.
	Dialer conn.Dialer

	// WSBase is the websocket base URL, e.g. ws://localhost:8000.
	WSBase string

	// GreetingInterval overrides the gap between greeting prompts.
	// Zero means the production default of one second.
	GreetingInterval time.Duration
}

// =============================================================================
// CLIENT SESSION
// =============================================================================

// ClientSession is the shopper side of a support conversation: one
// implicit thread with whoever answers, a staged attachment, and the
// staggered greeting script.
type ClientSession struct {
	id       string
	opts     ClientOptions
	identity string

	manager *conn.Manager
	store   *store.Store
	attach  *attach.Pipeline
	greet   *greeting.Sequencer
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
	events chan Event
	done   chan struct{}

	// peer is the active recipient, cached from the most recent inbound
	// operator message. Empty until an operator speaks; outgoing frames
	// omit the recipient field until then and the backend routes them.
	// Written on the event loop, read by Send on a caller goroutine, so
	// it lives under mu.
	peer string

	// final holds the conversation as it stood at Close, for archiving.
	final []*model.Thread
}

// NewClientSession builds a shopper session. Connect must be called
// before anything arrives on Events.
func NewClientSession(opts ClientOptions) *ClientSession {
	s := &ClientSession{
		id:      uuid.NewString(),
		opts:    opts,
		manager: conn.NewManager(opts.Dialer),
		store:   store.New(),
		attach:  attach.NewPipeline(opts.Backend),
		limiter: newLimiter(),
		events:  make(chan Event, eventBuffer),
		done:    make(chan struct{}),
	}
	s.greet = greeting.NewSequencer(opts.GreetingInterval, func(index int, prompt string) {
		s.post(GreetingEvent{Index: index, Prompt: prompt})
	})
	return s
}

// ID returns the unique id of this session run.
func (s *ClientSession) ID() string { return s.id }

// Identity returns the resolved username, empty before Connect.
func (s *ClientSession) Identity() string { return s.identity }

// Store exposes the conversation state for rendering. Callers must only
// touch it from the goroutine that drains Events.
func (s *ClientSession) Store() *store.Store { return s.store }

// Attachments exposes the staged-attachment pipeline.
func (s *ClientSession) Attachments() *attach.Pipeline { return s.attach }

// Events returns the session's event stream. Single consumer; the
// channel closes when the session does.
func (s *ClientSession) Events() <-chan Event { return s.events }

// Connect resolves the identity and opens the client channel. The
// identity resolve is the gate: if the session cookie cannot be mapped
// to a user, no socket is opened.
func (s *ClientSession) Connect(ctx context.Context) error {
	name, err := s.opts.Backend.ResolveUser(ctx)
	if err != nil {
		return err
	}
	s.identity = name

	s.manager.Open(conn.Endpoint(s.opts.WSBase, conn.SegmentClients, name))
	go s.pump()
	return nil
}

// pump forwards connection events into the session stream until the
// session closes.
func (s *ClientSession) pump() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.manager.Events():
			switch ev.Kind {
			case conn.EventConnected:
				s.post(ConnectedEvent{})
			case conn.EventPayload:
				s.post(InboundEvent{Raw: ev.Data})
			case conn.EventDisconnected:
				s.post(DisconnectedEvent{Err: ev.Err})
			}
		}
	}
}

// post delivers an event unless the session is closed. Buffer overflow
// drops rather than blocks; a stalled consumer must not wedge timer or
// pump goroutines.
func (s *ClientSession) post(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

// Apply folds one event into session state. Must be called only from
// the Events consumer; it is the sole mutation point.
func (s *ClientSession) Apply(ev Event) {
	switch ev := ev.(type) {
	case ConnectedEvent:
		s.store.Append(store.ImplicitThread, model.NewNotice("Connected to support."))

	case DisconnectedEvent:
		if ev.Err != nil {
			s.store.Append(store.ImplicitThread, model.NewNotice("Connection lost: "+ev.Err.Error()))
		} else {
			s.store.Append(store.ImplicitThread, model.NewNotice("Disconnected."))
		}

	case InboundEvent:
		s.applyInbound(ev.Raw)

	case GreetingEvent:
		s.store.Append(store.ImplicitThread, model.NewPrompt(model.OriginBot, ev.Prompt))

	case EchoEvent:
		s.store.Append(ev.Peer, ev.Message)
	}
}

// applyInbound decodes one frame. Greeting scripts never land in the
// thread directly; they fan out through the sequencer and come back as
// GreetingEvents one at a time.
func (s *ClientSession) applyInbound(raw []byte) {
	d := protocol.Decode(raw, protocol.RoleClient)

	if g, ok := d.(protocol.GreetingScript); ok {
		s.greet.Play(g.Prompts)
		return
	}

	msg := protocol.AsMessage(d, protocol.RoleClient)
	if msg == nil {
		return
	}
	if msg.Origin == model.OriginOperator {
		if from := protocol.Sender(d); from != "" {
			s.setPeer(from)
		}
	}
	s.store.Append(store.ImplicitThread, msg)
}

// Peer returns the cached active recipient, empty if no operator has
// spoken yet.
func (s *ClientSession) Peer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer
}

func (s *ClientSession) setPeer(id string) {
	s.mu.Lock()
	s.peer = id
	s.mu.Unlock()
}

// Send uploads any staged attachment, encodes and transmits the message,
// and posts the local echo. An upload failure aborts the whole send;
// the text never goes out without its file. Send runs on caller
// goroutines, so the echo travels through the event channel and lands
// in the store during Apply like every other mutation.
func (s *ClientSession) Send(ctx context.Context, body string) error {
	if s.isClosed() {
		return ErrClosed
	}
	if body == "" && s.attach.Pending() == nil {
		return ErrEmptyMessage
	}
	if !s.limiter.Allow() {
		return ErrRateLimited
	}

	att, err := s.attach.Commit(ctx)
	if err != nil {
		return err
	}

	frame, err := protocol.Encode(body, s.identity, s.Peer(), att)
	if err != nil {
		return err
	}
	if !s.manager.Send(frame) {
		return ErrNotConnected
	}

	echo := model.NewOwnMessage(s.identity, body)
	if att != nil {
		echo.Kind = model.KindMedia
		echo.FileURL = att.FileURL
		echo.MimeType = att.MimeType
	}
	s.post(EchoEvent{Peer: store.ImplicitThread, Message: echo})
	return nil
}

// isClosed reports teardown without exposing the lock.
func (s *ClientSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close tears the session down atomically: the event channel closes,
// pending greeting prompts are abandoned, the socket drops, and the
// store and staged attachment are cleared. Safe to call twice.
func (s *ClientSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	close(s.events)
	s.final = s.store.Snapshot()
	s.peer = ""
	s.mu.Unlock()

	s.greet.Cancel()
	s.manager.Close()
	s.store.Clear()
	s.attach.Cancel()
}

// FinalHistory returns the conversation captured at Close, so it can be
// archived after teardown. Nil until Close has run.
func (s *ClientSession) FinalHistory() []*model.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final
}
