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
	"github.com/jeranaias/shopchat-tui/internal/model"
	"github.com/jeranaias/shopchat-tui/internal/protocol"
	"github.com/jeranaias/shopchat-tui/internal/roster"
	"github.com/jeranaias/shopchat-tui/internal/store"
)

// DefaultRosterInterval is how often the operator panel refreshes the
// connected-client list.
const DefaultRosterInterval = 5 * time.Second

// OperatorBackend is the slice of the backend API the operator session
// needs. *backend.Client satisfies it.
type OperatorBackend interface {
	Roster(ctx context.Context) ([]string, error)
	UploadFile(ctx context.Context, path string) (*backend.UploadResult, error)
}

// OperatorOptions configures a support-operator session.
type OperatorOptions struct {
	// Identity is the operator's name on the wire.
	Identity string

	// Backend supplies the roster and uploads attachments.
	Backend OperatorBackend

	// Dialer opens the websocket channel.
	Dialer conn.Dialer

	// WSBase is the websocket base URL.
	WSBase string

	// RosterInterval overrides the roster poll cadence. Zero means
	// DefaultRosterInterval.
	RosterInterval time.Duration
}

// =============================================================================
// OPERATOR SESSION
// =============================================================================

// OperatorSession is the support side: one thread per client, a polled
// roster, and an explicit selection that outgoing messages go to.
type OperatorSession struct {
	id   string
	opts OperatorOptions

	manager *conn.Manager
	store   *store.Store
	tracker *roster.Tracker
	attach  *attach.Pipeline
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
	events chan Event
	done   chan struct{}

	// selected mirrors the store's selection for readers off the event
	// loop; Send consults it on caller goroutines instead of touching
	// the store.
	selected    string
	hasSelected bool

	// final holds the threads as they stood at Close, for archiving.
	final []*model.Thread
}

// NewOperatorSession builds an operator session.
func NewOperatorSession(opts OperatorOptions) *OperatorSession {
	opts.RosterInterval = normalizeInterval(opts.RosterInterval, DefaultRosterInterval)
	return &OperatorSession{
		id:      uuid.NewString(),
		opts:    opts,
		manager: conn.NewManager(opts.Dialer),
		store:   store.New(),
		tracker: roster.NewTracker(),
		attach:  attach.NewPipeline(opts.Backend),
		limiter: newLimiter(),
		events:  make(chan Event, eventBuffer),
		done:    make(chan struct{}),
	}
}

// ID returns the unique id of this session run.
func (s *OperatorSession) ID() string { return s.id }

// Identity returns the operator's wire name.
func (s *OperatorSession) Identity() string { return s.opts.Identity }

// Store exposes the per-client threads for rendering. Event-loop
// goroutine only.
func (s *OperatorSession) Store() *store.Store { return s.store }

// Roster exposes the tracked peer list. Event-loop goroutine only.
func (s *OperatorSession) Roster() *roster.Tracker { return s.tracker }

// Attachments exposes the staged-attachment pipeline.
func (s *OperatorSession) Attachments() *attach.Pipeline { return s.attach }

// Events returns the session's event stream. Single consumer; closed on
// teardown.
func (s *OperatorSession) Events() <-chan Event { return s.events }

// Connect opens the operator channel and starts the roster poll. There
// is no identity resolve on this side; the operator name comes from
// configuration.
func (s *OperatorSession) Connect(ctx context.Context) error {
	s.manager.Open(conn.Endpoint(s.opts.WSBase, conn.SegmentOperator, s.opts.Identity))
	go s.pump()
	go s.pollRoster()
	return nil
}

func (s *OperatorSession) pump() {
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

// pollRoster fetches the client list on a fixed cadence and posts each
// snapshot as an event. The first fetch happens immediately so the panel
// is not empty for the first interval.
func (s *OperatorSession) pollRoster() {
	fetch := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.RosterInterval)
		ids, err := s.opts.Backend.Roster(ctx)
		cancel()
		s.post(RosterEvent{IDs: ids, Err: err})
	}

	fetch()
	ticker := time.NewTicker(s.opts.RosterInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			fetch()
		}
	}
}

func (s *OperatorSession) post(ev Event) {
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

// Apply folds one event into session state. Events consumer only.
func (s *OperatorSession) Apply(ev Event) {
	switch ev := ev.(type) {
	case ConnectedEvent:
		s.notice("Operator channel open.")

	case DisconnectedEvent:
		if ev.Err != nil {
			s.notice("Connection lost: " + ev.Err.Error())
		} else {
			s.notice("Disconnected.")
		}

	case InboundEvent:
		s.applyInbound(ev.Raw)

	case RosterEvent:
		if ev.Err == nil {
			s.tracker.Refresh(ev.IDs)
		}

	case EchoEvent:
		s.store.Append(ev.Peer, ev.Message)
	}
}

// applyInbound routes a decoded frame into the sender's thread. The
// first client to speak is selected automatically so the operator can
// reply without touching the roster.
func (s *OperatorSession) applyInbound(raw []byte) {
	d := protocol.Decode(raw, protocol.RoleOperator)
	msg := protocol.AsMessage(d, protocol.RoleOperator)
	if msg == nil {
		return
	}

	if _, ok := d.(protocol.SystemNotice); ok {
		s.notice(msg.Body)
		return
	}

	peer := protocol.Sender(d)
	s.store.Append(peer, msg)

	selected, hasSelection := s.store.Selected()
	if !hasSelection {
		s.SelectPeer(peer)
		return
	}
	if peer != selected {
		s.tracker.Bump(peer)
	}
}

// notice appends a system line to the selected thread, or the implicit
// one when nothing is selected yet.
func (s *OperatorSession) notice(body string) {
	target := store.ImplicitThread
	if selected, ok := s.store.Selected(); ok {
		target = selected
	}
	s.store.Append(target, model.NewNotice(body))
}

// SelectPeer switches the active conversation and clears its unread
// count. Other peers keep theirs. Event-loop goroutine only, like every
// store mutation.
func (s *OperatorSession) SelectPeer(id string) {
	s.store.Select(id)
	s.tracker.MarkRead(id)

	s.mu.Lock()
	s.selected = id
	s.hasSelected = true
	s.mu.Unlock()
}

// Selected returns the active peer, if any. Safe from any goroutine.
func (s *OperatorSession) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSelected
}

// Send transmits to the selected client and posts the local echo for
// that client's thread; Apply appends it, keeping the store on one
// goroutine. Requires a selection; the recipient field is always
// present on operator frames.
func (s *OperatorSession) Send(ctx context.Context, body string) error {
	if s.isClosed() {
		return ErrClosed
	}
	peer, ok := s.Selected()
	if !ok || peer == "" {
		return ErrNoRecipient
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

	frame, err := protocol.Encode(body, s.opts.Identity, peer, att)
	if err != nil {
		return err
	}
	if !s.manager.Send(frame) {
		return ErrNotConnected
	}

	echo := model.NewOwnMessage(s.opts.Identity, body)
	if att != nil {
		echo.Kind = model.KindMedia
		echo.FileURL = att.FileURL
		echo.MimeType = att.MimeType
	}
	s.post(EchoEvent{Peer: peer, Message: echo})
	return nil
}

func (s *OperatorSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close tears the session down: event channel closed, poll and pump
// stopped, socket dropped, threads and roster cleared. Safe to call
// twice.
func (s *OperatorSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	close(s.events)
	s.final = s.store.Snapshot()
	s.selected = ""
	s.hasSelected = false
	s.mu.Unlock()

	s.manager.Close()
	s.store.Clear()
	s.tracker.Reset()
	s.attach.Cancel()
}

// FinalHistory returns the threads captured at Close, so they can be
// archived after teardown. Nil until Close has run.
func (s *OperatorSession) FinalHistory() []*model.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final
}
