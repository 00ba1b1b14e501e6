// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session ties the connection, codec, store, greeting and
// attachment layers together behind two session types: ClientSession for
// the shopper panel and OperatorSession for the support panel.
//
// A session owns one Events channel. Background work (the read pump,
// greeting timers, roster polls) only posts events into it; all state
// mutation happens in Apply, called by the single consumer draining the
// channel. Nothing else touches the store, so none of it needs locking.
package session

import (
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/shopchat-tui/internal/model"
)

// Error variables for session operations.
var (
	// ErrNotConnected indicates a send was attempted without an open
	// channel.
	ErrNotConnected = errors.New("not connected")

	// ErrRateLimited indicates sends are arriving faster than the
	// outbound limiter allows.
	ErrRateLimited = errors.New("sending too fast; wait a moment")

	// ErrEmptyMessage indicates a send with no text and no attachment.
	ErrEmptyMessage = errors.New("nothing to send")

	// ErrNoRecipient indicates an operator send with no client selected.
	ErrNoRecipient = errors.New("no client selected")

	// ErrClosed indicates the session has been torn down.
	ErrClosed = errors.New("session closed")
)

// Send pacing: short bursts are fine, sustained flooding is not.
const (
	sendRate  = rate.Limit(2) // sustained messages per second
	sendBurst = 5
)

// eventBuffer sizes the session event channel. Large enough that timer
// and pump goroutines never stall behind a busy render loop.
const eventBuffer = 128

// =============================================================================
// EVENTS
// =============================================================================

// Event is anything the session posts for its consumer to Apply. The
// concrete types below are the complete set.
type Event interface {
	sessionEvent()
}

// ConnectedEvent reports the channel is open.
type ConnectedEvent struct{}

// DisconnectedEvent reports the channel dropped. Err is nil on a clean
// remote close.
type DisconnectedEvent struct {
	Err error
}

// InboundEvent carries one raw frame off the wire, decoded during Apply.
type InboundEvent struct {
	Raw []byte
}

// GreetingEvent carries one staggered greeting prompt whose timer fired.
type GreetingEvent struct {
	Index  int
	Prompt string
}

// RosterEvent carries a backend roster snapshot from the poll loop.
type RosterEvent struct {
	IDs []string
	Err error
}

// EchoEvent carries the local copy of a sent message. Send runs on
// caller goroutines, so its echo reaches the store the same way inbound
// frames do, keeping the store single-writer.
type EchoEvent struct {
	Peer    string
	Message *model.Message
}

func (ConnectedEvent) sessionEvent()    {}
func (DisconnectedEvent) sessionEvent() {}
func (InboundEvent) sessionEvent()      {}
func (GreetingEvent) sessionEvent()     {}
func (RosterEvent) sessionEvent()       {}
func (EchoEvent) sessionEvent()         {}

// newLimiter builds the outbound send limiter.
func newLimiter() *rate.Limiter {
	return rate.NewLimiter(sendRate, sendBurst)
}

// normalizeInterval guards against zero or negative configured
// intervals.
func normalizeInterval(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
