// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package greeting staggers the bot's scripted opening prompts so they
// arrive one per second instead of as a wall of text.
package greeting

import (
	"sync"
	"time"
)

// DefaultInterval is the gap between consecutive prompts.
const DefaultInterval = time.Second

// DeliverFunc receives one prompt when its timer fires. It is called
// from a timer goroutine; implementations post into the session's event
// stream rather than mutating state directly, must not block, and must
// not call back into the sequencer.
type DeliverFunc func(index int, prompt string)

// Sequencer schedules a greeting script. One sequencer serves one
// session; Play replaces any script still in flight.
type Sequencer struct {
	mu       sync.Mutex
	interval time.Duration
	deliver  DeliverFunc
	timers   []*time.Timer
	canceled bool
}

// NewSequencer creates a sequencer delivering through fn. A zero
// interval falls back to DefaultInterval.
func NewSequencer(interval time.Duration, fn DeliverFunc) *Sequencer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sequencer{interval: interval, deliver: fn}
}

// Play schedules every prompt in the script: prompt i fires after
// i*interval, so the first one is delivered immediately. Any prompts
// still pending from an earlier script are abandoned first.
func (s *Sequencer) Play(prompts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.canceled = false
	s.timers = make([]*time.Timer, 0, len(prompts))

	for i, prompt := range prompts {
		i, prompt := i, prompt
		t := time.AfterFunc(time.Duration(i)*s.interval, func() {
			s.fire(i, prompt)
		})
		s.timers = append(s.timers, t)
	}
}

// fire delivers one prompt unless the script was canceled in the
// meantime. Checking under the lock is what makes Cancel final: a timer
// that loses the race to Cancel never delivers.
func (s *Sequencer) fire(index int, prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canceled {
		return
	}
	s.deliver(index, prompt)
}

// Cancel abandons all undelivered prompts. Prompts already delivered
// stay delivered; nothing fires after Cancel returns.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Sequencer) cancelLocked() {
	s.canceled = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
