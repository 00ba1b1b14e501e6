// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conn owns the session's duplex channel to the chat backend.
//
// Manager holds at most one live WebSocket per session and exposes its
// lifecycle as a small state machine (disconnected, connecting, connected)
// plus a single-consumer event channel. Opening while open closes the old
// channel first; errors and remote closures drive the state back to
// disconnected with no automatic reconnect — reconnecting is an explicit
// user action.
//
// The WebSocket itself sits behind the Transport interface so the manager
// is testable against an in-memory fake; the production implementation uses
// gobwas/ws text frames.
package conn
