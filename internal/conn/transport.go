// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conn owns the lifecycle of the session's duplex channel.
package conn

import (
	"context"
	"net/url"
	"strings"
)

// =============================================================================
// TRANSPORT ABSTRACTION
// =============================================================================

// Transport is a bidirectional message-oriented connection. It isolates the
// manager from the WebSocket implementation so tests can run against an
// in-memory fake.
type Transport interface {
	// Read reads a single text frame. Returns an error when the
	// connection is closed or broken; io.EOF for a clean remote close.
	Read(ctx context.Context) ([]byte, error)

	// Write sends a single text frame.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection. Safe to call more than once.
	Close() error
}

// Dialer establishes a Transport to a channel address.
type Dialer interface {
	Dial(ctx context.Context, url string) (Transport, error)
}

// =============================================================================
// CHANNEL ADDRESSES
// =============================================================================

// Role path segments of the chat backend's channel endpoints.
const (
	SegmentClients  = "clients"
	SegmentOperator = "operator"
)

// Endpoint builds a channel address from the base URL, a role segment and the
// session's own identity: ws://<host>/<segment>/<identity>.
func Endpoint(base, segment, identity string) string {
	return strings.TrimSuffix(base, "/") + "/" + segment + "/" + url.PathEscape(identity)
}
