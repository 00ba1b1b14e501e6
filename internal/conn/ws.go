// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conn

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// DefaultDialTimeout bounds the WebSocket handshake.
const DefaultDialTimeout = 10 * time.Second

// =============================================================================
// WEBSOCKET DIALER
// =============================================================================

// WSDialer dials WebSocket endpoints with gobwas/ws.
type WSDialer struct {
	// Timeout bounds the dial + handshake. Zero means DefaultDialTimeout.
	Timeout time.Duration
}

// Dial establishes a WebSocket client connection to the given ws:// URL.
func (d *WSDialer) Dial(ctx context.Context, url string) (Transport, error) {
	timeout := d.Timeout
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	netConn, _, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return &wsTransport{conn: netConn}, nil
}

// =============================================================================
// WEBSOCKET TRANSPORT
// =============================================================================

// wsTransport adapts a gobwas/ws client connection to the Transport
// interface. Text frames only; the chat protocol is JSON over text.
type wsTransport struct {
	conn net.Conn

	// writeMu serializes frame writes. Reads are single-consumer (the
	// manager's pump goroutine) and need no lock.
	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// Read reads one text frame from the server. A blocked read is released by
// Close, which tears down the underlying connection.
func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		t.conn.SetReadDeadline(deadline)
	}
	data, err := wsutil.ReadServerText(t.conn)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write sends one text frame to the server.
func (t *wsTransport) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		t.conn.SetWriteDeadline(deadline)
	}
	return wsutil.WriteClientText(t.conn, data)
}

// Close closes the connection, unblocking any pending read. Idempotent.
func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		// Best-effort close frame; the connection goes down either way.
		t.conn.SetWriteDeadline(time.Now().Add(time.Second))
		t.writeMu.Lock()
		_ = wsutil.WriteClientMessage(t.conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
		t.writeMu.Unlock()
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}
