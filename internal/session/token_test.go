// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/jeranaias/shopchat-tui/internal/backend"
)

func TestTokenStoreRoundtrip(t *testing.T) {
	s, err := NewTokenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(); !errors.Is(err, backend.ErrNoToken) {
		t.Fatalf("Get() on empty store = %v, want ErrNoToken", err)
	}

	if err := s.Set("sess-abc123"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "sess-abc123" {
		t.Errorf("Get() = %q", got)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(s.path())
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("token file mode = %o, want 600", perm)
		}
	}
}

func TestTokenStoreClear(t *testing.T) {
	s, err := NewTokenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("Clear() on empty store = %v", err)
	}

	if err := s.Set("tok"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(); !errors.Is(err, backend.ErrNoToken) {
		t.Errorf("Get() after Clear = %v, want ErrNoToken", err)
	}
}

func TestTokenStoreTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	s, err := NewTokenStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("  padded  "); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get()
	if err != nil {
		t.Fatal(err)
	}
	if got != "padded" {
		t.Errorf("Get() = %q, want trimmed token", got)
	}
}
