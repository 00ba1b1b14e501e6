// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/shopchat-tui/internal/backend"
)

// tokenFileName is where the session token lives under the config dir.
const tokenFileName = "token"

// TokenStore persists the session token used as the identity cookie.
type TokenStore struct {
	dir string
}

// NewTokenStore creates a store rooted at dir. An empty dir resolves to
// ~/.shopchat.
func NewTokenStore(dir string) (*TokenStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".shopchat")
	}
	return &TokenStore{dir: dir}, nil
}

// path returns the token file location.
func (s *TokenStore) path() string {
	return filepath.Join(s.dir, tokenFileName)
}

// Get reads the stored token. Returns backend.ErrNoToken when none is
// stored.
func (s *TokenStore) Get() (string, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", backend.ErrNoToken
		}
		return "", fmt.Errorf("reading token: %w", err)
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", backend.ErrNoToken
	}
	return tok, nil
}

// Set writes the token with owner-only permissions.
func (s *TokenStore) Set(token string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(s.path(), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an absent token is not an
// error.
func (s *TokenStore) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}
