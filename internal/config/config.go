// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for shopchat.
//
// Configuration comes from ~/.shopchat/config.toml with environment
// variable overrides applied on top, and built-in defaults underneath.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete shopchat configuration.
type Config struct {
	// Server connection settings
	Server ServerConfig `toml:"server"`

	// Operator panel settings
	Operator OperatorConfig `toml:"operator"`

	// Chat behavior settings
	Chat ChatConfig `toml:"chat"`

	// Archive settings
	Archive ArchiveConfig `toml:"archive"`

	// UI settings
	UI UIConfig `toml:"ui"`
}

// ServerConfig holds the storefront backend endpoints.
type ServerConfig struct {
	// HTTPBase is the base URL for the REST endpoints
	HTTPBase string `toml:"http_base"`
	// WSBase is the base URL for the websocket channels.
	// Empty derives it from HTTPBase (http->ws, https->wss).
	WSBase string `toml:"ws_base"`
}

// OperatorConfig holds operator-panel settings.
type OperatorConfig struct {
	// Name is the operator identity on the wire
	Name string `toml:"name"`
	// RosterIntervalSecs is the roster poll cadence in seconds
	RosterIntervalSecs int `toml:"roster_interval_secs"`
}

// ChatConfig holds shared chat behavior settings.
type ChatConfig struct {
	// GreetingIntervalMs is the gap between greeting prompts in
	// milliseconds. The production default is 1000.
	GreetingIntervalMs int `toml:"greeting_interval_ms"`
}

// ArchiveConfig holds transcript archive settings.
type ArchiveConfig struct {
	// Enabled controls whether transcripts are archived on close
	Enabled bool `toml:"enabled"`
	// Path is the archive database location (empty = ~/.shopchat/history.db)
	Path string `toml:"path"`
}

// UIConfig holds UI settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode hides timestamps and tightens spacing
	CompactMode bool `toml:"compact_mode"`
	// ShowTimestamps renders a timestamp on every message
	ShowTimestamps bool `toml:"show_timestamps"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPBase: "http://localhost:8000",
		},
		Operator: OperatorConfig{
			Name:               "support",
			RosterIntervalSecs: 5,
		},
		Chat: ChatConfig{
			GreetingIntervalMs: 1000,
		},
		Archive: ArchiveConfig{
			Enabled: true,
		},
		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: true,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the shopchat configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".shopchat"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the default file, applies environment
// overrides, fills defaults and validates. A missing file is not an
// error; defaults apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return load(path, false)
}

// LoadFromPath loads configuration from an explicit file path. Unlike
// Load, the file must exist.
func LoadFromPath(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, required bool) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	} else if required {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML file with
// owner-only permissions.
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := Path()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# shopchat configuration file")
	fmt.Fprintln(file, "# Generated by shopchat - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills in any missing values, including deriving the
// websocket base from the HTTP base.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Server.HTTPBase == "" {
		c.Server.HTTPBase = defaults.Server.HTTPBase
	}
	if c.Server.WSBase == "" {
		c.Server.WSBase = deriveWSBase(c.Server.HTTPBase)
	}
	if c.Operator.Name == "" {
		c.Operator.Name = defaults.Operator.Name
	}
	if c.Operator.RosterIntervalSecs <= 0 {
		c.Operator.RosterIntervalSecs = defaults.Operator.RosterIntervalSecs
	}
	if c.Chat.GreetingIntervalMs <= 0 {
		c.Chat.GreetingIntervalMs = defaults.Chat.GreetingIntervalMs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// deriveWSBase maps an HTTP base URL to its websocket equivalent.
func deriveWSBase(httpBase string) string {
	switch {
	case strings.HasPrefix(httpBase, "https://"):
		return "wss://" + strings.TrimPrefix(httpBase, "https://")
	case strings.HasPrefix(httpBase, "http://"):
		return "ws://" + strings.TrimPrefix(httpBase, "http://")
	default:
		return httpBase
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.HTTPBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("server.http_base: %q is not an http(s) URL", c.Server.HTTPBase)
	}
	w, err := url.Parse(c.Server.WSBase)
	if err != nil || (w.Scheme != "ws" && w.Scheme != "wss") {
		return fmt.Errorf("server.ws_base: %q is not a ws(s) URL", c.Server.WSBase)
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		return fmt.Errorf("ui.theme: invalid theme %q, must be one of: dark, light, auto", c.UI.Theme)
	}
	return nil
}

// RosterInterval returns the roster poll cadence as a duration.
func (c *Config) RosterInterval() time.Duration {
	return time.Duration(c.Operator.RosterIntervalSecs) * time.Second
}

// GreetingInterval returns the greeting prompt gap as a duration.
func (c *Config) GreetingInterval() time.Duration {
	return time.Duration(c.Chat.GreetingIntervalMs) * time.Millisecond
}

// ArchivePath resolves the archive database location.
func (c *Config) ArchivePath() (string, error) {
	if c.Archive.Path != "" {
		return c.Archive.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - SHOPCHAT_SERVER: overrides server.http_base
//   - SHOPCHAT_WS: overrides server.ws_base
//   - SHOPCHAT_OPERATOR: overrides operator.name
//   - SHOPCHAT_THEME: overrides ui.theme
//   - SHOPCHAT_NO_ARCHIVE: set to "1" or "true" to disable archiving
func (c *Config) ApplyEnvOverrides() {
	if server := os.Getenv("SHOPCHAT_SERVER"); server != "" {
		c.Server.HTTPBase = server
		c.Server.WSBase = ""
	}
	if ws := os.Getenv("SHOPCHAT_WS"); ws != "" {
		c.Server.WSBase = ws
	}
	if name := os.Getenv("SHOPCHAT_OPERATOR"); name != "" {
		c.Operator.Name = name
	}
	if theme := os.Getenv("SHOPCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if off := os.Getenv("SHOPCHAT_NO_ARCHIVE"); off != "" {
		if off == "1" || strings.EqualFold(off, "true") {
			c.Archive.Enabled = false
		}
	}
	if secs := os.Getenv("SHOPCHAT_ROSTER_INTERVAL"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			c.Operator.RosterIntervalSecs = n
		}
	}
}

// =============================================================================
// SINGLETON
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
			cfg.SetDefaults()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
