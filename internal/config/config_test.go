// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.WSBase != "ws://localhost:8000" {
		t.Errorf("derived WSBase = %q", cfg.Server.WSBase)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
http_base = "https://shop.example.com"

[operator]
name = "helpdesk"
roster_interval_secs = 3

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Server.HTTPBase != "https://shop.example.com" {
		t.Errorf("HTTPBase = %q", cfg.Server.HTTPBase)
	}
	if cfg.Server.WSBase != "wss://shop.example.com" {
		t.Errorf("WSBase = %q, want wss derivation", cfg.Server.WSBase)
	}
	if cfg.Operator.Name != "helpdesk" {
		t.Errorf("Operator.Name = %q", cfg.Operator.Name)
	}
	if cfg.RosterInterval() != 3*time.Second {
		t.Errorf("RosterInterval() = %v", cfg.RosterInterval())
	}
	if cfg.GreetingInterval() != time.Second {
		t.Errorf("GreetingInterval() = %v, want default 1s", cfg.GreetingInterval())
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad http scheme", func(c *Config) { c.Server.HTTPBase = "ftp://x" }},
		{"bad ws scheme", func(c *Config) { c.Server.WSBase = "http://x" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.SetDefaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted bad value")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHOPCHAT_SERVER", "https://prod.example.com")
	t.Setenv("SHOPCHAT_OPERATOR", "nightshift")
	t.Setenv("SHOPCHAT_NO_ARCHIVE", "true")
	t.Setenv("SHOPCHAT_ROSTER_INTERVAL", "10")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()

	if cfg.Server.HTTPBase != "https://prod.example.com" {
		t.Errorf("HTTPBase = %q", cfg.Server.HTTPBase)
	}
	if cfg.Server.WSBase != "wss://prod.example.com" {
		t.Errorf("WSBase = %q", cfg.Server.WSBase)
	}
	if cfg.Operator.Name != "nightshift" {
		t.Errorf("Operator.Name = %q", cfg.Operator.Name)
	}
	if cfg.Archive.Enabled {
		t.Error("archive still enabled")
	}
	if cfg.Operator.RosterIntervalSecs != 10 {
		t.Errorf("RosterIntervalSecs = %d", cfg.Operator.RosterIntervalSecs)
	}
}

func TestArchivePathExplicit(t *testing.T) {
	cfg := Default()
	cfg.Archive.Path = "/tmp/custom.db"
	got, err := cfg.ArchivePath()
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/custom.db" {
		t.Errorf("ArchivePath() = %q", got)
	}
}
