// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		cmd  Command
	}{
		{"default is client panel", nil, CmdClient},
		{"explicit client", []string{"client"}, CmdClient},
		{"chat alias", []string{"chat"}, CmdClient},
		{"operator", []string{"operator"}, CmdOperator},
		{"op alias", []string{"op"}, CmdOperator},
		{"login", []string{"login", "tok"}, CmdLogin},
		{"logout", []string{"logout"}, CmdLogout},
		{"history", []string{"history"}, CmdHistory},
		{"sessions alias", []string{"sessions"}, CmdHistory},
		{"version", []string{"version"}, CmdVersion},
		{"version short", []string{"-v"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help long", []string{"--help"}, CmdHelp},
		{"unknown falls back to help", []string{"frobnicate"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := parse(tt.argv)
			if cmd != tt.cmd {
				t.Errorf("parse(%v) = %v, want %v", tt.argv, cmd, tt.cmd)
			}
		})
	}
}

func TestParseLoginToken(t *testing.T) {
	cmd, args := parse([]string{"login", "sess-abc"})
	if cmd != CmdLogin || args.Token != "sess-abc" {
		t.Errorf("parse = %v, token %q", cmd, args.Token)
	}

	// Missing token is allowed at parse time; the handler rejects it.
	_, args = parse([]string{"login"})
	if args.Token != "" {
		t.Errorf("token = %q", args.Token)
	}
}

func TestParseHistoryID(t *testing.T) {
	_, args := parse([]string{"history", "sess-123"})
	if args.SessionID != "sess-123" {
		t.Errorf("SessionID = %q", args.SessionID)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"space form", []string{"--server", "https://x.test", "operator", "--name", "sue"}},
		{"equals form", []string{"--server=https://x.test", "operator", "--name=sue"}},
		{"flags after command", []string{"operator", "--server", "https://x.test", "--name", "sue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := parse(tt.argv)
			if cmd != CmdOperator {
				t.Errorf("cmd = %v", cmd)
			}
			if args.Server != "https://x.test" {
				t.Errorf("Server = %q", args.Server)
			}
			if args.Name != "sue" {
				t.Errorf("Name = %q", args.Name)
			}
		})
	}
}

func TestParseConfigFlag(t *testing.T) {
	_, args := parse([]string{"--config", "/tmp/alt.toml"})
	if args.ConfigPath != "/tmp/alt.toml" {
		t.Errorf("ConfigPath = %q", args.ConfigPath)
	}
}
