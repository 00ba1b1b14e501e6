// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments for shopchat.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information, set at build time.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdClient Command = iota // default: shopper chat panel
	CmdOperator
	CmdLogin
	CmdLogout
	CmdHistory
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Server     string // overrides server.http_base
	Name       string // overrides operator.name
	ConfigPath string // explicit config file

	// Command-specific
	Token     string // login
	SessionID string // history <id>

	// Raw args remaining after parsing
	Raw []string
}

const usageText = `shopchat - storefront support chat for the terminal

Usage:
  shopchat                   Start the shopper chat panel (default)
  shopchat operator          Start the support operator panel
  shopchat login <token>     Store the session token used as identity cookie
  shopchat logout            Remove the stored session token
  shopchat history [id]      List archived sessions, or show one transcript
  shopchat version, -v       Show version information
  shopchat help, -h          Show this help

Flags:
  --server <url>             Backend base URL (e.g. https://shop.example.com)
  --name <name>              Operator name on the wire (operator panel)
  --config <path>            Use an explicit config file

Environment:
  SHOPCHAT_SERVER            Same as --server
  SHOPCHAT_OPERATOR          Same as --name
  SHOPCHAT_THEME             UI theme: dark, light, auto
  SHOPCHAT_NO_ARCHIVE        Set to 1 to disable transcript archiving

Configuration lives at ~/.shopchat/config.toml.
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("shopchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

// parse is the testable core of Parse.
func parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdClient, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "client", "chat":
		return CmdClient, args

	case "operator", "op":
		return CmdOperator, args

	case "login":
		if len(remaining) > 0 {
			args.Token = remaining[0]
		}
		return CmdLogin, args

	case "logout":
		return CmdLogout, args

	case "history", "sessions":
		if len(remaining) > 0 {
			args.SessionID = remaining[0]
		}
		return CmdHistory, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// parseGlobalFlags extracts global flags from the argument list and
// returns what is left.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	i := 0
	for i < len(argv) {
		arg := argv[i]

		name, value, hasValue := splitFlag(arg)
		switch name {
		case "server", "name", "config":
			if !hasValue {
				if i+1 < len(argv) {
					value = argv[i+1]
					i++
				}
			}
			switch name {
			case "server":
				args.Server = value
			case "name":
				args.Name = value
			case "config":
				args.ConfigPath = value
			}
		default:
			remaining = append(remaining, arg)
		}
		i++
	}

	return remaining, args
}

// splitFlag parses "--flag" and "--flag=value" forms. Returns the bare
// name with dashes stripped; non-flags return an empty name.
func splitFlag(arg string) (name, value string, hasValue bool) {
	if !strings.HasPrefix(arg, "--") {
		return "", "", false
	}
	body := strings.TrimPrefix(arg, "--")
	if eq := strings.Index(body, "="); eq >= 0 {
		return body[:eq], body[eq+1:], true
	}
	return body, "", false
}
