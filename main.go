// shopchat TUI - A terminal client for the storefront support chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopchat-tui/internal/archive"
	"github.com/jeranaias/shopchat-tui/internal/backend"
	"github.com/jeranaias/shopchat-tui/internal/cli"
	"github.com/jeranaias/shopchat-tui/internal/config"
	"github.com/jeranaias/shopchat-tui/internal/conn"
	"github.com/jeranaias/shopchat-tui/internal/export"
	"github.com/jeranaias/shopchat-tui/internal/model"
	"github.com/jeranaias/shopchat-tui/internal/session"
	"github.com/jeranaias/shopchat-tui/internal/ui/chat"
	"github.com/jeranaias/shopchat-tui/internal/ui/operator"
	"github.com/jeranaias/shopchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdClient:
		runClient(args)
	case cli.CmdOperator:
		runOperator(args)
	case cli.CmdLogin:
		handleLogin(args)
	case cli.CmdLogout:
		handleLogout()
	case cli.CmdHistory:
		handleHistory(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		cli.PrintUsage()
		os.Exit(1)
	}
}

// =============================================================================
// PANELS
// =============================================================================

// setupLogging points the stdlib logger at a file so nothing scribbles
// over the alternate screen.
func setupLogging() func() {
	dir, err := config.Dir()
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	if err := config.EnsureDir(); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(dir, "shopchat.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	return func() { f.Close() }
}

func runClient(args cli.Args) {
	cfg := mustConfig(args)
	closeLog := setupLogging()
	defer closeLog()

	tokens, err := session.NewTokenStore("")
	if err != nil {
		fatal(err)
	}

	be := backend.NewClient(cfg.Server.HTTPBase).WithTokenSource(tokens.Get)
	sess := session.NewClientSession(session.ClientOptions{
		Backend:          be,
		Dialer:           &conn.WSDialer{},
		WSBase:           cfg.Server.WSBase,
		GreetingInterval: cfg.GreetingInterval(),
	})

	startedAt := time.Now()
	m := chat.New(sess, styles.NewTheme(cfg.UI.Theme), exportOptions(cfg))

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		sess.Close()
		fatal(err)
	}
	sess.Close()

	archiveRun(cfg, sess.ID(), "client", sess.Identity(), startedAt, sess.FinalHistory())
}

func runOperator(args cli.Args) {
	cfg := mustConfig(args)
	closeLog := setupLogging()
	defer closeLog()

	tokens, err := session.NewTokenStore("")
	if err != nil {
		fatal(err)
	}

	be := backend.NewClient(cfg.Server.HTTPBase).WithTokenSource(tokens.Get)
	sess := session.NewOperatorSession(session.OperatorOptions{
		Identity:       cfg.Operator.Name,
		Backend:        be,
		Dialer:         &conn.WSDialer{},
		WSBase:         cfg.Server.WSBase,
		RosterInterval: cfg.RosterInterval(),
	})

	startedAt := time.Now()
	m := operator.New(sess, styles.NewTheme(cfg.UI.Theme), exportOptions(cfg))

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		sess.Close()
		fatal(err)
	}
	sess.Close()

	archiveRun(cfg, sess.ID(), "operator", sess.Identity(), startedAt, sess.FinalHistory())
}

// =============================================================================
// AUTH COMMANDS
// =============================================================================

func handleLogin(args cli.Args) {
	if args.Token == "" {
		fmt.Fprintln(os.Stderr, "usage: shopchat login <session-token>")
		os.Exit(1)
	}

	tokens, err := session.NewTokenStore("")
	if err != nil {
		fatal(err)
	}
	if err := tokens.Set(args.Token); err != nil {
		fatal(err)
	}
	fmt.Println("Token saved.")
}

func handleLogout() {
	tokens, err := session.NewTokenStore("")
	if err != nil {
		fatal(err)
	}
	if err := tokens.Clear(); err != nil {
		fatal(err)
	}
	fmt.Println("Token cleared.")
}

// =============================================================================
// HISTORY
// =============================================================================

func handleHistory(args cli.Args) {
	cfg := mustConfig(args)

	path, err := cfg.ArchivePath()
	if err != nil {
		fatal(err)
	}
	arc, err := archive.Open(path)
	if err != nil {
		fatal(err)
	}
	defer arc.Close()

	if args.SessionID == "" {
		sessions, err := arc.Sessions()
		if err != nil {
			fatal(err)
		}
		fmt.Print(archive.FormatSessionList(sessions))
		return
	}

	messages, err := arc.Messages(args.SessionID)
	if err != nil {
		fatal(err)
	}
	for _, msg := range messages {
		label := msg.Sender
		if label == "" {
			label = msg.Origin
		}
		fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Local().Format("2006-01-02 15:04"), label, msg.Body)
		if msg.FileURL != "" {
			fmt.Printf("    attachment: %s (%s)\n", msg.FileURL, msg.MimeType)
		}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// mustConfig loads the config file and applies CLI flag overrides.
func mustConfig(args cli.Args) *config.Config {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fatal(err)
	}

	if args.Server != "" {
		cfg.Server.HTTPBase = args.Server
		cfg.Server.WSBase = ""
		cfg.SetDefaults()
	}
	if args.Name != "" {
		cfg.Operator.Name = args.Name
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	config.SetGlobal(cfg)
	return cfg
}

func exportOptions(cfg *config.Config) *export.Options {
	opts := export.DefaultOptions()
	opts.IncludeTimestamps = cfg.UI.ShowTimestamps
	return opts
}

// archiveRun persists the finished session. Archive failures are reported
// but never fail the run; the conversation already happened.
func archiveRun(cfg *config.Config, sessionID, role, identity string, startedAt time.Time, threads []*model.Thread) {
	if !cfg.Archive.Enabled || len(threads) == 0 {
		return
	}

	path, err := cfg.ArchivePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "archive: %v\n", err)
		return
	}
	arc, err := archive.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "archive: %v\n", err)
		return
	}
	defer arc.Close()

	if err := arc.SaveSession(sessionID, role, identity, startedAt, threads); err != nil {
		fmt.Fprintf(os.Stderr, "archive: %v\n", err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
