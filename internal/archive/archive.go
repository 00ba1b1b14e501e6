// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive persists finished chat sessions to a local SQLite
// database so transcripts survive the TUI exiting. Writing happens once,
// at session teardown; the live conversation never touches disk.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/shopchat-tui/internal/model"
)

// ErrSessionNotFound is returned when a session id has no archived rows.
var ErrSessionNotFound = &ArchiveError{Message: "session not found"}

// ArchiveError represents an archive-related error.
type ArchiveError struct {
	Message string
}

// Error implements the error interface.
func (e *ArchiveError) Error() string {
	return e.Message
}

// Is implements errors.Is support.
func (e *ArchiveError) Is(target error) bool {
	t, ok := target.(*ArchiveError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// schema creates the tables on first open. Kept additive; existing
// databases are never migrated destructively.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	role       TEXT NOT NULL,
	identity   TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	ended_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	peer       TEXT NOT NULL,
	origin     TEXT NOT NULL,
	kind       TEXT NOT NULL,
	own        INTEGER NOT NULL,
	sender     TEXT NOT NULL,
	body       TEXT NOT NULL,
	file_url   TEXT NOT NULL DEFAULT '',
	mime_type  TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
`

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive is a handle to the transcript database.
type Archive struct {
	db *sql.DB
}

// SessionMeta describes one archived session for listing.
type SessionMeta struct {
	ID           string
	Role         string
	Identity     string
	StartedAt    time.Time
	EndedAt      time.Time
	MessageCount int
}

// ArchivedMessage is one persisted transcript line.
type ArchivedMessage struct {
	Peer      string
	Origin    string
	Kind      string
	Own       bool
	Sender    string
	Body      string
	FileURL   string
	MimeType  string
	CreatedAt time.Time
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}
	// One writer at teardown, occasional readers from the history
	// command. A single connection avoids SQLITE_BUSY entirely.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// SAVE
// =============================================================================

// SaveSession writes one finished session and all its threads in a
// single transaction. Sessions with no messages are skipped; an empty
// panel that was opened and closed leaves no trace.
func (a *Archive) SaveSession(sessionID, role, identity string, startedAt time.Time, threads []*model.Thread) error {
	total := 0
	for _, th := range threads {
		total += th.Len()
	}
	if total == 0 {
		return nil
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("starting archive transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, role, identity, started_at, ended_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, role, identity, startedAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing session row: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (id, session_id, peer, origin, kind, own, sender, body, file_url, mime_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing message insert: %w", err)
	}
	defer stmt.Close()

	for _, th := range threads {
		for _, msg := range th.History() {
			own := 0
			if msg.Own {
				own = 1
			}
			_, err := stmt.Exec(
				msg.ID, sessionID, th.Peer,
				msg.Origin.String(), string(msg.Kind), own,
				msg.Sender, msg.Body, msg.FileURL, msg.MimeType,
				msg.Timestamp.UTC(),
			)
			if err != nil {
				return fmt.Errorf("writing message row: %w", err)
			}
		}
	}

	return tx.Commit()
}

// =============================================================================
// LIST / LOAD
// =============================================================================

// Sessions returns archived sessions, most recent first.
func (a *Archive) Sessions() ([]SessionMeta, error) {
	rows, err := a.db.Query(`
		SELECT s.id, s.role, s.identity, s.started_at, s.ended_at, COUNT(m.id)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.ended_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var m SessionMeta
		if err := rows.Scan(&m.ID, &m.Role, &m.Identity, &m.StartedAt, &m.EndedAt, &m.MessageCount); err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Messages returns the transcript of one session in chronological order.
func (a *Archive) Messages(sessionID string) ([]ArchivedMessage, error) {
	rows, err := a.db.Query(`
		SELECT peer, origin, kind, own, sender, body, file_url, mime_type, created_at
		FROM messages WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []ArchivedMessage
	for rows.Next() {
		var m ArchivedMessage
		var own int
		if err := rows.Scan(&m.Peer, &m.Origin, &m.Kind, &own, &m.Sender, &m.Body, &m.FileURL, &m.MimeType, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Own = own != 0
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrSessionNotFound
	}
	return msgs, nil
}

// =============================================================================
// LIST FORMATTING
// =============================================================================

// FormatSessionList renders archived sessions as a table for the
// history command.
func FormatSessionList(sessions []SessionMeta) string {
	if len(sessions) == 0 {
		return "No archived sessions."
	}

	var sb strings.Builder
	sb.WriteString("Archived sessions:\n")
	sb.WriteString("--------------------------------------------------------------\n")
	sb.WriteString(pad("ID", 10) + " " + pad("Role", 9) + " " + pad("Identity", 14) + " " + pad("Ended", 17) + " Messages\n")
	sb.WriteString("--------------------------------------------------------------\n")

	for _, s := range sessions {
		id := s.ID
		if len(id) > 10 {
			id = id[:10]
		}
		sb.WriteString(pad(id, 10) + " " +
			pad(s.Role, 9) + " " +
			pad(s.Identity, 14) + " " +
			pad(s.EndedAt.Local().Format("2006-01-02 15:04"), 17) + " " +
			fmt.Sprintf("%d", s.MessageCount) + "\n")
	}
	return sb.String()
}

// pad pads a string to the given rune width.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(runes))
}
