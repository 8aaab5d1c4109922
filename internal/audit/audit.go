// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit keeps a local trail of session lifecycle events in a
// SQLite database under the config directory. It records logins,
// logouts, and forced sign-outs; message content never lands here.
package audit

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/supportautopilot/autopilot-tui/internal/config"
)

// =============================================================================
// ERRORS AND SCHEMA
// =============================================================================

var ErrClosed = errors.New("audit: log is closed")

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	event     TEXT NOT NULL,
	detail    TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at);
`

// Event is one recorded lifecycle event.
type Event struct {
	ID        int64
	Event     string
	Detail    string
	CreatedAt time.Time
}

// =============================================================================
// AUDIT LOG
// =============================================================================

// Log is an append-only event trail. It satisfies session.Recorder.
type Log struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// DefaultPath returns the audit database path under the config directory.
func DefaultPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "audit.db"), nil
}

// Open opens or creates the audit database at path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure audit database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Record appends an event. Failures are logged, not returned; an audit
// hiccup must never block a session operation.
func (l *Log) Record(event, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}

	_, err := l.db.Exec(
		"INSERT INTO events (event, detail, created_at) VALUES (?, ?, ?)",
		event, detail, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		log.Printf("audit: record %s failed: %v", event, err)
	}
}

// Recent returns up to n events, newest first.
func (l *Log) Recent(n int) ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	if n <= 0 {
		n = 50
	}

	rows, err := l.db.Query(
		"SELECT id, event, detail, created_at FROM events ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var created string
		if err := rows.Scan(&e.ID, &e.Event, &e.Detail, &created); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
			e.CreatedAt = t
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close releases the database handle. Safe to call twice.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}
