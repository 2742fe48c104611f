// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store keeps the motion event history in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/relabs-tech/motion_events/internal/events"

	_ "modernc.org/sqlite"
)

// MaxLimit caps how many events Recent returns.
const MaxLimit = 1000

const schema = `
CREATE TABLE IF NOT EXISTS motion_events (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	id        TEXT    NOT NULL UNIQUE,
	kind      TEXT    NOT NULL,
	source    TEXT    NOT NULL,
	at_ns     INTEGER NOT NULL,
	magnitude REAL    NOT NULL,
	axis      TEXT    NOT NULL,
	roll      REAL    NOT NULL,
	pitch     REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS motion_events_kind_at ON motion_events (kind, at_ns);
`

// Store is an event history backed by one SQLite file. It is safe for
// concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: init %s: %w", path, err)
		}
	}

	log.Printf("store: event history at %s", path)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert records evs in one transaction.
func (s *Store) Insert(ctx context.Context, evs ...events.Event) error {
	if len(evs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO motion_events
		(id, kind, source, at_ns, magnitude, axis, roll, pitch) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range evs {
		if _, err := stmt.ExecContext(ctx, e.ID.String(), string(e.Kind), e.Source,
			e.Time.UnixNano(), e.Magnitude, e.Axis.String(), e.Roll, e.Pitch); err != nil {
			return fmt.Errorf("store: insert %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. An empty kind matches
// every kind. limit is clamped to 1..MaxLimit.
func (s *Store) Recent(ctx context.Context, limit int, kind events.Kind) ([]events.Event, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	query := `SELECT id, kind, source, at_ns, magnitude, axis, roll, pitch FROM motion_events`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY at_ns DESC, seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	out := []events.Event{}
	for rows.Next() {
		var (
			e     events.Event
			id, k string
			atNs  int64
			axis  string
		)
		if err := rows.Scan(&id, &k, &e.Source, &atNs, &e.Magnitude, &axis, &e.Roll, &e.Pitch); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("store: bad id %q: %w", id, err)
		}
		e.Kind = events.Kind(k)
		e.Time = time.Unix(0, atNs)
		if err := (&e.Axis).UnmarshalText([]byte(axis)); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Counts returns how many events of each kind are stored.
func (s *Store) Counts(ctx context.Context) (map[events.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM motion_events GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("store: count: %w", err)
	}
	defer rows.Close()

	counts := make(map[events.Kind]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("store: scan count: %w", err)
		}
		counts[events.Kind(kind)] = n
	}
	return counts, rows.Err()
}
