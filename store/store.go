// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists per-remote settings in a SQLite database so
// values survive restarts and overlay the defaults shipped with each
// remote.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/deckhand-dev/deckhand"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	remote TEXT NOT NULL,
	key    TEXT NOT NULL,
	value  TEXT NOT NULL,
	PRIMARY KEY (remote, key)
);
`

// Store is a settings database. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}
	// The driver is not safe for concurrent writers on one connection
	// pool entry; serialize through a single connection and let SQLite
	// queue behind the busy timeout.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure settings database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Settings returns every persisted setting for the given remote.
func (s *Store) Settings(remote deckhand.RemoteId) (map[string]string, error) {
	rows, err := s.db.Query(
		`SELECT key, value FROM settings WHERE remote = ?`, string(remote))
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for %q: %w", remote, err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to load settings for %q: %w", remote, err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load settings for %q: %w", remote, err)
	}
	return settings, nil
}

// Put upserts the given settings for a remote in one transaction.
// Settings not named in the map are left untouched.
func (s *Store) Put(remote deckhand.RemoteId, settings map[string]string) error {
	if len(settings) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to store settings for %q: %w", remote, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO settings (remote, key, value) VALUES (?, ?, ?)
		ON CONFLICT (remote, key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return fmt.Errorf("failed to store settings for %q: %w", remote, err)
	}
	defer stmt.Close()

	for key, value := range settings {
		if _, err := stmt.Exec(string(remote), key, value); err != nil {
			return fmt.Errorf("failed to store setting %q for %q: %w", key, remote, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to store settings for %q: %w", remote, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
