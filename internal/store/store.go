// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the durable key-value store backing all client
// state: the session collection blob, model and theme preferences, per-day
// quota counters and the memory blob.
//
// The store is a single sqlite table keyed by fixed string keys. Reads
// degrade to the zero value on any failure; writes return errors but callers
// treat persistence as best-effort and never fail the user action that
// triggered the write.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Well-known keys. The schema version is baked into the key so a future
// format change can migrate by reading the old key and writing the new one.
const (
	KeyChats  = "divineai_chats_v1"
	KeyModel  = "divineai_model"
	KeyTheme  = "divineai_dark"
	KeyMemory = "divineai_memory_v1"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// ErrClosed is returned from writes on a closed store.
var ErrClosed = errors.New("store is closed")

// =============================================================================
// STORE
// =============================================================================

// Store is a synchronous key-value store over a local sqlite database.
type Store struct {
	db     *sql.DB
	closed bool
}

// Open opens (creating if necessary) the store at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// One connection: the store is used from a single logical thread and a
	// second pooled connection would see its own :memory: database in tests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenMemory opens an in-memory store, for tests.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// Close releases the underlying database.
func (s *Store) Close() error {
	s.closed = true
	return s.db.Close()
}

// =============================================================================
// READ / WRITE
// =============================================================================

// Get returns the value for key and whether it was present. Any read failure
// is reported as absence.
func (s *Store) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// Set writes the value for key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	if s.closed {
		return ErrClosed
	}
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Keys returns all keys starting with prefix. Read failures yield an empty
// slice.
func (s *Store) Keys(prefix string) []string {
	rows, err := s.db.Query(
		`SELECT key FROM kv WHERE key LIKE ? ORDER BY key`,
		prefix+"%",
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// =============================================================================
// JSON HELPERS
// =============================================================================

// GetJSON unmarshals the value for key into v. Returns false when the key is
// absent or the stored value is not valid JSON for v.
func (s *Store) GetJSON(key string, v any) bool {
	raw, ok := s.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false
	}
	return true
}

// SetJSON marshals v and writes it under key.
func (s *Store) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %q: %w", key, err)
	}
	return s.Set(key, string(data))
}
