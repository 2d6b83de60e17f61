// Package store persists engine state in SQLite. Domain types live in
// their own packages; this package owns the schema, the record
// conversions, and the repository implementations.
package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrConflict is returned when an optimistic-concurrency update loses
// the race: the card changed under the caller. Retryable.
var ErrConflict = errors.New("store: version conflict")

// Store holds the database handle and provides access to repositories.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at dsn, applies pragmas, and
// creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// DB returns the underlying handle for raw queries.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Cards returns the card repository.
func (s *Store) Cards() CardRepo { return &cardRepo{db: s.db} }

// Events returns the review-event repository.
func (s *Store) Events() ReviewEventRepo { return &eventRepo{db: s.db} }

// Items returns the item repository.
func (s *Store) Items() ItemRepo { return &itemRepo{db: s.db} }

// Stats returns the item-statistics repository.
func (s *Store) Stats() StatsRepo { return &statsRepo{db: s.db} }

// Abilities returns the ability-estimate repository.
func (s *Store) Abilities() AbilityRepo { return &abilityRepo{db: s.db} }

// Assignments returns the algorithm-assignment repository.
func (s *Store) Assignments() AssignmentRepo { return &assignmentRepo{db: s.db} }

// applyPragmas configures SQLite for concurrent single-node use.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return errors.Wrap(err, p)
		}
	}
	return nil
}

func createSchema(db *sqlx.DB) error {
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return errors.Wrap(err, "create schema")
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. VOCARDO_DB environment variable
// 2. $XDG_DATA_HOME/vocardo/vocardo.db
// 3. ~/.local/share/vocardo/vocardo.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("VOCARDO_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "vocardo", "vocardo.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
