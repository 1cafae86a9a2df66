// Package sqlite stores session credentials in a SQLite database.
//
// It is an alternative to the JSON file store for hosts that already keep
// client state in SQLite. The pure-Go modernc.org/sqlite driver keeps the
// binary cgo-free.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/session"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Store is a session.BatchStore backed by a single SQLite table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Compile-time interface checks.
var (
	_ session.Store      = (*Store)(nil)
	_ session.BatchStore = (*Store)(nil)
)

// Open opens (creating if needed) the database at path and ensures the
// credentials table exists. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create credentials table: %w", err)
	}
	logger.Debug("sqlite credential store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Apply(ctx, map[string]string{key: value}, nil)
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.Apply(ctx, nil, []string{key})
}

// Apply runs every removal and upsert in one transaction.
func (s *Store) Apply(ctx context.Context, set map[string]string, remove []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, key := range remove {
		if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	now := time.Now().UTC()
	for key, value := range set {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit credentials: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
