// Package store keeps the run ledger in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database connection and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, drv: drv}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// RunRepo returns a RunRepo backed by this store.
func (s *Store) RunRepo() RunRepo {
	return &runRepo{drv: s.drv}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// schema is applied on every Open. Statements must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id               TEXT PRIMARY KEY,
		started_at       INTEGER NOT NULL,
		finished_at      INTEGER NOT NULL,
		status           TEXT NOT NULL,
		input_path       TEXT NOT NULL DEFAULT '',
		model_path       TEXT NOT NULL DEFAULT '',
		preprocessor_dir TEXT NOT NULL DEFAULT '',
		output_path      TEXT NOT NULL DEFAULT '',
		model_kind       TEXT NOT NULL DEFAULT '',
		records          INTEGER NOT NULL DEFAULT 0,
		high             INTEGER NOT NULL DEFAULT 0,
		medium           INTEGER NOT NULL DEFAULT 0,
		low              INTEGER NOT NULL DEFAULT 0,
		failed_stage     TEXT NOT NULL DEFAULT '',
		error_kind       TEXT NOT NULL DEFAULT '',
		message          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at)`,
}

func migrate(ctx context.Context, drv *entsql.Driver) error {
	for _, stmt := range schema {
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return err
		}
	}
	return nil
}

// DBPath resolves the database file path in priority order:
// 1. flag, when not empty
// 2. LEADSCORE_DB environment variable
// 3. $XDG_DATA_HOME/leadscore/leadscore.db
// 4. ~/.local/share/leadscore/leadscore.db
func DBPath(flag string) (string, error) {
	if flag != "" {
		return flag, ensureDir(flag)
	}
	return DefaultDBPath()
}

// DefaultDBPath is DBPath without a flag value.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("LEADSCORE_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "leadscore", "leadscore.db")
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
