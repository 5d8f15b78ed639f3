package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
	"github.com/pressly/goose/v3"
)

// OpenSQLite opens the embedded-file backend at path. The special path
// ":memory:" opens a private in-memory database (used by tests).
//
// Construction fails fast when the data directory cannot be written, so a
// misconfigured deployment on a read-only or ephemeral filesystem is caught
// at startup rather than on the first insert.
func OpenSQLite(path string) (Adapter, error) {
	dsn := "file::memory:?_foreign_keys=on"
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create data dir %s: %w", dir, err)
		}
		if err := probeWritable(dir); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}

	// A single connection serializes writers on the Go side and, for
	// ":memory:", keeps every statement on the same private database.
	// SQLite's own WAL handles durability; no extra locking layer is added.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping sqlite: %w", err)
	}

	return &sqlAdapter{db: db, dialect: DialectSQLite, goose: goose.DialectSQLite3}, nil
}

// probeWritable creates and removes a marker file to verify dir is writable.
func probeWritable(dir string) error {
	probe := filepath.Join(dir, ".writecheck")
	f, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("storage: data dir %s is not writable (read-only or ephemeral filesystem?): %w", dir, err)
	}
	f.Close()
	_ = os.Remove(probe)
	return nil
}
