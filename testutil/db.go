// Package testutil provides shared helpers for database-backed tests.
// The default helper runs on a private in-memory SQLite database through the
// same adapter the server uses, so repo and service tests need no external
// services. A Postgres variant is opt-in via TEST_DATABASE_URL.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/waypost/waypost/backend/internal/storage"
)

// NewAdapter opens a migrated in-memory SQLite adapter. Every call returns a
// private database, so tests are isolated from each other. The adapter is
// closed automatically when the test (and all its subtests) finish.
func NewAdapter(t *testing.T) storage.Adapter {
	t.Helper()

	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("testutil.NewAdapter: open: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewAdapter: migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// NewPostgresAdapter opens a migrated adapter against the database specified
// by the TEST_DATABASE_URL environment variable.
//
// The test is skipped automatically if TEST_DATABASE_URL is not set, so the
// Postgres run is opt-in and never breaks environments that lack a DB.
// The schema is assumed disposable: migrations are applied but not rolled
// back, and tests share the database.
func NewPostgresAdapter(t *testing.T) storage.Adapter {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration test")
	}

	db, err := storage.OpenPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPostgresAdapter: open: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewPostgresAdapter: migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
