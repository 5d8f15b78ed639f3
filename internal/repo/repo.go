// Package repo contains all database access logic for the Waypost API.
// Each entity family has its own file with an interface and an implementation
// over the storage adapter. No business logic lives here, only SQL and type
// mapping. Statements use the shared `?` placeholder convention; the adapter
// translates per backend.
//
// Every mutation returns an object constructed from caller-known fields
// instead of re-reading the row. That is safe because ids and timestamps are
// assigned here, in the application; nothing in the schema is
// server-computed. Any future column with a database-computed default must
// not take this shortcut.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/storage"
)

// timeLayout is fixed-width (nanoseconds always printed) so the lexicographic
// order of stored values matches chronological order on both backends.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows, allowing one scan
// helper per entity to serve QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// marshalStrings encodes a string list for a JSON text column.
// nil encodes as an empty list so reads always yield a non-nil slice.
func marshalStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode string list: %w", err)
	}
	return string(b), nil
}

func unmarshalStrings(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode string list: %w", err)
	}
	return out, nil
}

// touchTrip refreshes the parent trip's updated_at inside the caller's
// transaction, keeping the "last activity" marker atomic with the stop
// mutation that caused it.
func touchTrip(ctx context.Context, q storage.Querier, tripID string, at time.Time) error {
	n, err := q.Exec(ctx, `UPDATE trips SET updated_at = ? WHERE id = ?`, formatTime(at), tripID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
