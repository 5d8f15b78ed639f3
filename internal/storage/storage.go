// Package storage provides the database adapter shared by the two supported
// backends: an embedded SQLite file for self-hosting and Postgres for hosted
// deployments. Repositories depend on Querier/Adapter, never on a concrete
// driver, so the backends are interchangeable.
//
// Statements are written once, with SQLite-native `?` placeholders; the
// Postgres variant rewrites them to `$1..$n` before execution. The Dialect
// tag exists for cosmetic decisions only; repositories must not branch on it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/waypost/waypost/backend/migrations"
)

// Dialect identifies which backend an adapter talks to.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Querier is the statement-level contract shared by an adapter and by the
// handle passed to transactional work. Exec reports the number of rows
// affected; QueryRow defers errors (including sql.ErrNoRows for an absent
// row) to Scan, per database/sql convention.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	Exec(ctx context.Context, query string, args ...any) (int64, error)
}

// Adapter is the backend-agnostic database handle. Exactly one adapter is
// constructed per process, in the composition root, and injected into the
// repositories.
type Adapter interface {
	Querier

	// Dialect reports which backend is active. Cosmetic use only.
	Dialect() Dialect

	// InTx runs fn with a transaction-scoped Querier. All statements issued
	// through that handle commit together; any error returned by fn (or a
	// panic) rolls back every statement issued since the transaction began,
	// and the original failure is re-raised to the caller.
	InTx(ctx context.Context, fn func(q Querier) error) error

	// Migrate applies any pending schema migrations. Call exactly once at
	// startup, before the first real query.
	Migrate(ctx context.Context) error

	Close() error
}

// rewriteFunc deterministically translates the shared placeholder convention
// into a backend's native syntax. nil means the shared convention is already
// native.
type rewriteFunc func(query string) string

// sqlAdapter implements Adapter for both backends over database/sql; the two
// variants differ only in driver, dialect tag, and placeholder rewrite.
type sqlAdapter struct {
	db      *sql.DB
	dialect Dialect
	goose   goose.Dialect
	rw      rewriteFunc
}

func (a *sqlAdapter) stmt(query string) string {
	if a.rw != nil {
		return a.rw(query)
	}
	return query
}

func (a *sqlAdapter) Dialect() Dialect { return a.dialect }

func (a *sqlAdapter) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return a.db.QueryContext(ctx, a.stmt(query), args...)
}

func (a *sqlAdapter) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return a.db.QueryRowContext(ctx, a.stmt(query), args...)
}

func (a *sqlAdapter) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := a.db.ExecContext(ctx, a.stmt(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (a *sqlAdapter) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txQuerier{tx: tx, rw: a.rw}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("storage: rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit tx: %w", err)
	}
	return nil
}

func (a *sqlAdapter) Migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(a.goose, a.db, migrations.FS)
	if err != nil {
		return fmt.Errorf("storage: create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("storage: run migrations: %w", err)
	}
	return nil
}

func (a *sqlAdapter) Close() error { return a.db.Close() }

// txQuerier is the transaction-scoped Querier handed to InTx work.
type txQuerier struct {
	tx *sql.Tx
	rw rewriteFunc
}

func (t *txQuerier) stmt(query string) string {
	if t.rw != nil {
		return t.rw(query)
	}
	return query
}

func (t *txQuerier) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.stmt(query), args...)
}

func (t *txQuerier) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.stmt(query), args...)
}

func (t *txQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, t.stmt(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
