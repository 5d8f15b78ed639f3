package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
)

// OpenPostgres opens the networked backend using the given connection string.
// The pool is managed by database/sql on top of the pgx stdlib driver; write
// conflict resolution is delegated entirely to the server.
func OpenPostgres(ctx context.Context, dsn string) (Adapter, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping postgres: %w", err)
	}
	return &sqlAdapter{
		db:      db,
		dialect: DialectPostgres,
		goose:   goose.DialectPostgres,
		rw:      rewritePlaceholders,
	}, nil
}

// rewritePlaceholders translates the shared `?` placeholder convention into
// Postgres-native `$1..$n`. The pass is deterministic and quote-aware:
// `?` inside single-quoted literals or double-quoted identifiers is left
// untouched.
func rewritePlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 16)

	n := 0
	inSingle, inDouble := false, false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			b.WriteByte(c)
		case c == '"' && !inSingle:
			inDouble = !inDouble
			b.WriteByte(c)
		case c == '?' && !inSingle && !inDouble:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
