package chainq

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Execer is the statement-execution surface a Query runs against.
// *sql.DB, *sql.Tx, and *DB all satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Execer = (*sql.DB)(nil)
	_ Execer = (*sql.Tx)(nil)
	_ Execer = (*DB)(nil)
)

// DB wraps a SQLite connection pool with query logging.
type DB struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// Open opens the SQLite database at path, creating the file if it does
// not exist. Pass ":memory:" for an in-memory database. Pass
// zerolog.Nop() to disable logging.
func Open(path string, logger zerolog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if strings.Contains(path, ":memory:") {
		// Each pooled connection gets its own empty in-memory database,
		// and last_insert_rowid() is connection-scoped.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("path", path).
		Msg("Database opened")

	return &DB{db: db, path: path, logger: logger}, nil
}

// Wrap adapts an already opened connection pool so queries run through
// it with logging. Close closes the pool.
func Wrap(db *sql.DB, logger zerolog.Logger) *DB {
	return &DB{db: db, logger: logger}
}

// Table starts a query against the named table, bound to this handle.
func (d *DB) Table(name string) Query {
	return Query{exec: d, table: name}
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}

	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	d.logger.Info().
		Str("path", d.path).
		Msg("Database closed")
	return nil
}

// Ping checks if the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// DB returns the underlying sql.DB connection pool.
func (d *DB) DB() *sql.DB {
	return d.db
}

// Path returns the path the database was opened with.
func (d *DB) Path() string {
	return d.path
}

// ExecContext runs a statement, logging it at trace level.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	d.logQuery(query, args)
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.logExecuted(start)
	return res, err
}

// QueryContext runs a query, logging it at trace level.
func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	d.logQuery(query, args)
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.logExecuted(start)
	return rows, err
}

// QueryRowContext runs a single-row query, logging it at trace level.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	d.logQuery(query, args)
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.logExecuted(start)
	return row
}

func (d *DB) logQuery(query string, args []any) {
	if e := d.logger.Trace(); e.Enabled() {
		e.Str("query", cleanQueryWhitespace(interpolateQuery(query, args))).
			Msg("Executing query")
	}
}

func (d *DB) logExecuted(start time.Time) {
	d.logger.Trace().
		Dur("duration_ms", time.Since(start)).
		Msg("Query executed")
}
