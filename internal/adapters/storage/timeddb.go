package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"sync/atomic"
	"time"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the default threshold for slow query warnings.
const DefaultSlowQueryMs = 50

// QueryStats counts statements issued through a TimedDB.
type QueryStats struct {
	Total int64
	Slow  int64
}

// TimedDB wraps a *sql.DB to log slow queries and count statements.
// Satisfies the SQLDB interface so it can be passed to any store constructor.
type TimedDB struct {
	db        *sql.DB
	threshold time.Duration
	total     atomic.Int64
	slow      atomic.Int64
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// A non-positive slowQueryMs falls back to DefaultSlowQueryMs.
// PRE: db is a valid database connection
// POST: Returns a TimedDB that logs queries at or above the threshold as slow
func NewTimedDB(db *sql.DB, slowQueryMs int) *TimedDB {
	if slowQueryMs <= 0 {
		slowQueryMs = DefaultSlowQueryMs
	}
	return &TimedDB{
		db:        db,
		threshold: time.Duration(slowQueryMs) * time.Millisecond,
	}
}

// RawDB returns the underlying *sql.DB (needed for migrations and pool config).
// PRE: none
// POST: returns the unwrapped *sql.DB
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Stats returns a snapshot of the statement counters.
func (t *TimedDB) Stats() QueryStats {
	return QueryStats{Total: t.total.Load(), Slow: t.slow.Load()}
}

func (t *TimedDB) logQuery(op string, start time.Time) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0
	t.total.Add(1)

	if elapsed >= t.threshold {
		t.slow.Add(1)
		slog.Warn("slow_query",
			"op", op,
			"duration_ms", durationMs,
		)
		return
	}
	slog.Debug("query",
		"op", op,
		"duration_ms", durationMs,
	)
}

// ExecContext wraps sql.DB.ExecContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed and counted
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.logQuery("ExecContext", start)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed and counted
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.logQuery("QueryContext", start)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed and counted
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.logQuery("QueryRowContext", start)
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing. Statements run on the returned
// transaction are not timed.
// PRE: ctx is valid
// POST: transaction started and counted
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.logQuery("BeginTx", start)
	return tx, err
}

// Close closes the underlying database connection.
// PRE: none
// POST: database connection closed
func (t *TimedDB) Close() error {
	return t.db.Close()
}
