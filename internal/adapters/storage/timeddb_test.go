package storage

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(MemoryPath, 1)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTimedDB_CountsEveryStatement verifies each wrapped call is counted once.
func TestTimedDB_CountsEveryStatement(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), DefaultSlowQueryMs)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id, val FROM test")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	count := 0
	for rows.Next() {
		count++
	}
	rows.Close()
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}

	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q, want hello", val)
	}

	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if got := tdb.Stats().Total; got != 4 {
		t.Errorf("Total = %d, want 4", got)
	}
}

// TestTimedDB_SlowQueries verifies queries over the threshold are counted as slow.
func TestTimedDB_SlowQueries(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), 1)
	tdb.threshold = 0

	tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello")
	tdb.QueryRowContext(context.Background(), "SELECT val FROM test WHERE id = ?", "1").Scan(new(string))

	stats := tdb.Stats()
	if stats.Slow != 2 || stats.Total != 2 {
		t.Errorf("Stats = %+v, want 2 slow of 2", stats)
	}
}

// TestTimedDB_DefaultThreshold verifies non-positive thresholds fall back to the default.
func TestTimedDB_DefaultThreshold(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), 0)
	if tdb.threshold != DefaultSlowQueryMs*time.Millisecond {
		t.Errorf("threshold = %v, want %dms", tdb.threshold, DefaultSlowQueryMs)
	}
}

// TestTimedDB_ErrorPassthrough verifies SQL errors are returned unchanged and still counted.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), DefaultSlowQueryMs)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO nonexistent_table VALUES (?)", 1); err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}
	if _, err := tdb.QueryContext(ctx, "SELECT * FROM nonexistent_table"); err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "nonexistent").Scan(&val); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	if got := tdb.Stats().Total; got != 3 {
		t.Errorf("Total = %d, want 3 (must count failures)", got)
	}
}

// TestTimedDB_CancelledContext verifies that a cancelled context returns an error.
func TestTimedDB_CancelledContext(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), DefaultSlowQueryMs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if got := tdb.Stats().Total; got != 1 {
		t.Errorf("Total = %d, want 1", got)
	}
}

// TestTimedDB_RawDB verifies RawDB returns the original *sql.DB.
func TestTimedDB_RawDB(t *testing.T) {
	db := openTimedTestDB(t)
	tdb := NewTimedDB(db, DefaultSlowQueryMs)

	if tdb.RawDB() != db {
		t.Error("RawDB() should return the original *sql.DB")
	}
}

// TestTimedDB_ConcurrentMixedOps verifies counters stay consistent under concurrent calls.
func TestTimedDB_ConcurrentMixedOps(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), DefaultSlowQueryMs)
	ctx := context.Background()
	tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "seed", "data")

	const workers, perWorker = 4, 25
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				var v string
				tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "seed").Scan(&v)
			}
		}()
	}
	wg.Wait()

	if got := tdb.Stats().Total; got != 1+workers*perWorker {
		t.Errorf("Total = %d, want %d", got, 1+workers*perWorker)
	}
}

// BenchmarkTimedDB_OverheadIsolation measures the instrumentation overhead
// by comparing TimedDB vs raw *sql.DB for the same query.
func BenchmarkTimedDB_OverheadIsolation(b *testing.B) {
	db, err := Open(MemoryPath, 1)
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()
	db.Exec("CREATE TABLE bench (id INTEGER PRIMARY KEY, val TEXT)")
	db.Exec("INSERT INTO bench VALUES (1, 'x')")
	ctx := context.Background()

	b.Run("RawDB", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			db.QueryRowContext(ctx, "SELECT val FROM bench WHERE id = 1").Scan(new(string))
		}
	})

	tdb := NewTimedDB(db, DefaultSlowQueryMs)
	b.Run("TimedDB", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			tdb.QueryRowContext(ctx, "SELECT val FROM bench WHERE id = 1").Scan(new(string))
		}
	})
}
