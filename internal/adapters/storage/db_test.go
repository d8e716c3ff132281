package storage

import (
	"database/sql"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(MemoryPath, 1)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expectedTables is the sorted list of tables after all migrations.
var expectedTables = []string{
	"exercise",
	"exercise_group",
	"exercise_row",
	"exercise_series",
	"program",
	"program_session",
	"program_week",
	"schema_version",
}

// TestMigrateDB_Fresh verifies all migrations apply cleanly to an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", version, LatestSchemaVersion())
	}
	if diff := cmp.Diff(expectedTables, getTableNames(t, db)); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
}

// TestMigrateDB_Idempotent verifies running migrations twice is a no-op.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db); err != nil {
		t.Fatalf("first MigrateDB: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO exercise (id, name, created_at) VALUES ('ex-1', 'Back Squat', '2026-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("seed row: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("second MigrateDB: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM exercise").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("exercise rows = %d, want 1 (data must survive re-migration)", count)
	}
}

// TestSchemaVersion_FreshDB verifies an unmigrated database reports version 0.
func TestSchemaVersion_FreshDB(t *testing.T) {
	version, err := SchemaVersion(openTestDB(t))
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d, want 0", version)
	}
}

// TestLatestSchemaVersion verifies the embedded migrations are discovered.
func TestLatestSchemaVersion(t *testing.T) {
	if got := LatestSchemaVersion(); got < 1 {
		t.Errorf("LatestSchemaVersion = %d, want >= 1", got)
	}
}

// TestOpen_ForeignKeys verifies the pragma reaches every connection.
func TestOpen_ForeignKeys(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "strenly.db"), 4)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if enabled != 1 {
		t.Errorf("foreign_keys = %d, want 1", enabled)
	}

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

// TestMigrateDB_CascadesRows verifies deleting a program removes its whole tree.
func TestMigrateDB_CascadesRows(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}

	stmts := []string{
		`INSERT INTO program (id, organization_id, name, created_at, updated_at) VALUES ('p1', 'org', 'Block', 'x', 'x')`,
		`INSERT INTO program_week (id, program_id, name, order_index) VALUES ('w1', 'p1', 'Week 1', 0)`,
		`INSERT INTO program_session (id, week_id, name, order_index) VALUES ('s1', 'w1', 'Day A', 0)`,
		`INSERT INTO exercise_row (id, session_id, exercise_id, order_index, created_at, updated_at) VALUES ('r1', 's1', 'ex', 0, 'x', 'x')`,
		`INSERT INTO exercise_series (row_id, order_index, reps) VALUES ('r1', 0, 5)`,
		`DELETE FROM program WHERE id = 'p1'`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	var remaining int
	if err := db.QueryRow("SELECT (SELECT COUNT(*) FROM exercise_row) + (SELECT COUNT(*) FROM exercise_series)").Scan(&remaining); err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining rows = %d, want 0", remaining)
	}
}
