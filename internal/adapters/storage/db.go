package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsTable records the applied schema version.
const MigrationsTable = "schema_version"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open opens the SQLite database at path with foreign keys enforced.
// File databases also get WAL mode and a busy timeout.
// PRE: path is non-empty
// POST: connection is alive; an in-memory database is pinned to one connection
func Open(path string, maxOpenConns int) (*sql.DB, error) {
	dsn := path + "?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	if path != MemoryPath {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if path == MemoryPath || maxOpenConns < 1 {
		maxOpenConns = 1
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// MigrateDB applies all pending embedded migrations.
// PRE: db is a valid database connection
// POST: schema is at LatestSchemaVersion; the connection stays open
func MigrateDB(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	// m.Close would close db, which belongs to the caller.

	before, _, _ := m.Version()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	after, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if after != before {
		slog.Info("storage_event", "event", "schema_migrated", "from", before, "to", after)
	}
	return nil
}

// SchemaVersion returns the applied schema version, 0 for a fresh database.
// PRE: db is a valid database connection
// POST: returns an error if the last migration failed halfway
func SchemaVersion(db *sql.DB) (uint, error) {
	m, err := newMigrator(db)
	if err != nil {
		return 0, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

// LatestSchemaVersion returns the highest embedded migration version.
func LatestSchemaVersion() uint {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version
		}
		if err != nil {
			return version
		}
		version = next
	}
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return nil, fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}
