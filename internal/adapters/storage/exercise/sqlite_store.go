package exercise

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"strenly/internal/adapters/storage"
	"strenly/internal/domain/authz"
	domain "strenly/internal/domain/exercise"
	"strenly/internal/domain/program"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new exercise SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = `id, organization_id, name, archived_at, created_at`

// visible matches curated exercises and those owned by the organization.
const visible = `(organization_id IS NULL OR organization_id = ?)`

func scanExercise(sc interface{ Scan(...any) error }) (domain.Exercise, error) {
	var ex domain.Exercise
	var orgID, archivedAt sql.NullString
	var createdAt string
	if err := sc.Scan(&ex.ID, &orgID, &ex.Name, &archivedAt, &createdAt); err != nil {
		return domain.Exercise{}, err
	}
	ex.OrganizationID = orgID.String

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return domain.Exercise{}, fmt.Errorf("unsupported time format: %q", createdAt)
	}
	ex.CreatedAt = t
	if archivedAt.Valid {
		a, err := time.Parse(time.RFC3339Nano, archivedAt.String)
		if err != nil {
			return domain.Exercise{}, fmt.Errorf("unsupported time format: %q", archivedAt.String)
		}
		ex.ArchivedAt = &a
	}
	return ex, nil
}

// FindByID retrieves an exercise visible to org.
// PRE: none
// POST: returns (nil, nil) when no visible exercise has the id
func (s *SQLiteStore) FindByID(ctx context.Context, org authz.OrgContext, id string) (*domain.Exercise, error) {
	ex, err := scanExercise(s.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM exercise WHERE id = ? AND `+visible, id, org.OrganizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, program.DatabaseError("find exercise", err)
	}
	return &ex, nil
}

// Save persists an exercise. An empty OrganizationID stores it as curated.
// PRE: ex has been validated
// POST: entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, ex domain.Exercise) error {
	var orgID, archivedAt any
	if ex.OrganizationID != "" {
		orgID = ex.OrganizationID
	}
	if ex.ArchivedAt != nil {
		archivedAt = ex.ArchivedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exercise (`+columns+`) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, archived_at=excluded.archived_at`,
		ex.ID, orgID, ex.Name, archivedAt, ex.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return program.DatabaseError("save exercise", err)
	}
	return nil
}

// List returns the unarchived exercises visible to org.
// PRE: none
// POST: ordered by name
func (s *SQLiteStore) List(ctx context.Context, org authz.OrgContext) ([]domain.Exercise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM exercise WHERE archived_at IS NULL AND `+visible+` ORDER BY name, id`,
		org.OrganizationID)
	if err != nil {
		return nil, program.DatabaseError("list exercises", err)
	}
	defer rows.Close()

	var results []domain.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, program.DatabaseError("scan exercise", err)
		}
		results = append(results, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, program.DatabaseError("list exercises", err)
	}
	return results, nil
}
