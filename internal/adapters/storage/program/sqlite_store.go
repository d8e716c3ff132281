package program

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"strenly/internal/adapters/storage"
	"strenly/internal/domain/authz"
	domain "strenly/internal/domain/program"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// querier is satisfied by storage.SQLDB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported time format: %q", s)
	}
	return t, nil
}

const programColumns = `id, organization_id, name, description, athlete_id, is_template, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProgram(sc scanner) (domain.Program, error) {
	var p domain.Program
	var description, athleteID sql.NullString
	var status, createdAt, updatedAt string
	if err := sc.Scan(&p.ID, &p.OrganizationID, &p.Name, &description, &athleteID, &p.IsTemplate,
		&status, &createdAt, &updatedAt); err != nil {
		return domain.Program{}, err
	}
	p.Description = stringPtr(description)
	p.AthleteID = stringPtr(athleteID)
	p.Status = domain.Status(status)

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Program{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Program{}, err
	}
	return p, nil
}

// LoadProgramAggregate rebuilds a Program and its whole tree without
// revalidating it.
// PRE: programID is non-empty
// POST: weeks, sessions, groups, items and series are ordered by order index;
// rows of one group are contiguous
func (s *SQLiteStore) LoadProgramAggregate(ctx context.Context, org authz.OrgContext, programID string) (domain.Program, error) {
	p, err := scanProgram(s.db.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM program WHERE id = ? AND organization_id = ?`,
		programID, org.OrganizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Program{}, domain.NotFound(domain.EntityProgram, programID)
	}
	if err != nil {
		return domain.Program{}, domain.DatabaseError("load program", err)
	}

	weeks, err := s.loadTree(ctx, programID)
	if err != nil {
		return domain.Program{}, domain.DatabaseError("load program tree", err)
	}
	p.Weeks = weeks
	return domain.ReconstituteProgram(p), nil
}

func (s *SQLiteStore) loadTree(ctx context.Context, programID string) ([]domain.Week, error) {
	var weeks []domain.Week
	weekIndex := make(map[string]int)
	err := queryEach(ctx, s.db,
		`SELECT id, name, order_index FROM program_week WHERE program_id = ? ORDER BY order_index`,
		[]any{programID}, func(sc scanner) error {
			var w domain.Week
			if err := sc.Scan(&w.ID, &w.Name, &w.OrderIndex); err != nil {
				return err
			}
			weekIndex[w.ID] = len(weeks)
			weeks = append(weeks, w)
			return nil
		})
	if err != nil {
		return nil, err
	}

	type sessionRef struct{ week, session int }
	sessionIndex := make(map[string]sessionRef)
	err = queryEach(ctx, s.db,
		`SELECT s.id, s.week_id, s.name, s.order_index FROM program_session s
		 JOIN program_week w ON w.id = s.week_id
		 WHERE w.program_id = ? ORDER BY s.order_index`,
		[]any{programID}, func(sc scanner) error {
			var sess domain.Session
			var weekID string
			if err := sc.Scan(&sess.ID, &weekID, &sess.Name, &sess.OrderIndex); err != nil {
				return err
			}
			wi := weekIndex[weekID]
			sessionIndex[sess.ID] = sessionRef{week: wi, session: len(weeks[wi].Sessions)}
			weeks[wi].Sessions = append(weeks[wi].Sessions, sess)
			return nil
		})
	if err != nil {
		return nil, err
	}

	groups := make(map[string]storedGroup)
	err = queryEach(ctx, s.db,
		`SELECT g.id, g.name, g.order_index FROM exercise_group g
		 JOIN program_session s ON s.id = g.session_id
		 JOIN program_week w ON w.id = s.week_id
		 WHERE w.program_id = ?`,
		[]any{programID}, func(sc scanner) error {
			var id string
			var g storedGroup
			var name sql.NullString
			if err := sc.Scan(&id, &name, &g.orderIndex); err != nil {
				return err
			}
			g.name = stringPtr(name)
			groups[id] = g
			return nil
		})
	if err != nil {
		return nil, err
	}

	series := make(map[string][]domain.Series)
	err = queryEach(ctx, s.db,
		`SELECT x.row_id, `+seriesColumns+` FROM exercise_series x
		 JOIN exercise_row r ON r.id = x.row_id
		 JOIN program_session s ON s.id = r.session_id
		 JOIN program_week w ON w.id = s.week_id
		 WHERE w.program_id = ? ORDER BY x.row_id, x.order_index`,
		[]any{programID}, func(sc scanner) error {
			rowID, item, err := scanSeries(sc)
			if err != nil {
				return err
			}
			series[rowID] = append(series[rowID], item)
			return nil
		})
	if err != nil {
		return nil, err
	}

	rowsBySession := make(map[string][]domain.ExerciseRow)
	err = queryEach(ctx, s.db,
		`SELECT `+rowColumns+` FROM exercise_row r
		 JOIN program_session s ON s.id = r.session_id
		 JOIN program_week w ON w.id = s.week_id
		 WHERE w.program_id = ? ORDER BY r.order_index, r.id`,
		[]any{programID}, func(sc scanner) error {
			r, err := scanRow(sc)
			if err != nil {
				return err
			}
			rowsBySession[r.SessionID] = append(rowsBySession[r.SessionID], r)
			return nil
		})
	if err != nil {
		return nil, err
	}

	for sessionID, rows := range rowsBySession {
		ref := sessionIndex[sessionID]
		weeks[ref.week].Sessions[ref.session].ExerciseGroups = groupRows(sessionID, rows, groups, series)
	}
	return weeks, nil
}

type storedGroup struct {
	name       *string
	orderIndex int
}

// groupRows turns session-ordered rows back into exercise groups. Stored
// groups keep their order index and items their order within the group.
// Rows without a group become single item groups keyed by the row id,
// numbered one past the group before them.
func groupRows(sessionID string, rows []domain.ExerciseRow, stored map[string]storedGroup, series map[string][]domain.Series) []domain.ExerciseGroup {
	byID := make(map[string]domain.ExerciseRow, len(rows))
	ids := make([]string, 0, len(rows))
	groupOf := make(map[string]string, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
		ids = append(ids, r.ID)
		groupOf[r.ID] = r.GroupID
	}

	var groups []domain.ExerciseGroup
	for _, id := range domain.EnsureGroupAdjacency(ids, groupOf) {
		r := byID[id]
		last := len(groups) - 1
		if r.GroupID == "" || last < 0 || groups[last].ID != r.GroupID {
			g := domain.ExerciseGroup{ID: r.GroupID, SessionID: sessionID}
			if info, ok := stored[r.GroupID]; ok && r.GroupID != "" {
				g.OrderIndex = info.orderIndex
				g.Name = info.name
			} else {
				if r.GroupID == "" {
					g.ID = r.ID
				}
				if last >= 0 {
					g.OrderIndex = groups[last].OrderIndex + 1
				}
			}
			groups = append(groups, g)
			last++
		}
		orderIndex := len(groups[last].Items)
		if r.OrderWithinGroup != nil {
			orderIndex = *r.OrderWithinGroup
		}
		groups[last].Items = append(groups[last].Items, domain.GroupItem{
			ID:           r.ID,
			ExerciseID:   r.ExerciseID,
			OrderIndex:   orderIndex,
			SetTypeLabel: r.SetTypeLabel,
			Notes:        r.Notes,
			RestSeconds:  r.RestSeconds,
			ParentItemID: r.ParentRowID,
			Series:       series[r.ID],
		})
	}
	return groups
}

// SaveProgramAggregate whole-replaces a Program and its tree in one
// transaction. Row creation times survive the replace.
// PRE: p has been validated
// POST: returns the stored updated_at; a program owned by another
// organization is NOT_FOUND and left untouched
func (s *SQLiteStore) SaveProgramAggregate(ctx context.Context, org authz.OrgContext, p domain.Program) (time.Time, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, domain.DatabaseError("begin save", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT organization_id FROM program WHERE id = ?`, p.ID).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return time.Time{}, domain.DatabaseError("check program owner", err)
	case owner != org.OrganizationID:
		return time.Time{}, domain.NotFound(domain.EntityProgram, p.ID)
	}

	rowCreated := make(map[string]string)
	err = queryEach(ctx, tx,
		`SELECT r.id, r.created_at FROM exercise_row r
		 JOIN program_session s ON s.id = r.session_id
		 JOIN program_week w ON w.id = s.week_id
		 WHERE w.program_id = ?`,
		[]any{p.ID}, func(sc scanner) error {
			var id, createdAt string
			if err := sc.Scan(&id, &createdAt); err != nil {
				return err
			}
			rowCreated[id] = createdAt
			return nil
		})
	if err != nil {
		return time.Time{}, domain.DatabaseError("read row timestamps", err)
	}

	updatedAt := formatTime(p.UpdatedAt)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO program (`+programColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, description=excluded.description, athlete_id=excluded.athlete_id,
		   is_template=excluded.is_template, status=excluded.status, updated_at=excluded.updated_at`,
		p.ID, org.OrganizationID, p.Name, nullable(p.Description), nullable(p.AthleteID), p.IsTemplate,
		string(p.Status), formatTime(p.CreatedAt), updatedAt)
	if err != nil {
		return time.Time{}, domain.DatabaseError("save program", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM program_week WHERE program_id = ?`, p.ID); err != nil {
		return time.Time{}, domain.DatabaseError("clear program tree", err)
	}

	for _, w := range p.Weeks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO program_week (id, program_id, name, order_index) VALUES (?, ?, ?, ?)`,
			w.ID, p.ID, w.Name, w.OrderIndex); err != nil {
			return time.Time{}, domain.DatabaseError("save week", err)
		}
		for _, sess := range w.Sessions {
			if err := insertSession(ctx, tx, w.ID, sess, rowCreated, updatedAt); err != nil {
				return time.Time{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return time.Time{}, domain.DatabaseError("commit save", err)
	}
	return p.UpdatedAt, nil
}

func insertSession(ctx context.Context, tx *sql.Tx, weekID string, sess domain.Session, rowCreated map[string]string, updatedAt string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO program_session (id, week_id, name, order_index) VALUES (?, ?, ?, ?)`,
		sess.ID, weekID, sess.Name, sess.OrderIndex); err != nil {
		return domain.DatabaseError("save session", err)
	}
	for _, g := range sess.ExerciseGroups {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exercise_group (id, session_id, name, order_index) VALUES (?, ?, ?, ?)`,
			g.ID, sess.ID, nullable(g.Name), g.OrderIndex); err != nil {
			return domain.DatabaseError("save exercise group", err)
		}
	}

	series := make(map[string][]domain.Series)
	for _, g := range sess.ExerciseGroups {
		for _, item := range g.Items {
			series[item.ID] = item.Series
		}
	}
	for _, r := range domain.FlattenSession(sess) {
		createdAt, ok := rowCreated[r.ID]
		if !ok {
			createdAt = updatedAt
		}
		if err := insertRow(ctx, tx, r, createdAt, updatedAt); err != nil {
			return err
		}
		for _, item := range series[r.ID] {
			if err := insertSeries(ctx, tx, r.ID, item); err != nil {
				return err
			}
		}
	}
	return nil
}

// CountPrograms returns how many programs the organization owns.
func (s *SQLiteStore) CountPrograms(ctx context.Context, org authz.OrgContext) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM program WHERE organization_id = ?`, org.OrganizationID).Scan(&count)
	if err != nil {
		return 0, domain.DatabaseError("count programs", err)
	}
	return count, nil
}

// ListPrograms returns the organization's programs without their weeks.
// PRE: none
// POST: ordered by name
func (s *SQLiteStore) ListPrograms(ctx context.Context, org authz.OrgContext) ([]domain.Program, error) {
	var results []domain.Program
	err := queryEach(ctx, s.db,
		`SELECT `+programColumns+` FROM program WHERE organization_id = ? ORDER BY name, id`,
		[]any{org.OrganizationID}, func(sc scanner) error {
			p, err := scanProgram(sc)
			if err != nil {
				return err
			}
			results = append(results, p)
			return nil
		})
	if err != nil {
		return nil, domain.DatabaseError("list programs", err)
	}
	return results, nil
}

// queryEach runs query and calls fn for every result row.
func queryEach(ctx context.Context, q querier, query string, args []any, fn func(scanner) error) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func emptyToNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}
