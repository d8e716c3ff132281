package program

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"strenly/internal/domain/authz"
	domain "strenly/internal/domain/program"
)

const rowColumns = `r.id, r.session_id, r.exercise_id, r.order_index, r.group_id, r.order_within_group,
	r.set_type_label, r.notes, r.rest_seconds, r.parent_row_id, r.created_at, r.updated_at`

const seriesColumns = `x.order_index, x.reps, x.reps_max, x.is_amrap, x.intensity_type, x.intensity_value,
	x.intensity_unit, x.unilateral_unit, x.tempo, x.rest_seconds`

// orgScope joins a row alias r up to its program and filters by organization.
const orgScope = ` JOIN program_session s ON s.id = r.session_id
	JOIN program_week w ON w.id = s.week_id
	JOIN program p ON p.id = w.program_id `

func scanRow(sc scanner) (domain.ExerciseRow, error) {
	var r domain.ExerciseRow
	var groupID, setTypeLabel, notes, parentRowID sql.NullString
	var orderWithinGroup, restSeconds sql.NullInt64
	var createdAt, updatedAt string
	if err := sc.Scan(&r.ID, &r.SessionID, &r.ExerciseID, &r.OrderIndex, &groupID, &orderWithinGroup,
		&setTypeLabel, &notes, &restSeconds, &parentRowID, &createdAt, &updatedAt); err != nil {
		return domain.ExerciseRow{}, err
	}
	r.GroupID = groupID.String
	r.OrderWithinGroup = intPtr(orderWithinGroup)
	r.SetTypeLabel = stringPtr(setTypeLabel)
	r.Notes = stringPtr(notes)
	r.RestSeconds = intPtr(restSeconds)
	r.ParentRowID = parentRowID.String

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.ExerciseRow{}, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.ExerciseRow{}, err
	}
	return r, nil
}

// scanSeries reads a row id followed by seriesColumns.
func scanSeries(sc scanner) (string, domain.Series, error) {
	var rowID string
	var s domain.Series
	var reps, repsMax, restSeconds sql.NullInt64
	var intensityType, intensityUnit, unilateralUnit, tempo sql.NullString
	var intensityValue sql.NullFloat64
	if err := sc.Scan(&rowID, &s.OrderIndex, &reps, &repsMax, &s.IsAmrap, &intensityType, &intensityValue,
		&intensityUnit, &unilateralUnit, &tempo, &restSeconds); err != nil {
		return "", domain.Series{}, err
	}
	s.Reps = intPtr(reps)
	s.RepsMax = intPtr(repsMax)
	s.IntensityType = domain.IntensityType(intensityType.String)
	s.IntensityValue = floatPtr(intensityValue)
	s.IntensityUnit = intensityUnit.String
	s.UnilateralUnit = unilateralUnit.String
	s.Tempo = tempo.String
	s.RestSeconds = intPtr(restSeconds)
	return rowID, s, nil
}

func insertRow(ctx context.Context, q querier, r domain.ExerciseRow, createdAt, updatedAt string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO exercise_row (id, session_id, exercise_id, order_index, group_id, order_within_group,
		   set_type_label, notes, rest_seconds, parent_row_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, r.ExerciseID, r.OrderIndex, emptyToNull(r.GroupID), nullable(r.OrderWithinGroup),
		nullable(r.SetTypeLabel), nullable(r.Notes), nullable(r.RestSeconds), emptyToNull(r.ParentRowID),
		createdAt, updatedAt)
	if err != nil {
		return domain.DatabaseError("insert exercise row", err)
	}
	return nil
}

func insertSeries(ctx context.Context, q querier, rowID string, s domain.Series) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO exercise_series (row_id, order_index, reps, reps_max, is_amrap, intensity_type,
		   intensity_value, intensity_unit, unilateral_unit, tempo, rest_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rowID, s.OrderIndex, nullable(s.Reps), nullable(s.RepsMax), s.IsAmrap, emptyToNull(string(s.IntensityType)),
		nullable(s.IntensityValue), emptyToNull(s.IntensityUnit), emptyToNull(s.UnilateralUnit),
		emptyToNull(s.Tempo), nullable(s.RestSeconds))
	if err != nil {
		return domain.DatabaseError("insert exercise series", err)
	}
	return nil
}

// sessionExists reports whether the session belongs to the organization.
func sessionExists(ctx context.Context, q querier, org authz.OrgContext, sessionID string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM program_session s
		 JOIN program_week w ON w.id = s.week_id
		 JOIN program p ON p.id = w.program_id
		 WHERE s.id = ? AND p.organization_id = ?`,
		sessionID, org.OrganizationID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func findRow(ctx context.Context, q querier, org authz.OrgContext, rowID string) (domain.ExerciseRow, error) {
	r, err := scanRow(q.QueryRowContext(ctx,
		`SELECT `+rowColumns+` FROM exercise_row r`+orgScope+`WHERE r.id = ? AND p.organization_id = ?`,
		rowID, org.OrganizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ExerciseRow{}, domain.NotFound(domain.EntityRow, rowID)
	}
	if err != nil {
		return domain.ExerciseRow{}, domain.DatabaseError("find exercise row", err)
	}
	return r, nil
}

// touchProgram bumps updated_at on the program owning the session.
func touchProgram(ctx context.Context, q querier, sessionID string, at time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE program SET updated_at = ? WHERE id = (
		   SELECT w.program_id FROM program_session s JOIN program_week w ON w.id = s.week_id WHERE s.id = ?)`,
		formatTime(at), sessionID)
	if err != nil {
		return domain.DatabaseError("touch program", err)
	}
	return nil
}

// ensureGroup creates groupID in the session on first use, ordered after the
// session's existing groups. An id already used by another session is
// NOT_FOUND.
func ensureGroup(ctx context.Context, q querier, sessionID, groupID string) error {
	var owner string
	err := q.QueryRowContext(ctx, `SELECT session_id FROM exercise_group WHERE id = ?`, groupID).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return domain.DatabaseError("check exercise group", err)
	case owner != sessionID:
		return domain.NotFound(domain.EntityGroup, groupID)
	default:
		return nil
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO exercise_group (id, session_id, name, order_index)
		 SELECT ?, ?, NULL, COALESCE(MAX(order_index), -1) + 1 FROM exercise_group WHERE session_id = ?`,
		groupID, sessionID, sessionID)
	if err != nil {
		return domain.DatabaseError("create exercise group", err)
	}
	return nil
}

// applyOrder writes rowIDs positions as row order indexes, renumbers rows
// within their groups and numbers groups by the run they start. A standalone
// row counts as a run of its own.
func applyOrder(ctx context.Context, q querier, sessionID string, rowIDs []string) error {
	groupOf := make(map[string]string)
	err := queryEach(ctx, q, `SELECT id, group_id FROM exercise_row WHERE session_id = ?`,
		[]any{sessionID}, func(sc scanner) error {
			var id string
			var groupID sql.NullString
			if err := sc.Scan(&id, &groupID); err != nil {
				return err
			}
			groupOf[id] = groupID.String
			return nil
		})
	if err != nil {
		return domain.DatabaseError("read row groups", err)
	}

	within := make(map[string]int)
	run, previous := -1, ""
	for i, id := range rowIDs {
		groupID, ok := groupOf[id]
		if !ok {
			return domain.NotFound(domain.EntityRow, id)
		}
		if groupID == "" || groupID != previous {
			run++
			if groupID != "" {
				if _, err := q.ExecContext(ctx, `UPDATE exercise_group SET order_index = ? WHERE id = ?`, run, groupID); err != nil {
					return domain.DatabaseError("reorder exercise group", err)
				}
			}
		}
		previous = groupID

		var withinGroup any
		if groupID != "" {
			withinGroup = within[groupID]
			within[groupID]++
		}
		if _, err := q.ExecContext(ctx,
			`UPDATE exercise_row SET order_index = ?, order_within_group = ? WHERE id = ?`,
			i, withinGroup, id); err != nil {
			return domain.DatabaseError("reorder exercise row", err)
		}
	}
	return nil
}

// GetMaxExerciseRowOrderIndex returns the highest row order index in the
// session, or -1 when it has no rows.
// PRE: sessionID is non-empty
// POST: NOT_FOUND when the session is not visible to org
func (s *SQLiteStore) GetMaxExerciseRowOrderIndex(ctx context.Context, org authz.OrgContext, sessionID string) (int, error) {
	ok, err := sessionExists(ctx, s.db, org, sessionID)
	if err != nil {
		return 0, domain.DatabaseError("check session", err)
	}
	if !ok {
		return 0, domain.NotFound(domain.EntitySession, sessionID)
	}

	var maxIndex int
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(order_index), -1) FROM exercise_row WHERE session_id = ?`, sessionID).Scan(&maxIndex)
	if err != nil {
		return 0, domain.DatabaseError("get max order", err)
	}
	return maxIndex, nil
}

// CreateExerciseRow inserts a validated row and creates its group on first use.
// PRE: row was built by domain.CreateExerciseRow
// POST: the owning program's updated_at equals row.UpdatedAt
func (s *SQLiteStore) CreateExerciseRow(ctx context.Context, org authz.OrgContext, row domain.ExerciseRow) (domain.ExerciseRow, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ExerciseRow{}, domain.DatabaseError("begin create row", err)
	}
	defer tx.Rollback()

	ok, err := sessionExists(ctx, tx, org, row.SessionID)
	if err != nil {
		return domain.ExerciseRow{}, domain.DatabaseError("check session", err)
	}
	if !ok {
		return domain.ExerciseRow{}, domain.NotFound(domain.EntitySession, row.SessionID)
	}

	if err := createRow(ctx, tx, row); err != nil {
		return domain.ExerciseRow{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.ExerciseRow{}, domain.DatabaseError("commit create row", err)
	}
	return row, nil
}

// CreateExerciseRowInOrder inserts a row and applies a new session order in
// the same transaction, returning the row as stored.
// PRE: rowIDs is a group-adjacent permutation of the session's rows plus row.ID
// POST: nothing is written when the order cannot be applied
func (s *SQLiteStore) CreateExerciseRowInOrder(ctx context.Context, org authz.OrgContext, row domain.ExerciseRow, rowIDs []string) (domain.ExerciseRow, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ExerciseRow{}, domain.DatabaseError("begin create row", err)
	}
	defer tx.Rollback()

	ok, err := sessionExists(ctx, tx, org, row.SessionID)
	if err != nil {
		return domain.ExerciseRow{}, domain.DatabaseError("check session", err)
	}
	if !ok {
		return domain.ExerciseRow{}, domain.NotFound(domain.EntitySession, row.SessionID)
	}
	if err := createRow(ctx, tx, row); err != nil {
		return domain.ExerciseRow{}, err
	}
	if err := applyOrder(ctx, tx, row.SessionID, rowIDs); err != nil {
		return domain.ExerciseRow{}, err
	}
	created, err := findRow(ctx, tx, org, row.ID)
	if err != nil {
		return domain.ExerciseRow{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.ExerciseRow{}, domain.DatabaseError("commit create row", err)
	}
	return created, nil
}

func createRow(ctx context.Context, tx *sql.Tx, row domain.ExerciseRow) error {
	if row.GroupID != "" {
		if err := ensureGroup(ctx, tx, row.SessionID, row.GroupID); err != nil {
			return err
		}
	}
	if err := insertRow(ctx, tx, row, formatTime(row.CreatedAt), formatTime(row.UpdatedAt)); err != nil {
		return err
	}
	return touchProgram(ctx, tx, row.SessionID, row.UpdatedAt)
}

// FindExerciseRowByID returns the row if its program belongs to org.
func (s *SQLiteStore) FindExerciseRowByID(ctx context.Context, org authz.OrgContext, rowID string) (domain.ExerciseRow, error) {
	return findRow(ctx, s.db, org, rowID)
}

// UpdateExerciseRow writes the editable row fields.
// PRE: row was validated by the caller
// POST: order and grouping are unchanged
func (s *SQLiteStore) UpdateExerciseRow(ctx context.Context, org authz.OrgContext, row domain.ExerciseRow) (domain.ExerciseRow, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ExerciseRow{}, domain.DatabaseError("begin update row", err)
	}
	defer tx.Rollback()

	current, err := findRow(ctx, tx, org, row.ID)
	if err != nil {
		return domain.ExerciseRow{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE exercise_row SET exercise_id = ?, set_type_label = ?, notes = ?, rest_seconds = ?, updated_at = ?
		 WHERE id = ?`,
		row.ExerciseID, nullable(row.SetTypeLabel), nullable(row.Notes), nullable(row.RestSeconds),
		formatTime(row.UpdatedAt), row.ID)
	if err != nil {
		return domain.ExerciseRow{}, domain.DatabaseError("update exercise row", err)
	}
	if err := touchProgram(ctx, tx, current.SessionID, row.UpdatedAt); err != nil {
		return domain.ExerciseRow{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.ExerciseRow{}, domain.DatabaseError("commit update row", err)
	}

	current.ExerciseID = row.ExerciseID
	current.SetTypeLabel = row.SetTypeLabel
	current.Notes = row.Notes
	current.RestSeconds = row.RestSeconds
	current.UpdatedAt = row.UpdatedAt
	return current, nil
}

// DeleteExerciseRow removes a row with its sub-rows and series. A group left
// without rows is removed too.
// PRE: rowID is non-empty
// POST: NOT_FOUND when the row is not visible to org
func (s *SQLiteStore) DeleteExerciseRow(ctx context.Context, org authz.OrgContext, rowID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DatabaseError("begin delete row", err)
	}
	defer tx.Rollback()

	row, err := findRow(ctx, tx, org, rowID)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exercise_row WHERE id = ?`, rowID); err != nil {
		return domain.DatabaseError("delete exercise row", err)
	}
	if row.GroupID != "" {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM exercise_group WHERE id = ? AND NOT EXISTS (SELECT 1 FROM exercise_row WHERE group_id = ?)`,
			row.GroupID, row.GroupID); err != nil {
			return domain.DatabaseError("delete empty group", err)
		}
	}
	if err := touchProgram(ctx, tx, row.SessionID, s.now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.DatabaseError("commit delete row", err)
	}
	return nil
}

// FindExerciseRowsBySessionID returns the session's rows ordered by order
// index, ties broken by id.
// PRE: sessionID is non-empty
// POST: NOT_FOUND when the session is not visible to org
func (s *SQLiteStore) FindExerciseRowsBySessionID(ctx context.Context, org authz.OrgContext, sessionID string) ([]domain.ExerciseRow, error) {
	ok, err := sessionExists(ctx, s.db, org, sessionID)
	if err != nil {
		return nil, domain.DatabaseError("check session", err)
	}
	if !ok {
		return nil, domain.NotFound(domain.EntitySession, sessionID)
	}

	var rows []domain.ExerciseRow
	err = queryEach(ctx, s.db,
		`SELECT `+rowColumns+` FROM exercise_row r WHERE r.session_id = ? ORDER BY r.order_index, r.id`,
		[]any{sessionID}, func(sc scanner) error {
			r, err := scanRow(sc)
			if err != nil {
				return err
			}
			rows = append(rows, r)
			return nil
		})
	if err != nil {
		return nil, domain.DatabaseError("list exercise rows", err)
	}
	return rows, nil
}

// ReorderExerciseRows assigns order indexes from the position of each id and
// renumbers groups and rows within their groups to match.
// PRE: rowIDs is a group-adjacent permutation of the session's rows
// POST: order_index values are 0..n-1
func (s *SQLiteStore) ReorderExerciseRows(ctx context.Context, org authz.OrgContext, sessionID string, rowIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DatabaseError("begin reorder", err)
	}
	defer tx.Rollback()

	ok, err := sessionExists(ctx, tx, org, sessionID)
	if err != nil {
		return domain.DatabaseError("check session", err)
	}
	if !ok {
		return domain.NotFound(domain.EntitySession, sessionID)
	}

	if err := applyOrder(ctx, tx, sessionID, rowIDs); err != nil {
		return err
	}
	if err := touchProgram(ctx, tx, sessionID, s.now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.DatabaseError("commit reorder", err)
	}
	return nil
}

// SetExerciseRowGroup moves rows into groupID, or out of any group when it is
// empty, then applies order. The group is created on first use and groups
// left without rows are removed.
// PRE: rowIDs and order belong to sessionID; order is group-adjacent
// POST: moved rows have updated_at = now
func (s *SQLiteStore) SetExerciseRowGroup(ctx context.Context, org authz.OrgContext, sessionID string, rowIDs []string, groupID string, order []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DatabaseError("begin group rows", err)
	}
	defer tx.Rollback()

	ok, err := sessionExists(ctx, tx, org, sessionID)
	if err != nil {
		return domain.DatabaseError("check session", err)
	}
	if !ok {
		return domain.NotFound(domain.EntitySession, sessionID)
	}
	if groupID != "" {
		if err := ensureGroup(ctx, tx, sessionID, groupID); err != nil {
			return err
		}
	}

	now := s.now()
	for _, id := range rowIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE exercise_row SET group_id = ?, updated_at = ? WHERE id = ? AND session_id = ?`,
			emptyToNull(groupID), formatTime(now), id, sessionID)
		if err != nil {
			return domain.DatabaseError("group exercise row", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return domain.DatabaseError("group exercise row", err)
		}
		if n == 0 {
			return domain.NotFound(domain.EntityRow, id)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM exercise_group WHERE session_id = ?
		 AND NOT EXISTS (SELECT 1 FROM exercise_row r WHERE r.group_id = exercise_group.id)`,
		sessionID); err != nil {
		return domain.DatabaseError("delete empty groups", err)
	}
	if err := applyOrder(ctx, tx, sessionID, order); err != nil {
		return err
	}
	if err := touchProgram(ctx, tx, sessionID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.DatabaseError("commit group rows", err)
	}
	return nil
}

// ReplaceExerciseRowSeries swaps a row's prescription for series.
// PRE: every series was built by domain.CreateSeries
// POST: the row has exactly len(series) series
func (s *SQLiteStore) ReplaceExerciseRowSeries(ctx context.Context, org authz.OrgContext, rowID string, series []domain.Series) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DatabaseError("begin replace series", err)
	}
	defer tx.Rollback()

	row, err := findRow(ctx, tx, org, rowID)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exercise_series WHERE row_id = ?`, rowID); err != nil {
		return domain.DatabaseError("clear exercise series", err)
	}
	for _, item := range series {
		if err := insertSeries(ctx, tx, rowID, item); err != nil {
			return err
		}
	}

	now := s.now()
	if _, err := tx.ExecContext(ctx, `UPDATE exercise_row SET updated_at = ? WHERE id = ?`, formatTime(now), rowID); err != nil {
		return domain.DatabaseError("touch exercise row", err)
	}
	if err := touchProgram(ctx, tx, row.SessionID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.DatabaseError("commit replace series", err)
	}
	return nil
}
