package orchestrators

import (
	"context"
	"slices"
	"strings"
	"time"

	"strenly/internal/domain/authz"
	"strenly/internal/domain/exercise"
	"strenly/internal/domain/program"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

var (
	coach  = authz.OrgContext{OrganizationID: "org-1", UserID: "user-1", Role: authz.RoleMember}
	admin  = authz.OrgContext{OrganizationID: "org-1", UserID: "user-2", Role: authz.RoleAdmin}
	nobody = authz.OrgContext{OrganizationID: "org-1", UserID: "user-3", Role: authz.Role("viewer")}
)

// mockProgramStore implements every program store port in memory and counts
// calls so tests can assert that nothing was touched.
type mockProgramStore struct {
	sessions map[string]bool
	rows     map[string]program.ExerciseRow
	series   map[string][]program.Series
	programs map[string]program.Program

	calls     int
	saved     []program.Program
	reordered []string
	failWith  error
}

func newMockProgramStore() *mockProgramStore {
	return &mockProgramStore{
		sessions: make(map[string]bool),
		rows:     make(map[string]program.ExerciseRow),
		series:   make(map[string][]program.Series),
		programs: make(map[string]program.Program),
	}
}

func (m *mockProgramStore) addRow(r program.ExerciseRow) {
	m.sessions[r.SessionID] = true
	m.rows[r.ID] = r
}

func (m *mockProgramStore) GetMaxExerciseRowOrderIndex(_ context.Context, _ authz.OrgContext, sessionID string) (int, error) {
	m.calls++
	if m.failWith != nil {
		return 0, m.failWith
	}
	if !m.sessions[sessionID] {
		return 0, program.NotFound(program.EntitySession, sessionID)
	}
	maxOrder := -1
	for _, r := range m.rows {
		if r.SessionID == sessionID && r.OrderIndex > maxOrder {
			maxOrder = r.OrderIndex
		}
	}
	return maxOrder, nil
}

func (m *mockProgramStore) CreateExerciseRow(_ context.Context, _ authz.OrgContext, row program.ExerciseRow) (program.ExerciseRow, error) {
	m.calls++
	if m.failWith != nil {
		return program.ExerciseRow{}, m.failWith
	}
	m.rows[row.ID] = row
	return row, nil
}

func (m *mockProgramStore) FindExerciseRowByID(_ context.Context, _ authz.OrgContext, rowID string) (program.ExerciseRow, error) {
	m.calls++
	r, ok := m.rows[rowID]
	if !ok {
		return program.ExerciseRow{}, program.NotFound(program.EntityRow, rowID)
	}
	return r, nil
}

func (m *mockProgramStore) UpdateExerciseRow(_ context.Context, _ authz.OrgContext, row program.ExerciseRow) (program.ExerciseRow, error) {
	m.calls++
	if _, ok := m.rows[row.ID]; !ok {
		return program.ExerciseRow{}, program.NotFound(program.EntityRow, row.ID)
	}
	m.rows[row.ID] = row
	return row, nil
}

func (m *mockProgramStore) DeleteExerciseRow(_ context.Context, _ authz.OrgContext, rowID string) error {
	m.calls++
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.rows[rowID]; !ok {
		return program.NotFound(program.EntityRow, rowID)
	}
	delete(m.rows, rowID)
	delete(m.series, rowID)
	return nil
}

func (m *mockProgramStore) FindExerciseRowsBySessionID(_ context.Context, _ authz.OrgContext, sessionID string) ([]program.ExerciseRow, error) {
	m.calls++
	if !m.sessions[sessionID] {
		return nil, program.NotFound(program.EntitySession, sessionID)
	}
	var rows []program.ExerciseRow
	for _, r := range m.rows {
		if r.SessionID == sessionID {
			rows = append(rows, r)
		}
	}
	slices.SortFunc(rows, func(a, b program.ExerciseRow) int {
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex - b.OrderIndex
		}
		return strings.Compare(a.ID, b.ID)
	})
	return rows, nil
}

func (m *mockProgramStore) ReorderExerciseRows(_ context.Context, _ authz.OrgContext, sessionID string, rowIDs []string) error {
	m.calls++
	if !m.sessions[sessionID] {
		return program.NotFound(program.EntitySession, sessionID)
	}
	m.applyOrder(rowIDs)
	return nil
}

func (m *mockProgramStore) CreateExerciseRowInOrder(_ context.Context, _ authz.OrgContext, row program.ExerciseRow, rowIDs []string) (program.ExerciseRow, error) {
	m.calls++
	if m.failWith != nil {
		return program.ExerciseRow{}, m.failWith
	}
	if !m.sessions[row.SessionID] {
		return program.ExerciseRow{}, program.NotFound(program.EntitySession, row.SessionID)
	}
	m.rows[row.ID] = row
	m.applyOrder(rowIDs)
	return m.rows[row.ID], nil
}

func (m *mockProgramStore) SetExerciseRowGroup(_ context.Context, _ authz.OrgContext, sessionID string, rowIDs []string, groupID string, order []string) error {
	m.calls++
	if m.failWith != nil {
		return m.failWith
	}
	if !m.sessions[sessionID] {
		return program.NotFound(program.EntitySession, sessionID)
	}
	for _, id := range rowIDs {
		r, ok := m.rows[id]
		if !ok {
			return program.NotFound(program.EntityRow, id)
		}
		r.GroupID = groupID
		m.rows[id] = r
	}
	m.applyOrder(order)
	return nil
}

func (m *mockProgramStore) applyOrder(rowIDs []string) {
	for i, id := range rowIDs {
		r := m.rows[id]
		r.OrderIndex = i
		m.rows[id] = r
	}
	m.reordered = rowIDs
}

func (m *mockProgramStore) ReplaceExerciseRowSeries(_ context.Context, _ authz.OrgContext, rowID string, series []program.Series) error {
	m.calls++
	if _, ok := m.rows[rowID]; !ok {
		return program.NotFound(program.EntityRow, rowID)
	}
	m.series[rowID] = series
	return nil
}

func (m *mockProgramStore) LoadProgramAggregate(_ context.Context, _ authz.OrgContext, programID string) (program.Program, error) {
	m.calls++
	p, ok := m.programs[programID]
	if !ok {
		return program.Program{}, program.NotFound(program.EntityProgram, programID)
	}
	return p, nil
}

func (m *mockProgramStore) SaveProgramAggregate(_ context.Context, _ authz.OrgContext, p program.Program) (time.Time, error) {
	m.calls++
	if m.failWith != nil {
		return time.Time{}, m.failWith
	}
	m.programs[p.ID] = p
	m.saved = append(m.saved, p)
	return p.UpdatedAt, nil
}

func (m *mockProgramStore) CountPrograms(_ context.Context, _ authz.OrgContext) (int, error) {
	m.calls++
	return len(m.programs), nil
}

// mockExerciseStore implements ExerciseLookup and ExerciseStoreForSeed.
type mockExerciseStore struct {
	exercises map[string]exercise.Exercise
	lookupErr error
	saves     int
}

func newMockExerciseStore(exs ...exercise.Exercise) *mockExerciseStore {
	m := &mockExerciseStore{exercises: make(map[string]exercise.Exercise)}
	for _, ex := range exs {
		m.exercises[ex.ID] = ex
	}
	return m
}

func (m *mockExerciseStore) FindByID(_ context.Context, _ authz.OrgContext, exerciseID string) (*exercise.Exercise, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	ex, ok := m.exercises[exerciseID]
	if !ok {
		return nil, nil
	}
	return &ex, nil
}

func (m *mockExerciseStore) Save(_ context.Context, ex exercise.Exercise) error {
	m.saves++
	m.exercises[ex.ID] = ex
	return nil
}

func (m *mockExerciseStore) List(_ context.Context, _ authz.OrgContext) ([]exercise.Exercise, error) {
	out := make([]exercise.Exercise, 0, len(m.exercises))
	for _, ex := range m.exercises {
		out = append(out, ex)
	}
	return out, nil
}
