package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"strenly/internal/domain/authz"
	"strenly/internal/domain/program"
)

// Patch distinguishes an omitted field (Set=false) from one explicitly set,
// where a nil Value clears it.
type Patch[T any] struct {
	Set   bool
	Value *T
}

// PatchTo sets a field to v.
func PatchTo[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Value: &v}
}

// PatchNull clears a field.
func PatchNull[T any]() Patch[T] {
	return Patch[T]{Set: true}
}

func (p Patch[T]) apply(current *T) *T {
	if !p.Set {
		return current
	}
	return p.Value
}

// --- Add Exercise Row ---

// AddExerciseRowInput carries input for the add exercise row orchestrator.
type AddExerciseRowInput struct {
	Org          authz.OrgContext
	SessionID    string
	ExerciseID   string
	SetTypeLabel *string
	Notes        *string
	RestSeconds  *int
}

// AddExerciseRowDeps holds dependencies for AddExerciseRow.
type AddExerciseRowDeps struct {
	RowStore   RowStoreForAdd
	Exercises  ExerciseLookup
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteAddExerciseRow appends a standalone row at the end of a session.
// PRE: caller holds programs:write
// POST: row persisted with OrderIndex = max+1 (0 for an empty session)
func ExecuteAddExerciseRow(ctx context.Context, input AddExerciseRowInput, deps AddExerciseRowDeps) (ExerciseRowResult, error) {
	if err := authorize(input.Org, authz.ProgramsWrite, "add exercise rows"); err != nil {
		return ExerciseRowResult{}, err
	}

	maxOrder, err := deps.RowStore.GetMaxExerciseRowOrderIndex(ctx, input.Org, input.SessionID)
	if err != nil {
		return ExerciseRowResult{}, repositoryFailure("add_exercise_row", err)
	}

	row, err := program.CreateExerciseRow(program.ExerciseRowInput{
		ID:           deps.GenerateID(),
		SessionID:    input.SessionID,
		ExerciseID:   input.ExerciseID,
		OrderIndex:   maxOrder + 1,
		SetTypeLabel: input.SetTypeLabel,
		Notes:        input.Notes,
		RestSeconds:  input.RestSeconds,
	}, deps.Now())
	if err != nil {
		return ExerciseRowResult{}, validationFailed(err)
	}

	created, err := deps.RowStore.CreateExerciseRow(ctx, input.Org, row)
	if err != nil {
		return ExerciseRowResult{}, repositoryFailure("add_exercise_row", err)
	}

	slog.Info("program_event", "event", "exercise_row_added", "row_id", created.ID, "session_id", created.SessionID,
		"order_index", created.OrderIndex, "user_id", input.Org.UserID)
	return enrichRow(ctx, deps.Exercises, input.Org, created), nil
}

// --- Update Exercise Row ---

// UpdateExerciseRowInput carries input for the update exercise row orchestrator.
// A nil ExerciseID keeps the current exercise.
type UpdateExerciseRowInput struct {
	Org          authz.OrgContext
	RowID        string
	ExerciseID   *string
	SetTypeLabel Patch[string]
	Notes        Patch[string]
	RestSeconds  Patch[int]
}

// UpdateExerciseRowDeps holds dependencies for UpdateExerciseRow.
type UpdateExerciseRowDeps struct {
	RowStore  RowStoreForUpdate
	Exercises ExerciseLookup
	Now       func() time.Time
}

// ExecuteUpdateExerciseRow merges the provided fields into an existing row.
// PRE: caller holds programs:write; row exists
// POST: omitted fields unchanged, nulled fields cleared, UpdatedAt bumped
func ExecuteUpdateExerciseRow(ctx context.Context, input UpdateExerciseRowInput, deps UpdateExerciseRowDeps) (ExerciseRowResult, error) {
	if err := authorize(input.Org, authz.ProgramsWrite, "update exercise rows"); err != nil {
		return ExerciseRowResult{}, err
	}

	existing, err := deps.RowStore.FindExerciseRowByID(ctx, input.Org, input.RowID)
	if err != nil {
		return ExerciseRowResult{}, repositoryFailure("update_exercise_row", err)
	}

	merged := existing.Input()
	if input.ExerciseID != nil {
		merged.ExerciseID = *input.ExerciseID
	}
	merged.SetTypeLabel = input.SetTypeLabel.apply(existing.SetTypeLabel)
	merged.Notes = input.Notes.apply(existing.Notes)
	merged.RestSeconds = input.RestSeconds.apply(existing.RestSeconds)

	row, err := program.CreateExerciseRow(merged, deps.Now())
	if err != nil {
		return ExerciseRowResult{}, validationFailed(err)
	}
	row.CreatedAt = existing.CreatedAt

	updated, err := deps.RowStore.UpdateExerciseRow(ctx, input.Org, row)
	if err != nil {
		return ExerciseRowResult{}, repositoryFailure("update_exercise_row", err)
	}

	slog.Info("program_event", "event", "exercise_row_updated", "row_id", updated.ID, "user_id", input.Org.UserID)
	return enrichRow(ctx, deps.Exercises, input.Org, updated), nil
}

// --- Delete Exercise Row ---

// DeleteExerciseRowInput carries input for the delete exercise row orchestrator.
type DeleteExerciseRowInput struct {
	Org   authz.OrgContext
	RowID string
}

// DeleteExerciseRowDeps holds dependencies for DeleteExerciseRow.
type DeleteExerciseRowDeps struct {
	RowStore RowStoreForDelete
}

// ExecuteDeleteExerciseRow removes a row. A session may end up with no rows.
// The store removes the row's series and sub-rows.
func ExecuteDeleteExerciseRow(ctx context.Context, input DeleteExerciseRowInput, deps DeleteExerciseRowDeps) error {
	if err := authorize(input.Org, authz.ProgramsWrite, "delete exercise rows"); err != nil {
		return err
	}
	if err := deps.RowStore.DeleteExerciseRow(ctx, input.Org, input.RowID); err != nil {
		return repositoryFailure("delete_exercise_row", err)
	}
	slog.Info("program_event", "event", "exercise_row_deleted", "row_id", input.RowID, "user_id", input.Org.UserID)
	return nil
}

// --- Reorder Exercise Rows ---

// ReorderExerciseRowsInput carries input for the reorder orchestrator.
type ReorderExerciseRowsInput struct {
	Org       authz.OrgContext
	SessionID string
	RowIDs    []string
}

// ReorderExerciseRowsDeps holds dependencies for ReorderExerciseRows.
type ReorderExerciseRowsDeps struct {
	RowStore RowStoreForReorder
}

// ExecuteReorderExerciseRows persists a new row order for a session and
// returns it. Rows the caller omitted keep their relative order after the
// requested ones; ids outside the session are rejected. Groups are made
// contiguous before anything is written.
func ExecuteReorderExerciseRows(ctx context.Context, input ReorderExerciseRowsInput, deps ReorderExerciseRowsDeps) ([]string, error) {
	if err := authorize(input.Org, authz.ProgramsWrite, "reorder exercise rows"); err != nil {
		return nil, err
	}

	rows, err := deps.RowStore.FindExerciseRowsBySessionID(ctx, input.Org, input.SessionID)
	if err != nil {
		return nil, repositoryFailure("reorder_exercise_rows", err)
	}

	order, err := completeOrder(input.RowIDs, rows)
	if err != nil {
		return nil, err
	}
	resolved := program.EnsureGroupAdjacency(order, groupsOf(rows))

	if err := deps.RowStore.ReorderExerciseRows(ctx, input.Org, input.SessionID, resolved); err != nil {
		return nil, repositoryFailure("reorder_exercise_rows", err)
	}

	slog.Info("program_event", "event", "exercise_rows_reordered", "session_id", input.SessionID,
		"rows", len(resolved), "user_id", input.Org.UserID)
	return resolved, nil
}

func groupsOf(rows []program.ExerciseRow) map[string]string {
	groupOf := make(map[string]string, len(rows))
	for _, r := range rows {
		groupOf[r.ID] = r.GroupID
	}
	return groupOf
}

// completeOrder checks requested ids against the session and appends any
// rows the caller left out, in their stored order.
func completeOrder(requested []string, rows []program.ExerciseRow) ([]string, error) {
	known := make(map[string]bool, len(rows))
	for _, r := range rows {
		known[r.ID] = true
	}

	seen := make(map[string]bool, len(requested))
	order := make([]string, 0, len(rows))
	for _, id := range requested {
		if !known[id] {
			return nil, &Error{Kind: KindValidation, Message: fmt.Sprintf("row %s does not belong to this session", id)}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	for _, r := range rows {
		if !seen[r.ID] {
			order = append(order, r.ID)
		}
	}
	return order, nil
}
