package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"strenly/internal/domain/authz"
	"strenly/internal/domain/program"
)

// AddSplitRowInput carries input for the add split row orchestrator.
type AddSplitRowInput struct {
	Org          authz.OrgContext
	ParentRowID  string
	SetTypeLabel string // e.g. "Back-off"
}

// AddSplitRowDeps holds dependencies for AddSplitRow.
type AddSplitRowDeps struct {
	RowStore   RowStoreForSplit
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteAddSplitRow creates a sub-row of the same exercise directly after
// its parent and re-indexes the session in one store call.
// PRE: caller holds programs:write; parent exists and is not itself a sub-row
// POST: sub-row shares the parent's exercise and group
func ExecuteAddSplitRow(ctx context.Context, input AddSplitRowInput, deps AddSplitRowDeps) (program.ExerciseRow, error) {
	if err := authorize(input.Org, authz.ProgramsWrite, "split exercise rows"); err != nil {
		return program.ExerciseRow{}, err
	}

	parent, err := deps.RowStore.FindExerciseRowByID(ctx, input.Org, input.ParentRowID)
	if err != nil {
		return program.ExerciseRow{}, repositoryFailure("add_split_row", err)
	}
	if parent.IsSubRow() {
		return program.ExerciseRow{}, &Error{
			Kind:       KindInvalidParent,
			Message:    "cannot create a sub-row of a sub-row",
			EntityType: program.EntityRow,
			ID:         parent.ID,
		}
	}

	label := input.SetTypeLabel
	sub, err := program.CreateExerciseRow(program.ExerciseRowInput{
		ID:           deps.GenerateID(),
		SessionID:    parent.SessionID,
		ExerciseID:   parent.ExerciseID,
		OrderIndex:   parent.OrderIndex + 1,
		GroupID:      parent.GroupID,
		SetTypeLabel: &label,
		ParentRowID:  parent.ID,
	}, deps.Now())
	if err != nil {
		return program.ExerciseRow{}, validationFailed(err)
	}

	rows, err := deps.RowStore.FindExerciseRowsBySessionID(ctx, input.Org, parent.SessionID)
	if err != nil {
		return program.ExerciseRow{}, repositoryFailure("add_split_row", err)
	}
	groupOf := groupsOf(rows)
	groupOf[sub.ID] = sub.GroupID
	order := program.EnsureGroupAdjacency(placeAfter(rows, parent.ID, sub.ID), groupOf)

	created, err := deps.RowStore.CreateExerciseRowInOrder(ctx, input.Org, sub, order)
	if err != nil {
		return program.ExerciseRow{}, repositoryFailure("add_split_row", err)
	}

	slog.Info("program_event", "event", "split_row_added", "row_id", created.ID, "parent_row_id", parent.ID,
		"user_id", input.Org.UserID)
	return created, nil
}

// placeAfter lists row ids in stored order with id moved right after anchor.
func placeAfter(rows []program.ExerciseRow, anchor, id string) []string {
	order := make([]string, 0, len(rows)+1)
	for _, r := range rows {
		if r.ID == id {
			continue
		}
		order = append(order, r.ID)
		if r.ID == anchor {
			order = append(order, id)
		}
	}
	return order
}
