package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"strenly/internal/domain/authz"
	"strenly/internal/domain/program"
)

// ToggleSupersetInput carries input for the toggle superset orchestrator.
// An empty GroupID takes the row out of its group.
type ToggleSupersetInput struct {
	Org     authz.OrgContext
	RowID   string
	GroupID string
}

// ToggleSupersetDeps holds dependencies for ToggleSuperset.
type ToggleSupersetDeps struct {
	RowStore RowStoreForGroup
}

// ExecuteToggleSuperset moves a row, with its sub-rows, into a group or out of
// one, then re-indexes the session so every group stays contiguous.
// PRE: caller holds programs:write; row exists and is not a sub-row
// POST: the row and its sub-rows share GroupID; the group exists while it has rows
func ExecuteToggleSuperset(ctx context.Context, input ToggleSupersetInput, deps ToggleSupersetDeps) (program.ExerciseRow, error) {
	if err := authorize(input.Org, authz.ProgramsWrite, "group exercise rows"); err != nil {
		return program.ExerciseRow{}, err
	}

	target, err := deps.RowStore.FindExerciseRowByID(ctx, input.Org, input.RowID)
	if err != nil {
		return program.ExerciseRow{}, repositoryFailure("toggle_superset", err)
	}
	if target.IsSubRow() {
		return program.ExerciseRow{}, &Error{
			Kind:       KindValidation,
			Message:    "sub-rows follow their parent's group",
			EntityType: program.EntityRow,
			ID:         target.ID,
		}
	}

	rows, err := deps.RowStore.FindExerciseRowsBySessionID(ctx, input.Org, target.SessionID)
	if err != nil {
		return program.ExerciseRow{}, repositoryFailure("toggle_superset", err)
	}

	groupID := strings.TrimSpace(input.GroupID)
	groupOf := groupsOf(rows)
	moved := []string{target.ID}
	groupOf[target.ID] = groupID
	order := make([]string, 0, len(rows))
	for _, r := range rows {
		order = append(order, r.ID)
		if r.ParentRowID == target.ID {
			moved = append(moved, r.ID)
			groupOf[r.ID] = groupID
		}
	}
	order = program.EnsureGroupAdjacency(order, groupOf)

	if err := deps.RowStore.SetExerciseRowGroup(ctx, input.Org, target.SessionID, moved, groupID, order); err != nil {
		return program.ExerciseRow{}, repositoryFailure("toggle_superset", err)
	}
	updated, err := deps.RowStore.FindExerciseRowByID(ctx, input.Org, target.ID)
	if err != nil {
		return program.ExerciseRow{}, repositoryFailure("toggle_superset", err)
	}

	slog.Info("program_event", "event", "superset_toggled", "row_id", target.ID, "group_id", groupID,
		"rows", len(moved), "user_id", input.Org.UserID)
	return updated, nil
}
