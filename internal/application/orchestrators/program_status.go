package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"strenly/internal/domain/authz"
	"strenly/internal/domain/program"
)

// ProgramStatusInput carries input for the activate and archive orchestrators.
type ProgramStatusInput struct {
	Org       authz.OrgContext
	ProgramID string
}

// ProgramStatusDeps holds dependencies for ActivateProgram and ArchiveProgram.
type ProgramStatusDeps struct {
	ProgramStore ProgramStoreForAggregate
	Now          func() time.Time
}

// ExecuteActivateProgram moves a draft program to active.
// PRE: caller holds programs:write
// POST: status is active; invalid_transition if it was not draft
func ExecuteActivateProgram(ctx context.Context, input ProgramStatusInput, deps ProgramStatusDeps) (program.Program, error) {
	if err := authorize(input.Org, authz.ProgramsWrite, "activate programs"); err != nil {
		return program.Program{}, err
	}
	return changeStatus(ctx, input, deps, "activate_program", program.Activate)
}

// ExecuteArchiveProgram moves a draft or active program to archived.
// PRE: caller holds programs:delete
func ExecuteArchiveProgram(ctx context.Context, input ProgramStatusInput, deps ProgramStatusDeps) (program.Program, error) {
	if err := authorize(input.Org, authz.ProgramsDelete, "archive programs"); err != nil {
		return program.Program{}, err
	}
	return changeStatus(ctx, input, deps, "archive_program", program.Archive)
}

func changeStatus(
	ctx context.Context,
	input ProgramStatusInput,
	deps ProgramStatusDeps,
	action string,
	apply func(program.Program, time.Time) (program.Program, error),
) (program.Program, error) {
	current, err := deps.ProgramStore.LoadProgramAggregate(ctx, input.Org, input.ProgramID)
	if err != nil {
		return program.Program{}, programLoadFailure(action, input.ProgramID, err)
	}

	next, err := apply(current, deps.Now())
	if err != nil {
		return program.Program{}, &Error{Kind: KindInvalidTransition, Message: err.Error(), EntityType: program.EntityProgram, ID: current.ID, Cause: err}
	}

	updatedAt, err := deps.ProgramStore.SaveProgramAggregate(ctx, input.Org, next)
	if err != nil {
		return program.Program{}, repositoryFailure(action, err)
	}
	next.UpdatedAt = updatedAt

	slog.Info("program_event", "event", "status_changed", "program_id", next.ID, "from", current.Status,
		"to", next.Status, "user_id", input.Org.UserID)
	return next, nil
}
