package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"strenly/internal/domain/authz"
	"strenly/internal/domain/program"
)

// ConflictWarning is returned when the stored program changed after the
// caller loaded it. The save still goes through.
const ConflictWarning = "this program was modified by someone else after you opened it; your version has been saved over theirs"

// DraftProgram is the full client-held program payload.
type DraftProgram struct {
	Name        string
	Description *string
	AthleteID   *string
	IsTemplate  bool
	Status      program.Status
	Weeks       []program.WeekInput
}

// SaveDraftInput carries input for the save draft orchestrator.
// LastLoadedAt is when the caller last loaded the program; nil skips the
// conflict check.
type SaveDraftInput struct {
	Org          authz.OrgContext
	ProgramID    string
	Program      DraftProgram
	LastLoadedAt *time.Time
}

// SaveDraftResult carries the stored timestamp and an optional advisory warning.
type SaveDraftResult struct {
	UpdatedAt       time.Time
	ConflictWarning string
}

// SaveDraftDeps holds dependencies for SaveDraft.
type SaveDraftDeps struct {
	ProgramStore ProgramStoreForAggregate
	Now          func() time.Time
}

// ExecuteSaveDraft validates and whole-replaces a Program aggregate.
// PRE: caller holds programs:write
// POST: nothing is written unless the whole aggregate validates
// POST: a stored UpdatedAt strictly after LastLoadedAt yields ConflictWarning,
// and the save proceeds (last write wins)
func ExecuteSaveDraft(ctx context.Context, input SaveDraftInput, deps SaveDraftDeps) (SaveDraftResult, error) {
	if err := authorize(input.Org, authz.ProgramsWrite, "save programs"); err != nil {
		return SaveDraftResult{}, err
	}

	now := deps.Now()
	p, err := program.CreateProgram(program.ProgramInput{
		ID:             input.ProgramID,
		OrganizationID: input.Org.OrganizationID,
		Name:           input.Program.Name,
		Description:    input.Program.Description,
		AthleteID:      input.Program.AthleteID,
		IsTemplate:     input.Program.IsTemplate,
		Status:         input.Program.Status,
		Weeks:          input.Program.Weeks,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return SaveDraftResult{}, validationFailed(err)
	}

	var warning string
	if input.LastLoadedAt != nil {
		stored, err := deps.ProgramStore.LoadProgramAggregate(ctx, input.Org, input.ProgramID)
		if err != nil {
			return SaveDraftResult{}, programLoadFailure("save_draft", input.ProgramID, err)
		}
		p.CreatedAt = stored.CreatedAt
		if stored.UpdatedAt.After(*input.LastLoadedAt) {
			warning = ConflictWarning
			slog.Warn("program_event", "event", "save_conflict", "program_id", input.ProgramID,
				"stored_updated_at", stored.UpdatedAt, "last_loaded_at", *input.LastLoadedAt, "user_id", input.Org.UserID)
		}
	}

	updatedAt, err := deps.ProgramStore.SaveProgramAggregate(ctx, input.Org, p)
	if err != nil {
		return SaveDraftResult{}, repositoryFailure("save_draft", err)
	}

	slog.Info("program_event", "event", "draft_saved", "program_id", p.ID, "weeks", len(p.Weeks),
		"conflict", warning != "", "user_id", input.Org.UserID)
	return SaveDraftResult{UpdatedAt: updatedAt, ConflictWarning: warning}, nil
}

// programLoadFailure reports a missing program as program_not_found.
func programLoadFailure(action, programID string, err error) error {
	var rerr *program.RepositoryError
	if errors.As(err, &rerr) && rerr.Type == program.RepoNotFound {
		return &Error{Kind: KindProgramNotFound, EntityType: program.EntityProgram, ID: programID, Message: rerr.Error(), Cause: err}
	}
	return repositoryFailure(action, err)
}
