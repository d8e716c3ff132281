package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"strenly/internal/domain/authz"
	"strenly/internal/domain/exercise"
	"strenly/internal/domain/notation"
	"strenly/internal/domain/program"
)

// Store errors are expected to be *program.RepositoryError; anything else is
// reported as repository_error.

// RowStoreForAdd defines the store interface needed by AddExerciseRow.
type RowStoreForAdd interface {
	GetMaxExerciseRowOrderIndex(ctx context.Context, org authz.OrgContext, sessionID string) (int, error)
	CreateExerciseRow(ctx context.Context, org authz.OrgContext, row program.ExerciseRow) (program.ExerciseRow, error)
}

// RowStoreForUpdate defines the store interface needed by UpdateExerciseRow.
type RowStoreForUpdate interface {
	FindExerciseRowByID(ctx context.Context, org authz.OrgContext, rowID string) (program.ExerciseRow, error)
	UpdateExerciseRow(ctx context.Context, org authz.OrgContext, row program.ExerciseRow) (program.ExerciseRow, error)
}

// RowStoreForDelete defines the store interface needed by DeleteExerciseRow.
type RowStoreForDelete interface {
	DeleteExerciseRow(ctx context.Context, org authz.OrgContext, rowID string) error
}

// RowStoreForReorder defines the store interface needed by ReorderExerciseRows.
type RowStoreForReorder interface {
	FindExerciseRowsBySessionID(ctx context.Context, org authz.OrgContext, sessionID string) ([]program.ExerciseRow, error)
	ReorderExerciseRows(ctx context.Context, org authz.OrgContext, sessionID string, rowIDs []string) error
}

// RowStoreForSplit defines the store interface needed by AddSplitRow.
// CreateExerciseRowInOrder inserts the row and applies the order atomically.
type RowStoreForSplit interface {
	FindExerciseRowByID(ctx context.Context, org authz.OrgContext, rowID string) (program.ExerciseRow, error)
	FindExerciseRowsBySessionID(ctx context.Context, org authz.OrgContext, sessionID string) ([]program.ExerciseRow, error)
	CreateExerciseRowInOrder(ctx context.Context, org authz.OrgContext, row program.ExerciseRow, rowIDs []string) (program.ExerciseRow, error)
}

// RowStoreForGroup defines the store interface needed by ToggleSuperset.
// SetExerciseRowGroup regroups rowIDs and applies order atomically; an empty
// groupID removes the rows from their group.
type RowStoreForGroup interface {
	FindExerciseRowByID(ctx context.Context, org authz.OrgContext, rowID string) (program.ExerciseRow, error)
	FindExerciseRowsBySessionID(ctx context.Context, org authz.OrgContext, sessionID string) ([]program.ExerciseRow, error)
	SetExerciseRowGroup(ctx context.Context, org authz.OrgContext, sessionID string, rowIDs []string, groupID string, order []string) error
}

// RowStoreForPrescription defines the store interface needed by UpdatePrescription.
type RowStoreForPrescription interface {
	ReplaceExerciseRowSeries(ctx context.Context, org authz.OrgContext, rowID string, series []program.Series) error
}

// ProgramStoreForAggregate loads and whole-replaces Program aggregates.
// SaveProgramAggregate returns the stored updated_at.
type ProgramStoreForAggregate interface {
	LoadProgramAggregate(ctx context.Context, org authz.OrgContext, programID string) (program.Program, error)
	SaveProgramAggregate(ctx context.Context, org authz.OrgContext, p program.Program) (time.Time, error)
}

// ExerciseLookup resolves exercise display names. A missing exercise is
// (nil, nil), not an error.
type ExerciseLookup interface {
	FindByID(ctx context.Context, org authz.OrgContext, exerciseID string) (*exercise.Exercise, error)
}

// ExerciseRowResult is a row enriched with its exercise name.
type ExerciseRowResult struct {
	program.ExerciseRow
	ExerciseName string
}

// enrichRow never fails: lookup errors fall back to exercise.FallbackName.
func enrichRow(ctx context.Context, lookup ExerciseLookup, org authz.OrgContext, row program.ExerciseRow) ExerciseRowResult {
	result := ExerciseRowResult{ExerciseRow: row, ExerciseName: exercise.FallbackName}
	if lookup == nil {
		return result
	}
	ex, err := lookup.FindByID(ctx, org, row.ExerciseID)
	if err != nil {
		slog.Warn("program_event", "event", "exercise_lookup_failed", "exercise_id", row.ExerciseID, "error", err)
		return result
	}
	result.ExerciseName = exercise.DisplayName(ex)
	return result
}

// seriesInputFromNotation converts an expanded notation set to factory input.
func seriesInputFromNotation(s notation.Series) program.SeriesInput {
	return program.SeriesInput{
		Reps:           s.Reps,
		RepsMax:        s.RepsMax,
		IsAmrap:        s.IsAmrap,
		IntensityType:  program.IntensityType(s.IntensityType),
		IntensityValue: s.IntensityValue,
		IntensityUnit:  string(s.IntensityUnit),
		UnilateralUnit: string(s.UnilateralUnit),
		Tempo:          s.Tempo,
	}
}

// NotationFromSeries renders stored series as canonical notation.
func NotationFromSeries(series []program.Series) string {
	out := make([]notation.Series, 0, len(series))
	for _, s := range series {
		out = append(out, notation.Series{
			OrderIndex:     s.OrderIndex,
			Reps:           s.Reps,
			RepsMax:        s.RepsMax,
			IsAmrap:        s.IsAmrap,
			IntensityType:  notation.IntensityType(s.IntensityType),
			IntensityValue: s.IntensityValue,
			IntensityUnit:  notation.IntensityUnit(s.IntensityUnit),
			UnilateralUnit: notation.UnilateralUnit(s.UnilateralUnit),
			Tempo:          s.Tempo,
		})
	}
	return notation.CollapseFromSeries(out)
}

// SeriesFromNotation expands notation and validates every set.
// Skip markers give an empty slice.
func SeriesFromNotation(text string) ([]program.Series, error) {
	expanded, ok := notation.ExpandToSeries(text)
	if !ok {
		return nil, &Error{Kind: KindValidation, Message: "invalid prescription notation: " + text}
	}
	series := make([]program.Series, 0, len(expanded))
	for i, s := range expanded {
		validated, err := program.CreateSeries(seriesInputFromNotation(s), i)
		if err != nil {
			return nil, validationFailed(err)
		}
		series = append(series, validated)
	}
	return series, nil
}

// SeriesInputsFromNotation is SeriesFromNotation for aggregate payloads.
func SeriesInputsFromNotation(text string) ([]program.SeriesInput, error) {
	expanded, ok := notation.ExpandToSeries(text)
	if !ok {
		return nil, &Error{Kind: KindValidation, Message: "invalid prescription notation: " + text}
	}
	inputs := make([]program.SeriesInput, 0, len(expanded))
	for _, s := range expanded {
		inputs = append(inputs, seriesInputFromNotation(s))
	}
	return inputs, nil
}
