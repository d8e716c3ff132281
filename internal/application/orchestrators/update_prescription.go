package orchestrators

import (
	"context"
	"log/slog"

	"strenly/internal/domain/authz"
	"strenly/internal/domain/program"
)

// UpdatePrescriptionInput carries a grid cell edit: notation text for one row.
type UpdatePrescriptionInput struct {
	Org      authz.OrgContext
	RowID    string
	Notation string
}

// UpdatePrescriptionResult reports what was stored.
// Notation is canonical, or empty when the cell was cleared.
type UpdatePrescriptionResult struct {
	RowID    string
	Notation string
	Series   []program.Series
}

// UpdatePrescriptionDeps holds dependencies for UpdatePrescription.
type UpdatePrescriptionDeps struct {
	RowStore RowStoreForPrescription
}

// ExecuteUpdatePrescription replaces a row's series with the expansion of
// the given notation. A skip marker clears the series.
// PRE: caller holds programs:write
// POST: unparseable notation is a validation_error and nothing is written
func ExecuteUpdatePrescription(ctx context.Context, input UpdatePrescriptionInput, deps UpdatePrescriptionDeps) (UpdatePrescriptionResult, error) {
	if err := authorize(input.Org, authz.ProgramsWrite, "update prescriptions"); err != nil {
		return UpdatePrescriptionResult{}, err
	}

	series, err := SeriesFromNotation(input.Notation)
	if err != nil {
		return UpdatePrescriptionResult{}, err
	}

	if err := deps.RowStore.ReplaceExerciseRowSeries(ctx, input.Org, input.RowID, series); err != nil {
		return UpdatePrescriptionResult{}, repositoryFailure("update_prescription", err)
	}

	result := UpdatePrescriptionResult{RowID: input.RowID, Series: series}
	if len(series) > 0 {
		result.Notation = NotationFromSeries(series)
	}

	slog.Info("program_event", "event", "prescription_updated", "row_id", input.RowID, "sets", len(series),
		"user_id", input.Org.UserID)
	return result, nil
}
