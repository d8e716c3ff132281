package orchestrators

import (
	"context"
	"testing"

	"strenly/internal/domain/program"
)

// TestExecuteUpdatePrescription tests notation cell edits.
func TestExecuteUpdatePrescription(t *testing.T) {
	tests := []struct {
		name         string
		notation     string
		wantKind     ErrorKind
		wantType     program.ErrorType
		wantNotation string
		wantSets     int
	}{
		{name: "multi part", notation: "3x8@120kg + 1x1@130kg", wantNotation: "3x8@120kg + 1x1@130kg", wantSets: 4},
		{name: "normalizes", notation: " 3X8 @ rpe 8 (30x1) ", wantNotation: "3x8@RPE8 (30X1)", wantSets: 3},
		{name: "skip clears", notation: "—", wantNotation: "", wantSets: 0},
		{name: "hyphen clears", notation: "-", wantNotation: "", wantSets: 0},
		{name: "garbage", notation: "heavy-ish", wantKind: KindValidation},
		{name: "rpe out of range", notation: "3x5@RPE11", wantKind: KindValidation, wantType: program.TypeSeriesRPEInvalid},
		{name: "percentage out of range", notation: "3x5@150%", wantKind: KindValidation, wantType: program.TypeSeriesPercentageInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockProgramStore()
			store.addRow(row("r1", "s1", 0, ""))

			got, err := ExecuteUpdatePrescription(context.Background(), UpdatePrescriptionInput{
				Org: coach, RowID: "r1", Notation: tt.notation,
			}, UpdatePrescriptionDeps{RowStore: store})

			if tt.wantKind != "" {
				if KindOf(err) != tt.wantKind {
					t.Fatalf("expected %s, got %v", tt.wantKind, err)
				}
				if tt.wantType != "" && !program.IsValidationType(err, tt.wantType) {
					t.Errorf("expected nested %s, got %v", tt.wantType, err)
				}
				if _, ok := store.series["r1"]; ok {
					t.Error("expected series untouched")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Notation != tt.wantNotation {
				t.Errorf("expected notation %q, got %q", tt.wantNotation, got.Notation)
			}
			if len(store.series["r1"]) != tt.wantSets {
				t.Errorf("expected %d stored sets, got %d", tt.wantSets, len(store.series["r1"]))
			}
			for i, s := range store.series["r1"] {
				if s.OrderIndex != i {
					t.Errorf("series %d: expected OrderIndex=%d, got %d", i, i, s.OrderIndex)
				}
			}
		})
	}
}

// TestExecuteUpdatePrescription_MissingRow tests that an unknown row is not_found.
func TestExecuteUpdatePrescription_MissingRow(t *testing.T) {
	_, err := ExecuteUpdatePrescription(context.Background(), UpdatePrescriptionInput{
		Org: coach, RowID: "ghost", Notation: "3x5",
	}, UpdatePrescriptionDeps{RowStore: newMockProgramStore()})
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}
