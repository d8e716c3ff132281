package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"strenly/internal/domain/exercise"
	"strenly/internal/domain/program"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

var rowCreatedAt = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func row(id, sessionID string, order int, groupID string) program.ExerciseRow {
	return program.ExerciseRow{
		ID:         id,
		SessionID:  sessionID,
		ExerciseID: "ex-squat",
		OrderIndex: order,
		GroupID:    groupID,
		CreatedAt:  rowCreatedAt,
		UpdatedAt:  rowCreatedAt,
	}
}

func squatCatalog() *mockExerciseStore {
	return newMockExerciseStore(exercise.Exercise{ID: "ex-squat", Name: "Back Squat"})
}

// --- ExecuteAddExerciseRow tests ---

// TestExecuteAddExerciseRow_AppendsAfterMax tests that new rows land one past the session maximum.
func TestExecuteAddExerciseRow_AppendsAfterMax(t *testing.T) {
	store := newMockProgramStore()
	store.addRow(row("r1", "s1", 0, ""))
	store.addRow(row("r2", "s1", 4, ""))

	got, err := ExecuteAddExerciseRow(context.Background(), AddExerciseRowInput{
		Org:          coach,
		SessionID:    "s1",
		ExerciseID:   "ex-squat",
		SetTypeLabel: strPtr("  Warmup "),
		RestSeconds:  intPtr(90),
	}, AddExerciseRowDeps{RowStore: store, Exercises: squatCatalog(), GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OrderIndex != 5 {
		t.Errorf("expected OrderIndex=5, got %d", got.OrderIndex)
	}
	if got.ID != "test-id-001" {
		t.Errorf("expected ID=test-id-001, got %s", got.ID)
	}
	if got.ExerciseName != "Back Squat" {
		t.Errorf("expected ExerciseName=Back Squat, got %s", got.ExerciseName)
	}
	if got.SetTypeLabel == nil || *got.SetTypeLabel != "Warmup" {
		t.Errorf("expected trimmed label Warmup, got %v", got.SetTypeLabel)
	}
	if !got.CreatedAt.Equal(fixedTime) || !got.UpdatedAt.Equal(fixedTime) {
		t.Errorf("expected timestamps=%v, got %v/%v", fixedTime, got.CreatedAt, got.UpdatedAt)
	}
	if _, ok := store.rows["test-id-001"]; !ok {
		t.Error("expected row to be persisted in store")
	}
}

// TestExecuteAddExerciseRow_EmptySession tests that the first row of a session gets index 0.
func TestExecuteAddExerciseRow_EmptySession(t *testing.T) {
	store := newMockProgramStore()
	store.sessions["s1"] = true

	got, err := ExecuteAddExerciseRow(context.Background(), AddExerciseRowInput{
		Org: coach, SessionID: "s1", ExerciseID: "ex-squat",
	}, AddExerciseRowDeps{RowStore: store, Exercises: squatCatalog(), GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OrderIndex != 0 {
		t.Errorf("expected OrderIndex=0, got %d", got.OrderIndex)
	}
}

// TestExecuteAddExerciseRow_UnknownExercise tests the display name fallback.
func TestExecuteAddExerciseRow_UnknownExercise(t *testing.T) {
	tests := []struct {
		name   string
		lookup *mockExerciseStore
	}{
		{name: "missing exercise", lookup: newMockExerciseStore()},
		{name: "lookup failure", lookup: &mockExerciseStore{lookupErr: errors.New("catalog offline")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockProgramStore()
			store.sessions["s1"] = true
			got, err := ExecuteAddExerciseRow(context.Background(), AddExerciseRowInput{
				Org: coach, SessionID: "s1", ExerciseID: "ex-missing",
			}, AddExerciseRowDeps{RowStore: store, Exercises: tt.lookup, GenerateID: fixedID, Now: fixedNow})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ExerciseName != exercise.FallbackName {
				t.Errorf("expected ExerciseName=%s, got %s", exercise.FallbackName, got.ExerciseName)
			}
		})
	}
}

// TestExecuteAddExerciseRow_MissingSession tests that an absent session is not_found.
func TestExecuteAddExerciseRow_MissingSession(t *testing.T) {
	store := newMockProgramStore()
	_, err := ExecuteAddExerciseRow(context.Background(), AddExerciseRowInput{
		Org: coach, SessionID: "nope", ExerciseID: "ex-squat",
	}, AddExerciseRowDeps{RowStore: store, GenerateID: fixedID, Now: fixedNow})

	var uerr *Error
	if !errors.As(err, &uerr) || uerr.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if uerr.EntityType != program.EntitySession || uerr.ID != "nope" {
		t.Errorf("expected session nope, got %s %s", uerr.EntityType, uerr.ID)
	}
}

// TestExecuteAddExerciseRow_InvalidInput tests that validation stops before persisting.
func TestExecuteAddExerciseRow_InvalidInput(t *testing.T) {
	store := newMockProgramStore()
	store.sessions["s1"] = true

	_, err := ExecuteAddExerciseRow(context.Background(), AddExerciseRowInput{
		Org: coach, SessionID: "s1", ExerciseID: "   ",
	}, AddExerciseRowDeps{RowStore: store, GenerateID: fixedID, Now: fixedNow})
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation_error, got %v", err)
	}
	if !program.IsValidationType(err, program.TypeRowExerciseIDRequired) {
		t.Errorf("expected nested %s, got %v", program.TypeRowExerciseIDRequired, err)
	}
	if len(store.rows) != 0 {
		t.Errorf("expected no rows persisted, got %d", len(store.rows))
	}
}

// TestExecuteAddExerciseRow_RepositoryError tests that storage failures pass through.
func TestExecuteAddExerciseRow_RepositoryError(t *testing.T) {
	store := newMockProgramStore()
	store.failWith = program.DatabaseError("get max order", errors.New("disk I/O error"))

	_, err := ExecuteAddExerciseRow(context.Background(), AddExerciseRowInput{
		Org: coach, SessionID: "s1", ExerciseID: "ex-squat",
	}, AddExerciseRowDeps{RowStore: store, GenerateID: fixedID, Now: fixedNow})
	if KindOf(err) != KindRepository {
		t.Fatalf("expected repository_error, got %v", err)
	}
	if err.Error() != "repository_error: get max order: disk I/O error" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

// --- ExecuteUpdateExerciseRow tests ---

// TestExecuteUpdateExerciseRow_OmittedVersusNull tests that omitted fields survive and nulled fields clear.
func TestExecuteUpdateExerciseRow_OmittedVersusNull(t *testing.T) {
	store := newMockProgramStore()
	existing := row("r1", "s1", 0, "g1")
	existing.SetTypeLabel = strPtr("Warmup")
	existing.Notes = strPtr("keep elbows tucked")
	existing.RestSeconds = intPtr(90)
	store.addRow(existing)

	got, err := ExecuteUpdateExerciseRow(context.Background(), UpdateExerciseRowInput{
		Org:         coach,
		RowID:       "r1",
		Notes:       PatchNull[string](),
		RestSeconds: PatchTo(120),
	}, UpdateExerciseRowDeps{RowStore: store, Exercises: squatCatalog(), Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SetTypeLabel == nil || *got.SetTypeLabel != "Warmup" {
		t.Errorf("expected omitted label to stay Warmup, got %v", got.SetTypeLabel)
	}
	if got.Notes != nil {
		t.Errorf("expected notes cleared, got %q", *got.Notes)
	}
	if got.RestSeconds == nil || *got.RestSeconds != 120 {
		t.Errorf("expected rest=120, got %v", got.RestSeconds)
	}
	if got.GroupID != "g1" {
		t.Errorf("expected group g1 kept, got %q", got.GroupID)
	}
	if !got.CreatedAt.Equal(rowCreatedAt) {
		t.Errorf("expected CreatedAt kept at %v, got %v", rowCreatedAt, got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(fixedTime) {
		t.Errorf("expected UpdatedAt bumped to %v, got %v", fixedTime, got.UpdatedAt)
	}
	if got.ExerciseName != "Back Squat" {
		t.Errorf("expected ExerciseName=Back Squat, got %s", got.ExerciseName)
	}
}

// TestExecuteUpdateExerciseRow_ChangeExercise tests exercise id changes are revalidated.
func TestExecuteUpdateExerciseRow_ChangeExercise(t *testing.T) {
	store := newMockProgramStore()
	store.addRow(row("r1", "s1", 0, ""))

	got, err := ExecuteUpdateExerciseRow(context.Background(), UpdateExerciseRowInput{
		Org: coach, RowID: "r1", ExerciseID: strPtr("ex-bench"),
	}, UpdateExerciseRowDeps{RowStore: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ExerciseID != "ex-bench" {
		t.Errorf("expected ExerciseID=ex-bench, got %s", got.ExerciseID)
	}

	_, err = ExecuteUpdateExerciseRow(context.Background(), UpdateExerciseRowInput{
		Org: coach, RowID: "r1", ExerciseID: strPtr(" "),
	}, UpdateExerciseRowDeps{RowStore: store, Now: fixedNow})
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation_error, got %v", err)
	}
	if store.rows["r1"].ExerciseID != "ex-bench" {
		t.Errorf("expected stored row unchanged, got %s", store.rows["r1"].ExerciseID)
	}
}

// TestExecuteUpdateExerciseRow_NotFound tests that a missing row is not_found.
func TestExecuteUpdateExerciseRow_NotFound(t *testing.T) {
	_, err := ExecuteUpdateExerciseRow(context.Background(), UpdateExerciseRowInput{
		Org: coach, RowID: "ghost",
	}, UpdateExerciseRowDeps{RowStore: newMockProgramStore(), Now: fixedNow})

	var uerr *Error
	if !errors.As(err, &uerr) || uerr.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if uerr.EntityType != program.EntityRow || uerr.ID != "ghost" {
		t.Errorf("expected exercise_row ghost, got %s %s", uerr.EntityType, uerr.ID)
	}
}

// --- ExecuteDeleteExerciseRow tests ---

// TestExecuteDeleteExerciseRow_LastRow tests that a session may be emptied.
func TestExecuteDeleteExerciseRow_LastRow(t *testing.T) {
	store := newMockProgramStore()
	store.addRow(row("r1", "s1", 0, ""))

	err := ExecuteDeleteExerciseRow(context.Background(), DeleteExerciseRowInput{Org: coach, RowID: "r1"},
		DeleteExerciseRowDeps{RowStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.rows) != 0 {
		t.Errorf("expected session to be empty, got %d rows", len(store.rows))
	}
}

// TestExecuteDeleteExerciseRow_NotFound tests deleting an unknown row.
func TestExecuteDeleteExerciseRow_NotFound(t *testing.T) {
	err := ExecuteDeleteExerciseRow(context.Background(), DeleteExerciseRowInput{Org: coach, RowID: "ghost"},
		DeleteExerciseRowDeps{RowStore: newMockProgramStore()})
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

// --- ExecuteReorderExerciseRows tests ---

// TestExecuteReorderExerciseRows_RepairsAdjacency tests that split groups are joined before persisting.
func TestExecuteReorderExerciseRows_RepairsAdjacency(t *testing.T) {
	store := newMockProgramStore()
	store.addRow(row("r1", "s1", 0, "g1"))
	store.addRow(row("r2", "s1", 1, ""))
	store.addRow(row("r3", "s1", 2, "g1"))

	got, err := ExecuteReorderExerciseRows(context.Background(), ReorderExerciseRowsInput{
		Org: coach, SessionID: "s1", RowIDs: []string{"r1", "r2", "r3"},
	}, ReorderExerciseRowsDeps{RowStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"r1", "r3", "r2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, store.reordered); diff != "" {
		t.Errorf("persisted order mismatch (-want +got):\n%s", diff)
	}
}

// TestExecuteReorderExerciseRows_PartialRequest tests that omitted rows keep their stored order at the end.
func TestExecuteReorderExerciseRows_PartialRequest(t *testing.T) {
	store := newMockProgramStore()
	store.addRow(row("a", "s1", 0, ""))
	store.addRow(row("b", "s1", 1, ""))
	store.addRow(row("c", "s1", 2, ""))
	store.addRow(row("d", "s1", 3, ""))

	got, err := ExecuteReorderExerciseRows(context.Background(), ReorderExerciseRowsInput{
		Org: coach, SessionID: "s1", RowIDs: []string{"c", "a", "c"},
	}, ReorderExerciseRowsDeps{RowStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"c", "a", "b", "d"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

// TestExecuteReorderExerciseRows_ForeignRow tests that ids outside the session are rejected.
func TestExecuteReorderExerciseRows_ForeignRow(t *testing.T) {
	store := newMockProgramStore()
	store.addRow(row("r1", "s1", 0, ""))
	store.addRow(row("x9", "s2", 0, ""))

	_, err := ExecuteReorderExerciseRows(context.Background(), ReorderExerciseRowsInput{
		Org: coach, SessionID: "s1", RowIDs: []string{"x9", "r1"},
	}, ReorderExerciseRowsDeps{RowStore: store})
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation_error, got %v", err)
	}
	if store.reordered != nil {
		t.Error("expected nothing persisted")
	}
}

// TestExecuteReorderExerciseRows_MissingSession tests that an absent session is not_found.
func TestExecuteReorderExerciseRows_MissingSession(t *testing.T) {
	_, err := ExecuteReorderExerciseRows(context.Background(), ReorderExerciseRowsInput{
		Org: coach, SessionID: "nope", RowIDs: []string{"r1"},
	}, ReorderExerciseRowsDeps{RowStore: newMockProgramStore()})
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

// TestRowUseCases_Forbidden tests that a role without programs:write performs zero I/O.
func TestRowUseCases_Forbidden(t *testing.T) {
	ctx := context.Background()
	store := newMockProgramStore()
	store.addRow(row("r1", "s1", 0, ""))
	store.calls = 0

	calls := map[string]func() error{
		"add": func() error {
			_, err := ExecuteAddExerciseRow(ctx, AddExerciseRowInput{Org: nobody, SessionID: "s1", ExerciseID: "ex-squat"},
				AddExerciseRowDeps{RowStore: store, GenerateID: fixedID, Now: fixedNow})
			return err
		},
		"update": func() error {
			_, err := ExecuteUpdateExerciseRow(ctx, UpdateExerciseRowInput{Org: nobody, RowID: "r1"},
				UpdateExerciseRowDeps{RowStore: store, Now: fixedNow})
			return err
		},
		"delete": func() error {
			return ExecuteDeleteExerciseRow(ctx, DeleteExerciseRowInput{Org: nobody, RowID: "r1"},
				DeleteExerciseRowDeps{RowStore: store})
		},
		"reorder": func() error {
			_, err := ExecuteReorderExerciseRows(ctx, ReorderExerciseRowsInput{Org: nobody, SessionID: "s1", RowIDs: []string{"r1"}},
				ReorderExerciseRowsDeps{RowStore: store})
			return err
		},
		"split": func() error {
			_, err := ExecuteAddSplitRow(ctx, AddSplitRowInput{Org: nobody, ParentRowID: "r1"},
				AddSplitRowDeps{RowStore: store, GenerateID: fixedID, Now: fixedNow})
			return err
		},
		"prescription": func() error {
			_, err := ExecuteUpdatePrescription(ctx, UpdatePrescriptionInput{Org: nobody, RowID: "r1", Notation: "3x5"},
				UpdatePrescriptionDeps{RowStore: store})
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); KindOf(err) != KindForbidden {
				t.Errorf("expected forbidden, got %v", err)
			}
		})
	}
	if store.calls != 0 {
		t.Errorf("expected zero store calls, got %d", store.calls)
	}
}
