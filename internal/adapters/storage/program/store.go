package program

import (
	"context"
	"time"

	"strenly/internal/domain/authz"
	domain "strenly/internal/domain/program"
)

// Store persists Program aggregates and their exercise rows. Every method is
// scoped to the caller's organization; ids owned by another organization are
// reported as NOT_FOUND.
type Store interface {
	LoadProgramAggregate(ctx context.Context, org authz.OrgContext, programID string) (domain.Program, error)
	SaveProgramAggregate(ctx context.Context, org authz.OrgContext, p domain.Program) (time.Time, error)
	CountPrograms(ctx context.Context, org authz.OrgContext) (int, error)
	ListPrograms(ctx context.Context, org authz.OrgContext) ([]domain.Program, error)

	GetMaxExerciseRowOrderIndex(ctx context.Context, org authz.OrgContext, sessionID string) (int, error)
	FindExerciseRowByID(ctx context.Context, org authz.OrgContext, rowID string) (domain.ExerciseRow, error)
	FindExerciseRowsBySessionID(ctx context.Context, org authz.OrgContext, sessionID string) ([]domain.ExerciseRow, error)
	CreateExerciseRow(ctx context.Context, org authz.OrgContext, row domain.ExerciseRow) (domain.ExerciseRow, error)
	CreateExerciseRowInOrder(ctx context.Context, org authz.OrgContext, row domain.ExerciseRow, rowIDs []string) (domain.ExerciseRow, error)
	UpdateExerciseRow(ctx context.Context, org authz.OrgContext, row domain.ExerciseRow) (domain.ExerciseRow, error)
	DeleteExerciseRow(ctx context.Context, org authz.OrgContext, rowID string) error
	ReorderExerciseRows(ctx context.Context, org authz.OrgContext, sessionID string, rowIDs []string) error
	SetExerciseRowGroup(ctx context.Context, org authz.OrgContext, sessionID string, rowIDs []string, groupID string, order []string) error
	ReplaceExerciseRowSeries(ctx context.Context, org authz.OrgContext, rowID string, series []domain.Series) error
}
