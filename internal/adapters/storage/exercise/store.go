package exercise

import (
	"context"

	"strenly/internal/domain/authz"
	domain "strenly/internal/domain/exercise"
)

// Store persists the exercise catalog. Curated exercises are visible to
// every organization.
type Store interface {
	FindByID(ctx context.Context, org authz.OrgContext, id string) (*domain.Exercise, error)
	Save(ctx context.Context, ex domain.Exercise) error
	List(ctx context.Context, org authz.OrgContext) ([]domain.Exercise, error)
}
