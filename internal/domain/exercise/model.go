package exercise

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyID         = errors.New("exercise ID cannot be empty")
	ErrEmptyName       = errors.New("exercise name cannot be empty")
	ErrAlreadyArchived = errors.New("exercise is already archived")
	ErrNotArchived     = errors.New("exercise is not archived")
)

// MaxNameLength bounds exercise names.
const MaxNameLength = 100

// FallbackName is shown for rows whose exercise cannot be resolved.
const FallbackName = "Unknown"

// Exercise is a catalog entry referenced by program rows. An empty
// OrganizationID marks a curated exercise shared by every organization.
type Exercise struct {
	ID             string
	OrganizationID string
	Name           string
	ArchivedAt     *time.Time
	CreatedAt      time.Time
}

// Validate checks if the Exercise has valid data.
// PRE: Exercise struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Exercise) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len([]rune(e.Name)) > MaxNameLength {
		return fmt.Errorf("exercise name cannot exceed %d characters", MaxNameLength)
	}
	return nil
}

// IsCurated reports whether the exercise belongs to the shared catalog.
func (e *Exercise) IsCurated() bool {
	return e.OrganizationID == ""
}

// IsArchived reports whether the exercise has been archived.
func (e *Exercise) IsArchived() bool {
	return e.ArchivedAt != nil
}

// Archive hides the exercise from pickers.
// PRE: exercise is not archived
// POST: ArchivedAt is set to now
func (e *Exercise) Archive(now time.Time) error {
	if e.IsArchived() {
		return ErrAlreadyArchived
	}
	e.ArchivedAt = &now
	return nil
}

// Unarchive restores an archived exercise.
func (e *Exercise) Unarchive() error {
	if !e.IsArchived() {
		return ErrNotArchived
	}
	e.ArchivedAt = nil
	return nil
}

// DisplayName returns the name to show for a possibly missing exercise.
func DisplayName(e *Exercise) string {
	if e == nil || strings.TrimSpace(e.Name) == "" {
		return FallbackName
	}
	return e.Name
}
