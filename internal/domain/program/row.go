package program

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// ExerciseRow is the flat, session-ordered form of a GroupItem used by the
// row editing use cases. OrderIndex is the row position within its session.
// An empty GroupID marks a standalone row.
type ExerciseRow struct {
	ID               string
	SessionID        string
	ExerciseID       string
	OrderIndex       int
	GroupID          string
	OrderWithinGroup *int
	SetTypeLabel     *string
	Notes            *string
	RestSeconds      *int
	ParentRowID      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsSubRow reports whether the row is a split of another row.
func (r ExerciseRow) IsSubRow() bool {
	return r.ParentRowID != ""
}

// ExerciseRowInput is the unvalidated form of an ExerciseRow.
type ExerciseRowInput struct {
	ID               string
	SessionID        string
	ExerciseID       string
	OrderIndex       int
	GroupID          string
	OrderWithinGroup *int
	SetTypeLabel     *string
	Notes            *string
	RestSeconds      *int
	ParentRowID      string
}

// CreateExerciseRow validates a row and stamps both timestamps with now.
// PRE: none
// POST: optional text fields are trimmed, blank values become nil
func CreateExerciseRow(in ExerciseRowInput, now time.Time) (ExerciseRow, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return ExerciseRow{}, root.fail(TypeRowIDRequired, "exercise row ID is required")
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return ExerciseRow{}, root.fail(TypeRowSessionIDRequired, "session ID is required")
	}
	exerciseID := strings.TrimSpace(in.ExerciseID)
	if exerciseID == "" {
		return ExerciseRow{}, root.fail(TypeRowExerciseIDRequired, "exercise ID is required")
	}
	if in.OrderIndex < 0 {
		return ExerciseRow{}, root.fail(TypeRowInvalidOrderIndex, "row order index cannot be negative")
	}
	if in.OrderWithinGroup != nil && *in.OrderWithinGroup < 0 {
		return ExerciseRow{}, root.fail(TypeRowInvalidOrderWithinGroup, "order within group cannot be negative")
	}
	if in.RestSeconds != nil && *in.RestSeconds < 0 {
		return ExerciseRow{}, root.fail(TypeRowRestInvalid, "rest seconds cannot be negative")
	}
	parentID := strings.TrimSpace(in.ParentRowID)
	if parentID == id {
		return ExerciseRow{}, root.fail(TypeRowSelfParent, "a row cannot be its own parent")
	}

	return ExerciseRow{
		ID:               id,
		SessionID:        sessionID,
		ExerciseID:       exerciseID,
		OrderIndex:       in.OrderIndex,
		GroupID:          strings.TrimSpace(in.GroupID),
		OrderWithinGroup: cloneInt(in.OrderWithinGroup),
		SetTypeLabel:     normalizeOptional(in.SetTypeLabel),
		Notes:            normalizeOptional(in.Notes),
		RestSeconds:      cloneInt(in.RestSeconds),
		ParentRowID:      parentID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Input returns the row as input for re-validation after a merge.
func (r ExerciseRow) Input() ExerciseRowInput {
	return ExerciseRowInput{
		ID:               r.ID,
		SessionID:        r.SessionID,
		ExerciseID:       r.ExerciseID,
		OrderIndex:       r.OrderIndex,
		GroupID:          r.GroupID,
		OrderWithinGroup: cloneInt(r.OrderWithinGroup),
		SetTypeLabel:     r.SetTypeLabel,
		Notes:            r.Notes,
		RestSeconds:      cloneInt(r.RestSeconds),
		ParentRowID:      r.ParentRowID,
	}
}

// FlattenSession lists a session's items as rows in display order: groups by
// OrderIndex, then items by OrderIndex, ties kept in slice order. Row
// OrderIndex runs across groups; OrderWithinGroup carries the item's own
// OrderIndex. Timestamps are left zero.
func FlattenSession(s Session) []ExerciseRow {
	groups := slices.Clone(s.ExerciseGroups)
	slices.SortStableFunc(groups, func(a, b ExerciseGroup) int { return cmp.Compare(a.OrderIndex, b.OrderIndex) })

	var rows []ExerciseRow
	for _, g := range groups {
		items := slices.Clone(g.Items)
		slices.SortStableFunc(items, func(a, b GroupItem) int { return cmp.Compare(a.OrderIndex, b.OrderIndex) })
		for _, item := range items {
			within := item.OrderIndex
			rows = append(rows, ExerciseRow{
				ID:               item.ID,
				SessionID:        s.ID,
				ExerciseID:       item.ExerciseID,
				OrderIndex:       len(rows),
				GroupID:          g.ID,
				OrderWithinGroup: &within,
				SetTypeLabel:     item.SetTypeLabel,
				Notes:            item.Notes,
				RestSeconds:      item.RestSeconds,
				ParentRowID:      item.ParentItemID,
			})
		}
	}
	return rows
}
