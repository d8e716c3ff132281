package program

import (
	"fmt"
	"strings"
)

// CreateSession validates a session and everything below it.
func CreateSession(in SessionInput) (Session, error) {
	s, verr := validateSession(in, root)
	if verr != nil {
		return Session{}, verr
	}
	return s, nil
}

func validateSession(in SessionInput, p position) (Session, *ValidationError) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return Session{}, p.fail(TypeSessionIDRequired, "session ID is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Session{}, p.fail(TypeSessionNameRequired, "session name is required")
	}
	if length(name) > MaxSessionNameLength {
		return Session{}, p.fail(TypeSessionNameTooLong, fmt.Sprintf("session name must not exceed %d characters", MaxSessionNameLength))
	}
	if in.OrderIndex < 0 {
		return Session{}, p.fail(TypeSessionInvalidOrderIndex, "session order index cannot be negative")
	}

	groups := make([]ExerciseGroup, 0, len(in.ExerciseGroups))
	seen := make(map[int]bool, len(in.ExerciseGroups))
	for i, groupIn := range in.ExerciseGroups {
		if seen[groupIn.OrderIndex] {
			return Session{}, p.duplicate(TypeGroupDuplicateOrderIndex, "group", groupIn.OrderIndex)
		}
		seen[groupIn.OrderIndex] = true

		g, verr := validateGroup(groupIn, id, p.inGroup(i), true)
		if verr != nil {
			return Session{}, verr
		}
		groups = append(groups, g)
	}

	if verr := checkSubRows(groups, p); verr != nil {
		return Session{}, verr
	}

	return Session{
		ID:             id,
		Name:           name,
		OrderIndex:     in.OrderIndex,
		ExerciseGroups: groups,
	}, nil
}

// checkSubRows enforces unique item IDs within the session and one level of
// split nesting: a parent must exist in the same session and must not be a
// sub-row itself.
func checkSubRows(groups []ExerciseGroup, p position) *ValidationError {
	items := make(map[string]GroupItem)
	for gi, g := range groups {
		for ii, item := range g.Items {
			if _, dup := items[item.ID]; dup {
				return p.inGroup(gi).inItem(ii).fail(TypeItemDuplicateID, "duplicate item ID: "+item.ID)
			}
			items[item.ID] = item
		}
	}

	for gi, g := range groups {
		for ii, item := range g.Items {
			if !item.IsSubRow() {
				continue
			}
			parent, ok := items[item.ParentItemID]
			if !ok {
				return p.inGroup(gi).inItem(ii).fail(TypeItemParentNotFound, "parent item not found: "+item.ParentItemID)
			}
			if parent.IsSubRow() {
				return p.inGroup(gi).inItem(ii).fail(TypeItemNestedSubRow, "cannot create a sub-row of a sub-row")
			}
		}
	}
	return nil
}
