package program

import "strings"

// CreateExerciseGroup validates a group outside of an aggregate. Items are
// optional here; an aggregate save additionally rejects empty groups.
// POST: Name is trimmed, blank names become nil
func CreateExerciseGroup(in ExerciseGroupInput) (ExerciseGroup, error) {
	g, verr := validateGroup(in, in.SessionID, root.inGroup(in.OrderIndex), false)
	if verr != nil {
		return ExerciseGroup{}, verr
	}
	return g, nil
}

func validateGroup(in ExerciseGroupInput, sessionID string, p position, requireItems bool) (ExerciseGroup, *ValidationError) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return ExerciseGroup{}, p.fail(TypeGroupIDRequired, "exercise group ID is required")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ExerciseGroup{}, p.fail(TypeGroupSessionIDRequired, "session ID is required")
	}
	if in.OrderIndex < 0 {
		return ExerciseGroup{}, p.fail(TypeGroupInvalidOrderIndex, "group order index cannot be negative")
	}
	if requireItems && len(in.Items) == 0 {
		return ExerciseGroup{}, p.fail(TypeGroupEmpty, "exercise group must contain at least one item")
	}

	items := make([]GroupItem, 0, len(in.Items))
	seen := make(map[int]bool, len(in.Items))
	for i, itemIn := range in.Items {
		if seen[itemIn.OrderIndex] {
			return ExerciseGroup{}, p.duplicate(TypeItemDuplicateOrderIndex, "item", itemIn.OrderIndex)
		}
		seen[itemIn.OrderIndex] = true

		item, verr := validateItem(itemIn, p.inItem(i))
		if verr != nil {
			return ExerciseGroup{}, verr
		}
		items = append(items, item)
	}

	return ExerciseGroup{
		ID:         id,
		SessionID:  sessionID,
		OrderIndex: in.OrderIndex,
		Name:       normalizeOptional(in.Name),
		Items:      items,
	}, nil
}

func validateItem(in GroupItemInput, p position) (GroupItem, *ValidationError) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return GroupItem{}, p.fail(TypeItemIDRequired, "item ID is required")
	}
	exerciseID := strings.TrimSpace(in.ExerciseID)
	if exerciseID == "" {
		return GroupItem{}, p.fail(TypeItemExerciseIDRequired, "exercise ID is required")
	}
	if in.OrderIndex < 0 {
		return GroupItem{}, p.fail(TypeItemInvalidOrderIndex, "item order index cannot be negative")
	}
	if in.RestSeconds != nil && *in.RestSeconds < 0 {
		return GroupItem{}, p.fail(TypeItemRestInvalid, "rest seconds cannot be negative")
	}

	series := make([]Series, 0, len(in.Series))
	for i, s := range in.Series {
		validated, verr := validateSeries(s, p.inSeries(i))
		if verr != nil {
			return GroupItem{}, verr
		}
		series = append(series, validated)
	}

	return GroupItem{
		ID:           id,
		ExerciseID:   exerciseID,
		OrderIndex:   in.OrderIndex,
		SetTypeLabel: normalizeOptional(in.SetTypeLabel),
		Notes:        normalizeOptional(in.Notes),
		RestSeconds:  cloneInt(in.RestSeconds),
		ParentItemID: strings.TrimSpace(in.ParentItemID),
		Series:       series,
	}, nil
}
