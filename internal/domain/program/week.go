package program

import (
	"fmt"
	"strings"
)

// DefaultWeekName is used when a week is created without a name.
func DefaultWeekName(orderIndex int) string {
	return fmt.Sprintf("Week %d", orderIndex+1)
}

// CreateWeek validates a week and everything below it.
func CreateWeek(in WeekInput) (Week, error) {
	w, verr := validateWeek(in, root)
	if verr != nil {
		return Week{}, verr
	}
	return w, nil
}

func validateWeek(in WeekInput, p position) (Week, *ValidationError) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return Week{}, p.fail(TypeWeekIDRequired, "week ID is required")
	}

	name := DefaultWeekName(in.OrderIndex)
	if n := normalizeOptional(in.Name); n != nil {
		name = *n
	}
	if length(name) > MaxWeekNameLength {
		return Week{}, p.fail(TypeWeekNameTooLong, fmt.Sprintf("week name must not exceed %d characters", MaxWeekNameLength))
	}
	if in.OrderIndex < 0 {
		return Week{}, p.fail(TypeWeekInvalidOrderIndex, "week order index cannot be negative")
	}

	sessions := make([]Session, 0, len(in.Sessions))
	seen := make(map[int]bool, len(in.Sessions))
	for i, sessionIn := range in.Sessions {
		if seen[sessionIn.OrderIndex] {
			return Week{}, p.duplicate(TypeSessionDuplicateOrderIndex, "session", sessionIn.OrderIndex)
		}
		seen[sessionIn.OrderIndex] = true

		s, verr := validateSession(sessionIn, p.inSession(i))
		if verr != nil {
			return Week{}, verr
		}
		sessions = append(sessions, s)
	}

	return Week{
		ID:         id,
		Name:       name,
		OrderIndex: in.OrderIndex,
		Sessions:   sessions,
	}, nil
}
