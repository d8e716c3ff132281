package program

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// transitions lists the statuses each status may move to. Archived is final.
var transitions = map[Status][]Status{
	StatusDraft:  {StatusActive, StatusArchived},
	StatusActive: {StatusArchived},
}

// CreateProgram validates the whole hierarchy and returns a new Program.
// PRE: none
// POST: Name is trimmed; Status defaults to draft; zero timestamps become now
// INVARIANT: no partially validated Program is ever returned
func CreateProgram(in ProgramInput) (Program, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return Program{}, root.fail(TypeIDRequired, "program ID is required")
	}
	orgID := strings.TrimSpace(in.OrganizationID)
	if orgID == "" {
		return Program{}, root.fail(TypeOrganizationRequired, "organization ID is required")
	}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return Program{}, root.fail(TypeNameRequired, "program name is required")
	case length(name) < MinNameLength:
		return Program{}, root.fail(TypeNameTooShort, fmt.Sprintf("program name must be at least %d characters", MinNameLength))
	case length(name) > MaxNameLength:
		return Program{}, root.fail(TypeNameTooLong, fmt.Sprintf("program name must not exceed %d characters", MaxNameLength))
	}

	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.IsValid() {
		return Program{}, root.fail(TypeInvalidStatus, "unknown program status: "+string(status))
	}

	weeks := make([]Week, 0, len(in.Weeks))
	seen := make(map[int]bool, len(in.Weeks))
	for i, weekIn := range in.Weeks {
		if seen[weekIn.OrderIndex] {
			return Program{}, root.duplicate(TypeWeekDuplicateOrderIndex, "week", weekIn.OrderIndex)
		}
		seen[weekIn.OrderIndex] = true

		w, verr := validateWeek(weekIn, root.inWeek(i))
		if verr != nil {
			return Program{}, verr
		}
		weeks = append(weeks, w)
	}

	now := time.Now().UTC()
	createdAt, updatedAt := in.CreatedAt, in.UpdatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = now
	}

	return Program{
		ID:             id,
		OrganizationID: orgID,
		Name:           name,
		Description:    normalizeOptional(in.Description),
		AthleteID:      normalizeOptional(in.AthleteID),
		IsTemplate:     in.IsTemplate,
		Status:         status,
		Weeks:          weeks,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// ReconstituteProgram rebuilds a Program from trusted storage without validation.
func ReconstituteProgram(p Program) Program {
	return p
}

// CanTransition reports whether a program may move from one status to another.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// Activate moves a draft program to active.
// POST: returns a copy with Status=active and UpdatedAt=now
func Activate(p Program, now time.Time) (Program, error) {
	return transition(p, StatusActive, now)
}

// Archive moves a draft or active program to archived.
func Archive(p Program, now time.Time) (Program, error) {
	return transition(p, StatusArchived, now)
}

func transition(p Program, to Status, now time.Time) (Program, error) {
	if !CanTransition(p.Status, to) {
		return Program{}, root.fail(TypeInvalidStatusTransition,
			fmt.Sprintf("cannot transition from %s to %s", p.Status, to))
	}
	p.Status = to
	p.UpdatedAt = now
	return p, nil
}

// AddWeek validates a new week and appends it to a copy of the program.
func AddWeek(p Program, in WeekInput, now time.Time) (Program, error) {
	for _, w := range p.Weeks {
		if w.OrderIndex == in.OrderIndex {
			return Program{}, root.duplicate(TypeWeekDuplicateOrderIndex, "week", in.OrderIndex)
		}
	}

	w, verr := validateWeek(in, root.inWeek(len(p.Weeks)))
	if verr != nil {
		return Program{}, verr
	}

	weeks := make([]Week, 0, len(p.Weeks)+1)
	weeks = append(weeks, p.Weeks...)
	p.Weeks = append(weeks, w)
	p.UpdatedAt = now
	return p, nil
}

// RemoveWeek returns a copy of the program without the given week.
func RemoveWeek(p Program, weekID string, now time.Time) (Program, error) {
	idx := slices.IndexFunc(p.Weeks, func(w Week) bool { return w.ID == weekID })
	if idx < 0 {
		return Program{}, root.fail(TypeWeekNotFound, "week not found: "+weekID)
	}
	p.Weeks = slices.Delete(slices.Clone(p.Weeks), idx, idx+1)
	p.UpdatedAt = now
	return p, nil
}
