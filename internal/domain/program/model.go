// Package program holds the Program aggregate: weeks, sessions, exercise
// groups, group items and series, plus the flat exercise row form used by
// the row editing use cases.
package program

import "time"

// Status is the lifecycle state of a Program.
type Status string

// Program statuses
const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// ValidStatuses contains all valid program statuses.
var ValidStatuses = []Status{StatusDraft, StatusActive, StatusArchived}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IntensityType classifies how a series load is prescribed. Empty means none.
type IntensityType string

// Intensity types
const (
	IntensityAbsolute   IntensityType = "absolute"
	IntensityPercentage IntensityType = "percentage"
	IntensityRPE        IntensityType = "rpe"
	IntensityRIR        IntensityType = "rir"
)

// IsValid reports whether t is a known intensity type.
func (t IntensityType) IsValid() bool {
	switch t {
	case IntensityAbsolute, IntensityPercentage, IntensityRPE, IntensityRIR:
		return true
	}
	return false
}

// Length limits
const (
	MinNameLength        = 3
	MaxNameLength        = 100
	MaxWeekNameLength    = 100
	MaxSessionNameLength = 100
)

// Series is one planned set.
type Series struct {
	OrderIndex     int
	Reps           *int // nil or 0 for AMRAP
	RepsMax        *int // set only for rep ranges
	IsAmrap        bool
	IntensityType  IntensityType
	IntensityValue *float64
	IntensityUnit  string
	UnilateralUnit string
	Tempo          string // four chars of [0-9X], empty when absent
	RestSeconds    *int
}

// GroupItem is one exercise row inside an ExerciseGroup.
// ParentItemID is set for split sub-rows and must reference a non sub-row
// item of the same session.
type GroupItem struct {
	ID           string
	ExerciseID   string
	OrderIndex   int
	SetTypeLabel *string
	Notes        *string
	RestSeconds  *int
	ParentItemID string
	Series       []Series
}

// IsSubRow reports whether the item is a split of another item.
func (i GroupItem) IsSubRow() bool {
	return i.ParentItemID != ""
}

// ExerciseGroup is a run of items performed together. A single item group is
// a standalone exercise; more than one is a superset or circuit.
type ExerciseGroup struct {
	ID         string
	SessionID  string
	OrderIndex int
	Name       *string
	Items      []GroupItem
}

// Session is one training day inside a Week.
type Session struct {
	ID             string
	Name           string
	OrderIndex     int
	ExerciseGroups []ExerciseGroup
}

// Week groups the sessions planned for one week.
type Week struct {
	ID         string
	Name       string
	OrderIndex int
	Sessions   []Session
}

// Program is the aggregate root. A nil AthleteID marks a reusable template.
type Program struct {
	ID             string
	OrganizationID string
	Name           string
	Description    *string
	AthleteID      *string
	IsTemplate     bool
	Status         Status
	Weeks          []Week
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SeriesInput is the unvalidated form of a Series. Its position in the
// parent slice becomes its OrderIndex.
type SeriesInput struct {
	Reps           *int
	RepsMax        *int
	IsAmrap        bool
	IntensityType  IntensityType
	IntensityValue *float64
	IntensityUnit  string
	UnilateralUnit string
	Tempo          string
	RestSeconds    *int
}

// GroupItemInput is the unvalidated form of a GroupItem.
type GroupItemInput struct {
	ID           string
	ExerciseID   string
	OrderIndex   int
	SetTypeLabel *string
	Notes        *string
	RestSeconds  *int
	ParentItemID string
	Series       []SeriesInput
}

// ExerciseGroupInput is the unvalidated form of an ExerciseGroup.
// SessionID is only read by CreateExerciseGroup; inside an aggregate the
// owning session supplies it.
type ExerciseGroupInput struct {
	ID         string
	SessionID  string
	OrderIndex int
	Name       *string
	Items      []GroupItemInput
}

// SessionInput is the unvalidated form of a Session.
type SessionInput struct {
	ID             string
	Name           string
	OrderIndex     int
	ExerciseGroups []ExerciseGroupInput
}

// WeekInput is the unvalidated form of a Week. A nil or blank Name defaults
// to "Week N".
type WeekInput struct {
	ID         string
	Name       *string
	OrderIndex int
	Sessions   []SessionInput
}

// ProgramInput is the unvalidated form of a Program. Zero timestamps default
// to the current time and an empty Status defaults to draft.
type ProgramInput struct {
	ID             string
	OrganizationID string
	Name           string
	Description    *string
	AthleteID      *string
	IsTemplate     bool
	Status         Status
	Weeks          []WeekInput
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
