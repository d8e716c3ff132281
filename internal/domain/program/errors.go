package program

import (
	"errors"
	"fmt"
)

// ErrorType names a domain validation failure.
type ErrorType string

// Program level
const (
	TypeIDRequired              ErrorType = "ID_REQUIRED"
	TypeOrganizationRequired    ErrorType = "ORGANIZATION_REQUIRED"
	TypeNameRequired            ErrorType = "NAME_REQUIRED"
	TypeNameTooShort            ErrorType = "NAME_TOO_SHORT"
	TypeNameTooLong             ErrorType = "NAME_TOO_LONG"
	TypeInvalidStatus           ErrorType = "INVALID_STATUS"
	TypeInvalidStatusTransition ErrorType = "INVALID_STATUS_TRANSITION"
)

// Week level
const (
	TypeWeekIDRequired          ErrorType = "WEEK_ID_REQUIRED"
	TypeWeekNameTooLong         ErrorType = "WEEK_NAME_TOO_LONG"
	TypeWeekInvalidOrderIndex   ErrorType = "WEEK_INVALID_ORDER_INDEX"
	TypeWeekDuplicateOrderIndex ErrorType = "WEEK_DUPLICATE_ORDER_INDEX"
	TypeWeekNotFound            ErrorType = "WEEK_NOT_FOUND"
)

// Session level
const (
	TypeSessionIDRequired          ErrorType = "SESSION_ID_REQUIRED"
	TypeSessionNameRequired        ErrorType = "SESSION_NAME_REQUIRED"
	TypeSessionNameTooLong         ErrorType = "SESSION_NAME_TOO_LONG"
	TypeSessionInvalidOrderIndex   ErrorType = "SESSION_INVALID_ORDER_INDEX"
	TypeSessionDuplicateOrderIndex ErrorType = "SESSION_DUPLICATE_ORDER_INDEX"
)

// Exercise group level
const (
	TypeGroupIDRequired          ErrorType = "GROUP_ID_REQUIRED"
	TypeGroupSessionIDRequired   ErrorType = "GROUP_SESSION_ID_REQUIRED"
	TypeGroupInvalidOrderIndex   ErrorType = "GROUP_INVALID_ORDER_INDEX"
	TypeGroupDuplicateOrderIndex ErrorType = "GROUP_DUPLICATE_ORDER_INDEX"
	TypeGroupEmpty               ErrorType = "GROUP_EMPTY"
)

// Group item level
const (
	TypeItemIDRequired          ErrorType = "ITEM_ID_REQUIRED"
	TypeItemExerciseIDRequired  ErrorType = "ITEM_EXERCISE_ID_REQUIRED"
	TypeItemInvalidOrderIndex   ErrorType = "ITEM_INVALID_ORDER_INDEX"
	TypeItemDuplicateOrderIndex ErrorType = "ITEM_DUPLICATE_ORDER_INDEX"
	TypeItemDuplicateID         ErrorType = "ITEM_DUPLICATE_ID"
	TypeItemRestInvalid         ErrorType = "ITEM_REST_INVALID"
	TypeItemParentNotFound      ErrorType = "ITEM_PARENT_NOT_FOUND"
	TypeItemNestedSubRow        ErrorType = "ITEM_NESTED_SUB_ROW"
)

// Series level
const (
	TypeSeriesInvalidOrderIndex      ErrorType = "SERIES_INVALID_ORDER_INDEX"
	TypeSeriesRepsInvalid            ErrorType = "SERIES_REPS_INVALID"
	TypeSeriesRepsRangeInvalid       ErrorType = "SERIES_REPS_RANGE_INVALID"
	TypeSeriesAmrapWithReps          ErrorType = "SERIES_AMRAP_WITH_REPS"
	TypeSeriesIntensityTypeInvalid   ErrorType = "SERIES_INTENSITY_TYPE_INVALID"
	TypeSeriesIntensityValueRequired ErrorType = "SERIES_INTENSITY_VALUE_REQUIRED"
	TypeSeriesPercentageInvalid      ErrorType = "SERIES_PERCENTAGE_INVALID"
	TypeSeriesRPEInvalid             ErrorType = "SERIES_RPE_INVALID"
	TypeSeriesRIRInvalid             ErrorType = "SERIES_RIR_INVALID"
	TypeSeriesAbsoluteInvalid        ErrorType = "SERIES_ABSOLUTE_INVALID"
	TypeSeriesTempoInvalid           ErrorType = "SERIES_TEMPO_INVALID"
	TypeSeriesRestInvalid            ErrorType = "SERIES_REST_INVALID"
)

// Exercise row level
const (
	TypeRowIDRequired              ErrorType = "ROW_ID_REQUIRED"
	TypeRowSessionIDRequired       ErrorType = "ROW_SESSION_ID_REQUIRED"
	TypeRowExerciseIDRequired      ErrorType = "ROW_EXERCISE_ID_REQUIRED"
	TypeRowInvalidOrderIndex       ErrorType = "ROW_INVALID_ORDER_INDEX"
	TypeRowInvalidOrderWithinGroup ErrorType = "ROW_INVALID_ORDER_WITHIN_GROUP"
	TypeRowRestInvalid             ErrorType = "ROW_REST_INVALID"
	TypeRowSelfParent              ErrorType = "ROW_SELF_PARENT"
)

// ValidationError is a domain invariant violation. Index fields locate the
// offending entity inside an aggregate and are -1 when not applicable.
// OrderIndex carries the clashing value for duplicate order index failures.
type ValidationError struct {
	Type         ErrorType
	Message      string
	WeekIndex    int
	SessionIndex int
	GroupIndex   int
	ItemIndex    int
	SeriesIndex  int
	OrderIndex   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// IsValidationType reports whether err is a *ValidationError of type t.
func IsValidationType(err error, t ErrorType) bool {
	var verr *ValidationError
	return errors.As(err, &verr) && verr.Type == t
}

// position locates an entity inside the aggregate while validating it.
type position struct {
	week, session, group, item, series int
}

var root = position{week: -1, session: -1, group: -1, item: -1, series: -1}

func (p position) inWeek(i int) position    { p.week = i; return p }
func (p position) inSession(i int) position { p.session = i; return p }
func (p position) inGroup(i int) position   { p.group = i; return p }
func (p position) inItem(i int) position    { p.item = i; return p }
func (p position) inSeries(i int) position  { p.series = i; return p }

func (p position) fail(t ErrorType, msg string) *ValidationError {
	return &ValidationError{
		Type:         t,
		Message:      msg,
		WeekIndex:    p.week,
		SessionIndex: p.session,
		GroupIndex:   p.group,
		ItemIndex:    p.item,
		SeriesIndex:  p.series,
		OrderIndex:   -1,
	}
}

func (p position) duplicate(t ErrorType, entity string, orderIndex int) *ValidationError {
	e := p.fail(t, fmt.Sprintf("duplicate %s orderIndex: %d", entity, orderIndex))
	e.OrderIndex = orderIndex
	return e
}

// RepositoryErrorType classifies storage failures.
type RepositoryErrorType string

// Repository error types
const (
	RepoNotFound      RepositoryErrorType = "NOT_FOUND"
	RepoDatabaseError RepositoryErrorType = "DATABASE_ERROR"
)

// Entity types reported in NOT_FOUND repository errors.
const (
	EntityProgram  = "program"
	EntityWeek     = "week"
	EntitySession  = "session"
	EntityGroup    = "exercise_group"
	EntityRow      = "exercise_row"
	EntityExercise = "exercise"
)

// RepositoryError is returned by repository adapters.
type RepositoryError struct {
	Type       RepositoryErrorType
	EntityType string
	ID         string
	Message    string
	Cause      error
}

func (e *RepositoryError) Error() string {
	if e.Type == RepoNotFound {
		return fmt.Sprintf("%s not found: %s", e.EntityType, e.ID)
	}
	return "database error: " + e.Message
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// NotFound builds a NOT_FOUND repository error.
func NotFound(entityType, id string) *RepositoryError {
	return &RepositoryError{Type: RepoNotFound, EntityType: entityType, ID: id}
}

// DatabaseError wraps a storage failure as a DATABASE_ERROR repository error.
func DatabaseError(op string, cause error) *RepositoryError {
	msg := op
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", op, cause)
	}
	return &RepositoryError{Type: RepoDatabaseError, Message: msg, Cause: cause}
}
