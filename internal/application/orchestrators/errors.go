package orchestrators

import (
	"errors"
	"fmt"
	"log/slog"

	"strenly/internal/domain/authz"
	"strenly/internal/domain/program"
)

// ErrorKind tags the failure of a use case.
type ErrorKind string

// Error kinds
const (
	KindForbidden         ErrorKind = "forbidden"
	KindNotFound          ErrorKind = "not_found"
	KindProgramNotFound   ErrorKind = "program_not_found"
	KindValidation        ErrorKind = "validation_error"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindInvalidParent     ErrorKind = "invalid_parent"
	KindConflict          ErrorKind = "conflict" // reserved; save draft only warns
	KindRepository        ErrorKind = "repository_error"
)

// Error is returned by every program use case. Cause holds the underlying
// domain or repository error, reachable with errors.As.
type Error struct {
	Kind       ErrorKind
	Message    string
	EntityType string
	ID         string
	Cause      error
}

func (e *Error) Error() string {
	if e.Kind == KindNotFound || e.Kind == KindProgramNotFound {
		return fmt.Sprintf("%s: %s %s", e.Kind, e.EntityType, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of a use case error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var uerr *Error
	if errors.As(err, &uerr) {
		return uerr.Kind
	}
	return ""
}

// authorize checks the capability before any store is touched.
func authorize(org authz.OrgContext, perm authz.Permission, action string) error {
	if authz.HasPermission(org.Role, perm) {
		return nil
	}
	slog.Warn("authz_event", "event", "permission_denied", "action", action,
		"organization_id", org.OrganizationID, "user_id", org.UserID, "role", org.Role, "permission", perm)
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf("no permission to %s (%s)", action, perm)}
}

func validationFailed(err error) error {
	return &Error{Kind: KindValidation, Message: err.Error(), Cause: err}
}

// repositoryFailure maps a store error. NOT_FOUND keeps its entity and id;
// everything else becomes repository_error with the message passed through.
func repositoryFailure(action string, err error) error {
	var rerr *program.RepositoryError
	if errors.As(err, &rerr) {
		if rerr.Type == program.RepoNotFound {
			return &Error{Kind: KindNotFound, EntityType: rerr.EntityType, ID: rerr.ID, Message: rerr.Error(), Cause: err}
		}
		slog.Error("program_event", "event", "repository_error", "action", action, "error", rerr.Message)
		return &Error{Kind: KindRepository, Message: rerr.Message, Cause: err}
	}
	slog.Error("program_event", "event", "repository_error", "action", action, "error", err)
	return &Error{Kind: KindRepository, Message: err.Error(), Cause: err}
}
