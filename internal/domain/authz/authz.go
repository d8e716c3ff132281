// Package authz maps organization roles to permissions.
package authz

import (
	"errors"
	"slices"
	"strings"
)

// Role is a member's role within an organization.
type Role string

// Role constants
const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleOwner, RoleAdmin, RoleMember}

// ErrUnknownRole is returned by ParseRole for anything outside ValidRoles.
var ErrUnknownRole = errors.New("role must be one of: owner, admin, member")

// Permission is a capability string of the form "resource:action".
type Permission string

// Permissions
const (
	OrganizationRead   Permission = "organization:read"
	OrganizationManage Permission = "organization:manage"
	OrganizationDelete Permission = "organization:delete"

	MembersRead       Permission = "members:read"
	MembersInvite     Permission = "members:invite"
	MembersRemove     Permission = "members:remove"
	MembersUpdateRole Permission = "members:update-role"

	BillingRead   Permission = "billing:read"
	BillingManage Permission = "billing:manage"

	AthletesRead   Permission = "athletes:read"
	AthletesWrite  Permission = "athletes:write"
	AthletesDelete Permission = "athletes:delete"

	ProgramsRead   Permission = "programs:read"
	ProgramsWrite  Permission = "programs:write"
	ProgramsDelete Permission = "programs:delete"

	ExercisesRead  Permission = "exercises:read"
	ExercisesWrite Permission = "exercises:write"
)

var roleLevel = map[Role]int{
	RoleOwner:  100,
	RoleAdmin:  80,
	RoleMember: 40,
}

var rolePermissions = map[Role][]Permission{
	RoleOwner: {
		OrganizationRead, OrganizationManage, OrganizationDelete,
		MembersRead, MembersInvite, MembersRemove, MembersUpdateRole,
		BillingRead, BillingManage,
		AthletesRead, AthletesWrite, AthletesDelete,
		ProgramsRead, ProgramsWrite, ProgramsDelete,
		ExercisesRead, ExercisesWrite,
	},
	// admins cannot delete the organization, change roles or manage billing
	RoleAdmin: {
		OrganizationRead, OrganizationManage,
		MembersRead, MembersInvite, MembersRemove,
		BillingRead,
		AthletesRead, AthletesWrite, AthletesDelete,
		ProgramsRead, ProgramsWrite, ProgramsDelete,
		ExercisesRead, ExercisesWrite,
	},
	RoleMember: {
		OrganizationRead,
		MembersRead,
		AthletesRead, AthletesWrite,
		ProgramsRead, ProgramsWrite,
		ExercisesRead, ExercisesWrite,
	},
}

// OrgContext identifies the caller of a use case. Organization isolation is
// the caller's job; use cases pass it through to the stores.
type OrgContext struct {
	OrganizationID string
	UserID         string
	Role           Role
}

// HasPermission reports whether role grants permission. Unknown roles grant nothing.
func HasPermission(role Role, permission Permission) bool {
	return slices.Contains(rolePermissions[role], permission)
}

// GetPermissions returns a copy of the permissions granted to role.
func GetPermissions(role Role) []Permission {
	return slices.Clone(rolePermissions[role])
}

// HasHigherOrEqualRole reports whether role ranks at or above target.
func HasHigherOrEqualRole(role, target Role) bool {
	return roleLevel[role] >= roleLevel[target]
}

// IsValidRole reports whether s names a known role.
func IsValidRole(s string) bool {
	return slices.Contains(ValidRoles, Role(s))
}

// ParseRole converts user input to a Role, ignoring case and surrounding space.
func ParseRole(s string) (Role, error) {
	r := strings.ToLower(strings.TrimSpace(s))
	if !IsValidRole(r) {
		return "", ErrUnknownRole
	}
	return Role(r), nil
}
