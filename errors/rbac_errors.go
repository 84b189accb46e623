package errors

import "errors"

var (
	ErrPermissionNotFound    = errors.New("permission not found")
	ErrPermissionConflict    = errors.New("permission conflict")
	ErrInvalidPermissionData = errors.New("invalid permission data")

	ErrRoleNotFound    = errors.New("role not found")
	ErrRoleConflict    = errors.New("role conflict")
	ErrInvalidRoleData = errors.New("invalid role data")

	ErrGroupNotFound    = errors.New("group not found")
	ErrGroupConflict    = errors.New("group conflict")
	ErrInvalidGroupData = errors.New("invalid group data")

	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidAssignment is returned when a grant references a
	// role/permission/group/user that does not exist. The mutation is
	// rejected before anything is applied.
	ErrInvalidAssignment = errors.New("invalid assignment")

	// ErrCrossOrganization is returned when an assignment would bind an
	// entity owned by a different organization.
	ErrCrossOrganization = errors.New("cross-organization assignment")

	// ErrAccessDenied is the decision surface saying no. Surfaced as 403,
	// never retried.
	ErrAccessDenied = errors.New("access denied")
)
