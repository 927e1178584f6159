package services

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")

	ErrProjectNotFound    = errors.New("project not found")
	ErrAccessDenied       = errors.New("access denied to this project")
	ErrNotOwner           = errors.New("only the project owner can do this")
	ErrAlreadyAssigned    = errors.New("user is already assigned to this project")
	ErrAssignmentNotFound = errors.New("user is not assigned to this project")
	ErrCannotRemoveOwner  = errors.New("cannot remove the project owner")

	ErrServiceNotFound        = errors.New("service not found")
	ErrInvalidInterval        = errors.New("minute_interval must be at least 1 when auto_check is enabled")
	ErrServiceProjectMismatch = errors.New("service does not belong to this project")

	ErrLogNotFound      = errors.New("log not found")
	ErrQueryLogNotFound = errors.New("query log not found")

	ErrEndpointUnreachable = errors.New("endpoint could not be reached")
)
