package domain

import (
	"errors"
	"strings"
)

var (
	ErrInspectionNotFound = errors.New("inspection not found")
	ErrClosureNotFound    = errors.New("closure not found")
	ErrServiceNotFound    = errors.New("service not found")
	ErrIndicationNotFound = errors.New("indication not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrProfileInconsistency means the credentials checked out but no profile
	// document exists for the identity. The session is torn down immediately.
	ErrProfileInconsistency = errors.New("authenticated identity has no profile")
	ErrPermissionDenied     = errors.New("permission denied")
	// ErrClosedPeriod blocks any financial-field mutation on an inspection
	// whose reference month is locked by a closure.
	ErrClosedPeriod      = errors.New("month is closed for financial changes")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrResetTokenInvalid = errors.New("password reset token invalid or expired")
)

// ValidationError carries the full list of human-readable messages for a
// rejected save. Nothing is persisted when validation fails.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// AsValidation unwraps err into a *ValidationError when possible.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
