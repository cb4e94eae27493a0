package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the core services. The HTTP layer maps each of
// these to a status code and user-facing message; anything else is treated as
// an internal failure.
var (
	ErrInvalidRole        = errors.New("invalid role specified")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("account pending admin approval")
	ErrAccountNotFound    = errors.New("account not found")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrForbidden          = errors.New("access forbidden")
)

// ValidationError reports a malformed request field. The message is specific
// and safe to return to the caller.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// QuotaError reports that a role's registration quota is full. The message
// names the role and the numeric limit.
type QuotaError struct {
	Role  Role
	Limit int
}

func (e QuotaError) Error() string {
	return fmt.Sprintf("Maximum %s personnel (%d) reached", e.Role, e.Limit)
}
