package domain

import "time"

// Kinds of auth events recorded in the audit trail.
const (
	AuthEventSignup      = "signup"
	AuthEventLogin       = "login"
	AuthEventLoginFailed = "login_failed"
	AuthEventApproved    = "approved"
)

// AuthEvent is one entry in the authentication audit trail. Events for the
// same email are processed in order.
type AuthEvent struct {
	Email  string
	Kind   string
	Role   Role
	Detail string
	At     time.Time
}
