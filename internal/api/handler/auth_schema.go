package handler

import "github.com/iwc-recycling/accounts-api/internal/core/domain"

type signupRequest struct {
	FullName string `json:"fullName" validate:"required,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	// Role is optional; an empty value defaults to client.
	Role string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// signupResponse mirrors the envelope the SPA expects. Token is an explicit
// null when the account awaits approval.
type signupResponse struct {
	Success          bool            `json:"success"`
	Token            *string         `json:"token"`
	RequiresApproval bool            `json:"requiresApproval"`
	Message          string          `json:"message"`
	User             *domain.Account `json:"user"`
}

type loginResponse struct {
	Success bool            `json:"success"`
	Token   string          `json:"token"`
	User    *domain.Account `json:"user"`
}

type userResponse struct {
	Success bool            `json:"success"`
	User    *domain.Account `json:"user"`
	Message string          `json:"message,omitempty"`
}

type roleCountsResponse struct {
	Success bool             `json:"success"`
	Counts  map[string]int64 `json:"counts"`
}

type routesResponse struct {
	Success     bool    `json:"success"`
	Routes      []route `json:"routes"`
	DefaultPath string  `json:"defaultPath"`
}

type route struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
