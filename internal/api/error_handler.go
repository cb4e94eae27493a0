package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success":false,"message":"..."}.
//
// When exposeInternals is true (non-production), unexpected errors carry the
// underlying cause and a stack trace in the response.
func NewHTTPErrorHandler(log zerolog.Logger, exposeInternals bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, internal := resolveError(err, log, c)
		resp := errorResponse{Message: msg}
		if internal && exposeInternals {
			resp.Message = err.Error()
			resp.Stack = string(debug.Stack())
		}
		_ = c.JSON(code, resp)
	}
}

// resolveError picks the status code and message for an error. internal is
// true for unclassified failures, whose details stay out of production
// responses.
func resolveError(err error, log zerolog.Logger, c echo.Context) (code int, msg string, internal bool) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), false
	}

	// Specific request rejections carry their own messages.
	var ve domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message, false
	}
	var qe domain.QuotaError
	if errors.As(err, &qe) {
		return http.StatusBadRequest, qe.Error(), false
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role specified", false
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusBadRequest, "Email already registered", false
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials", false
	case errors.Is(err, domain.ErrPendingApproval):
		return http.StatusForbidden, "Account pending admin approval", false
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired", false
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, "Invalid token", false
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "Too many failed login attempts, try again later", false
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "User not found", false
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access forbidden", false
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal Server Error", true
}
