package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iwc-recycling/accounts-api/internal/api/middleware"
)

// ctxAccountID extracts the account id injected by the Auth middleware.
// Presence proves the middleware ran; a protected handler reached without it
// is a wiring bug, rejected with 401 rather than served.
func ctxAccountID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.AccountIDKey).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
