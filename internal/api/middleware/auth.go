package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iwc-recycling/accounts-api/internal/api/metrics"
	"github.com/iwc-recycling/accounts-api/internal/core/domain"
	"github.com/iwc-recycling/accounts-api/internal/core/ports"
)

// AccountIDKey is the context key under which Auth stores the verified
// account id.
const AccountIDKey = "accountID"

// Auth validates the bearer token and injects the account id into context.
// Expired and malformed tokens produce distinct 401 messages; both mean the
// client must re-authenticate.
func Auth(tokens ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header")
			}

			accountID, err := tokens.Verify(parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
				} else {
					metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				}
				return err
			}
			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()

			c.Set(AccountIDKey, accountID)
			return next(c)
		}
	}
}
