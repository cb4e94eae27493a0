package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
	"github.com/iwc-recycling/accounts-api/internal/core/ports"
)

// RBAC enforces role-based access control. It loads the account behind the
// verified session (Auth must run first) and rejects roles outside the
// allowed set. The loaded account is cached in context under "account" for
// the handler.
func RBAC(accounts ports.AccountService, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accountID, _ := c.Get(AccountIDKey).(string)
			if accountID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			account, err := accounts.Account(c.Request().Context(), accountID)
			if err != nil {
				return err
			}
			if _, ok := allowed[account.Role]; !ok {
				return domain.ErrForbidden
			}

			c.Set("account", account)
			return next(c)
		}
	}
}
