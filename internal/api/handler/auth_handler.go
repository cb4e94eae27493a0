package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iwc-recycling/accounts-api/internal/api/metrics"
	"github.com/iwc-recycling/accounts-api/internal/core/authz"
	"github.com/iwc-recycling/accounts-api/internal/core/domain"
	"github.com/iwc-recycling/accounts-api/internal/core/ports"
)

// AuthHandler serves the /api/auth surface.
type AuthHandler struct {
	registration ports.RegistrationService
	accounts     ports.AccountService
}

func NewAuthHandler(registration ports.RegistrationService, accounts ports.AccountService) *AuthHandler {
	return &AuthHandler{registration: registration, accounts: accounts}
}

// Signup creates a new account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Signup details"
// @Success      201   {object}  signupResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.registration.Register(c.Request().Context(), ports.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(metricRole(req.Role), "rejected").Inc()
		var qe domain.QuotaError
		if errors.As(err, &qe) {
			metrics.QuotaRejectionsTotal.WithLabelValues(string(qe.Role)).Inc()
		}
		return err
	}

	resp := signupResponse{
		Success:          true,
		RequiresApproval: res.RequiresApproval,
		User:             res.Account,
	}
	if res.RequiresApproval {
		resp.Message = "Account created, pending admin approval"
		metrics.SignupsTotal.WithLabelValues(string(res.Account.Role), "pending").Inc()
	} else {
		resp.Message = "Account created successfully"
		resp.Token = &res.Token
		metrics.SignupsTotal.WithLabelValues(string(res.Account.Role), "approved").Inc()
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login authenticates an account and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, account, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Success: true,
		Token:   token,
		User:    account,
	})
}

// Me returns the account behind the bearer token.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  userResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.Account(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Success: true, User: account})
}

// Routes returns the dashboard routes and landing path for the session role,
// so the SPA's navigation and route guard render from server truth.
//
// @Summary      Allowed dashboard routes
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  routesResponse
// @Router       /api/auth/routes [get]
func (h *AuthHandler) Routes(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.Account(c.Request().Context(), accountID)
	if err != nil {
		return err
	}

	allowed := authz.RoutesFor(account.Role)
	routes := make([]route, len(allowed))
	for i, r := range allowed {
		routes[i] = route{Path: r.Path, Label: r.Label}
	}
	return c.JSON(http.StatusOK, routesResponse{
		Success:     true,
		Routes:      routes,
		DefaultPath: authz.DefaultPath(account.Role),
	})
}

// Approve flips a pending account to approved. Admin only; the RBAC
// middleware enforces the role.
//
// @Summary      Approve a pending account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Account id"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/auth/approve/{id} [post]
func (h *AuthHandler) Approve(c echo.Context) error {
	account, err := h.accounts.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{
		Success: true,
		User:    account,
		Message: "Account approved",
	})
}

// RoleCounts returns the number of accounts per role, every role present.
//
// @Summary      Accounts per role
// @Tags         auth
// @Produce      json
// @Success      200   {object}  roleCountsResponse
// @Router       /api/auth/role-counts [get]
func (h *AuthHandler) RoleCounts(c echo.Context) error {
	counts, err := h.accounts.RoleCounts(c.Request().Context())
	if err != nil {
		return err
	}
	out := make(map[string]int64, len(counts))
	for role, n := range counts {
		out[string(role)] = n
	}
	return c.JSON(http.StatusOK, roleCountsResponse{Success: true, Counts: out})
}

// Google is a placeholder for OAuth sign-in.
//
// @Summary      Google OAuth (not implemented)
// @Tags         auth
// @Produce      json
// @Failure      501   {object}  messageResponse
// @Router       /api/auth/google [get]
func (h *AuthHandler) Google(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, messageResponse{
		Success: false,
		Message: "Google OAuth not yet implemented",
	})
}

// metricRole clamps a client-supplied role to the known set so label
// cardinality stays bounded.
func metricRole(role string) string {
	if role == "" {
		return string(domain.RoleClient)
	}
	for _, r := range domain.Roles() {
		if string(r) == role {
			return role
		}
	}
	return "unknown"
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrPendingApproval):
		return "pending_approval"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "rate_limited"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
