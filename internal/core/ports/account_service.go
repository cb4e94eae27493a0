package ports

import (
	"context"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
)

// RegisterInput carries a raw signup request into the registration service.
// Role may be empty; the service applies the client default before
// validation.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     domain.Role
}

// RegisterResult is the outcome of a successful registration. Token is empty
// when the account awaits manual approval.
type RegisterResult struct {
	Account          *domain.Account
	Token            string
	RequiresApproval bool
}

// RegistrationService creates accounts subject to role policy.
type RegistrationService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
}

// AccountService covers login and the account lookups the protected routes
// need.
type AccountService interface {
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	Account(ctx context.Context, id string) (*domain.Account, error)
	Approve(ctx context.Context, id string) (*domain.Account, error)
	RoleCounts(ctx context.Context) (map[domain.Role]int64, error)
}
