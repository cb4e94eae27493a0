package ports

import (
	"context"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
)

// AccountRepository is the persistence boundary for accounts. Email values
// passed in are expected to be normalized (lowercase, trimmed); the store
// enforces a uniqueness constraint on them.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	RoleCounts(ctx context.Context) (map[domain.Role]int64, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	SetApproved(ctx context.Context, id string) (*domain.Account, error)
}
