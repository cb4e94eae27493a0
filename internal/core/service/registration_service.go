package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
	"github.com/iwc-recycling/accounts-api/internal/core/ports"
)

// RegistrationService creates accounts, enforcing the role policy: field
// validation, email uniqueness, per-role quotas, and the initial approval
// state. Auto-approved accounts get a session token in the same call.
type RegistrationService struct {
	repo   ports.AccountRepository
	tokens ports.TokenIssuer
	policy domain.RolePolicy
	audit  ports.AuditSink

	// roleMu serializes the count-then-create window per quota-limited role.
	// This closes the quota race within a single process; the repository's
	// unique email index backstops duplicate emails across processes.
	roleMu map[domain.Role]*sync.Mutex
}

func NewRegistrationService(repo ports.AccountRepository, tokens ports.TokenIssuer, policy domain.RolePolicy, audit ports.AuditSink) *RegistrationService {
	mu := make(map[domain.Role]*sync.Mutex)
	for _, role := range domain.Roles() {
		if _, ok := policy.QuotaFor(role); ok {
			mu[role] = &sync.Mutex{}
		}
	}
	return &RegistrationService{
		repo:   repo,
		tokens: tokens,
		policy: policy,
		audit:  audit,
		roleMu: mu,
	}
}

// Register validates the signup and persists the account. An omitted role
// defaults to client before any validation runs. All checks happen before
// the single atomic create; there are no partial writes.
func (s *RegistrationService) Register(ctx context.Context, input ports.RegisterInput) (*ports.RegisterResult, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleClient
	}

	fullName := strings.TrimSpace(input.FullName)
	email := domain.NormalizeEmail(input.Email)
	if err := validateFields(fullName, email, input.Password); err != nil {
		return nil, err
	}
	if !s.policy.IsValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	if mu, ok := s.roleMu[role]; ok {
		mu.Lock()
		defer mu.Unlock()
	}

	if err := s.checkEmailFree(ctx, email); err != nil {
		return nil, err
	}
	if err := s.checkQuota(ctx, role); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Approved:     s.policy.AutoApprove(role),
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	result := &ports.RegisterResult{
		Account:          created,
		RequiresApproval: !created.Approved,
	}
	if created.Approved {
		token, err := s.tokens.Issue(created.ID)
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		result.Token = token
	}

	s.audit.Enqueue(domain.AuthEvent{
		Email: created.Email,
		Kind:  domain.AuthEventSignup,
		Role:  created.Role,
		At:    time.Now().UTC(),
	})

	return result, nil
}

func (s *RegistrationService) checkEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrEmailTaken
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	default:
		return fmt.Errorf("lookup email: %w", err)
	}
}

func (s *RegistrationService) checkQuota(ctx context.Context, role domain.Role) error {
	quota, ok := s.policy.QuotaFor(role)
	if !ok {
		return nil
	}
	count, err := s.repo.CountByRole(ctx, role)
	if err != nil {
		return fmt.Errorf("count role %s: %w", role, err)
	}
	if count >= int64(quota) {
		return domain.QuotaError{Role: role, Limit: quota}
	}
	return nil
}

func validateFields(fullName, email, password string) error {
	if fullName == "" {
		return domain.ValidationError{Message: "Please provide a full name"}
	}
	if len(fullName) > domain.MaxFullNameLen {
		return domain.ValidationError{Message: fmt.Sprintf("Name cannot be more than %d characters", domain.MaxFullNameLen)}
	}
	if !domain.ValidEmail(email) {
		return domain.ValidationError{Message: "Please provide a valid email"}
	}
	if len(password) < domain.MinPasswordLen {
		return domain.ValidationError{Message: fmt.Sprintf("Password must be at least %d characters", domain.MinPasswordLen)}
	}
	return nil
}
