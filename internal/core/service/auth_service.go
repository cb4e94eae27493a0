package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
	"github.com/iwc-recycling/accounts-api/internal/core/ports"
)

// AuthService implements login, account lookup, and the admin approval
// action. Unknown email and wrong password are indistinguishable to the
// caller; the log distinguishes them for diagnostics.
type AuthService struct {
	repo    ports.AccountRepository
	tokens  ports.TokenIssuer
	limiter ports.LoginLimiter
	audit   ports.AuditSink
	log     zerolog.Logger
}

func NewAuthService(repo ports.AccountRepository, tokens ports.TokenIssuer, limiter ports.LoginLimiter, audit ports.AuditSink, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, limiter: limiter, audit: audit, log: log}
}

// Login validates credentials and the approval state, then issues a session
// token. The caller receives the account without its password hash exposed.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = domain.NormalizeEmail(email)

	blocked, err := s.limiter.TooManyFailures(ctx, email)
	if err != nil {
		// Limiter outages must not lock everyone out; log and continue.
		s.log.Warn().Err(err).Msg("login limiter unavailable")
	} else if blocked {
		return "", nil, domain.ErrTooManyAttempts
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.log.Debug().Str("email", email).Msg("login failed: unknown email")
			s.recordFailure(ctx, email, "unknown email")
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.log.Debug().Str("email", email).Msg("login failed: password mismatch")
		s.recordFailure(ctx, email, "password mismatch")
		return "", nil, domain.ErrInvalidCredentials
	}

	if !account.Approved {
		return "", nil, domain.ErrPendingApproval
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login limiter reset failed")
	}
	s.audit.Enqueue(domain.AuthEvent{
		Email: email,
		Kind:  domain.AuthEventLogin,
		Role:  account.Role,
		At:    time.Now().UTC(),
	})

	return token, account, nil
}

// Account returns the account bound to a verified session token.
func (s *AuthService) Account(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// Approve flips a pending account to approved. The transition is
// one-directional and idempotent; outstanding tokens are unaffected.
func (s *AuthService) Approve(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.repo.SetApproved(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Enqueue(domain.AuthEvent{
		Email: account.Email,
		Kind:  domain.AuthEventApproved,
		Role:  account.Role,
		At:    time.Now().UTC(),
	})
	return account, nil
}

// RoleCounts returns the number of accounts per role, with every role from
// the closed set present even when zero.
func (s *AuthService) RoleCounts(ctx context.Context) (map[domain.Role]int64, error) {
	counts, err := s.repo.RoleCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("role counts: %w", err)
	}
	result := make(map[domain.Role]int64, len(domain.Roles()))
	for _, role := range domain.Roles() {
		result[role] = counts[role]
	}
	return result, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email, detail string) {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login limiter record failed")
	}
	s.audit.Enqueue(domain.AuthEvent{
		Email:  email,
		Kind:   domain.AuthEventLoginFailed,
		Detail: detail,
		At:     time.Now().UTC(),
	})
}
