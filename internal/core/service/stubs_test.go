package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
)

// stubAccountRepo is an in-memory AccountRepository safe for concurrent use.
type stubAccountRepo struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*domain.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *stubAccountRepo) RoleCounts(_ context.Context) (map[domain.Role]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.Role]int64)
	for _, a := range r.accounts {
		counts[a.Role]++
	}
	return counts, nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	created := cloneAccount(account)
	created.ID = "acc_" + strconv.Itoa(r.seq)
	r.accounts[created.ID] = cloneAccount(created)
	return created, nil
}

func (r *stubAccountRepo) SetApproved(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Approved = true
	return cloneAccount(a), nil
}

// noopSink discards audit events.
type noopSink struct{}

func (noopSink) Enqueue(domain.AuthEvent) {}

// captureSink keeps enqueued audit events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (s *captureSink) Enqueue(e domain.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *captureSink) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind
	}
	return out
}

// stubLimiter is a LoginLimiter with a switchable blocked state.
type stubLimiter struct {
	mu       sync.Mutex
	blocked  bool
	failures map[string]int
	resets   int
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int)}
}

func (l *stubLimiter) TooManyFailures(_ context.Context, _ string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.blocked, nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, email)
	l.resets++
	return nil
}
