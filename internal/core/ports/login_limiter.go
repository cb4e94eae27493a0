package ports

import "context"

// LoginLimiter throttles repeated failed logins per email address.
type LoginLimiter interface {
	// TooManyFailures reports whether the address has exhausted its failure
	// budget for the current window.
	TooManyFailures(ctx context.Context, email string) (bool, error)
	// RecordFailure counts one failed attempt.
	RecordFailure(ctx context.Context, email string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, email string) error
}
