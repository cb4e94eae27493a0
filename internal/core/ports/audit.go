package ports

import (
	"context"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
)

// AuditRecorder persists a single auth event.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}

// AuditSink accepts auth events for asynchronous recording. Enqueue must be
// cheap; callers fire and forget.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}
