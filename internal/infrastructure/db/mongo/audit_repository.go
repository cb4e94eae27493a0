package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
)

const auditCollection = "auth_events"

// AuditRepository appends auth events to a write-only collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuthEvent struct {
	Email  string `bson:"email"`
	Kind   string `bson:"kind"`
	Role   string `bson:"role,omitempty"`
	Detail string `bson:"detail,omitempty"`
	At     int64  `bson:"at"`
}

func (r *AuditRepository) Record(ctx context.Context, event domain.AuthEvent) error {
	doc := mongoAuthEvent{
		Email:  event.Email,
		Kind:   event.Kind,
		Role:   string(event.Role),
		Detail: event.Detail,
		At:     event.At.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
