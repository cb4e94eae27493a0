package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
)

const accountCollection = "accounts"

// AccountRepository persists accounts in MongoDB. A unique index on the
// normalized email field enforces uniqueness at the storage layer, closing
// the duplicate window left by the application-level pre-check.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type mongoAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FullName     string             `bson:"full_name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Approved     bool               `bson:"approved"`
	CreatedAt    int64              `bson:"created_at"`
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := mongoAccount{
		FullName:     account.FullName,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		Role:         string(account.Role),
		Approved:     account.Approved,
		CreatedAt:    account.CreatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert account: unexpected id type %T", res.InsertedID)
	}
	created := *account
	created.ID = id.Hex()
	return &created, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var ma mongoAccount
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	var ma mongoAccount
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *AccountRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"role": string(role)})
	if err != nil {
		return 0, fmt.Errorf("count role %s: %w", role, err)
	}
	return n, nil
}

func (r *AccountRepository) RoleCounts(ctx context.Context) (map[domain.Role]int64, error) {
	cursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate role counts: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[domain.Role]int64)
	for cursor.Next(ctx) {
		var row struct {
			Role  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode role count: %w", err)
		}
		counts[domain.Role(row.Role)] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("role counts cursor: %w", err)
	}
	return counts, nil
}

func (r *AccountRepository) SetApproved(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	var ma mongoAccount
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"approved": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&ma)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("approve account: %w", err)
	}
	return ma.toDomain(), nil
}

func (ma mongoAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:           ma.ID.Hex(),
		FullName:     ma.FullName,
		Email:        ma.Email,
		PasswordHash: ma.PasswordHash,
		Role:         domain.Role(ma.Role),
		Approved:     ma.Approved,
		CreatedAt:    unixToTime(ma.CreatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
