package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peerpay-dev/peerpay/cache"
	"github.com/peerpay-dev/peerpay/domain"
)

// PendingAuthRepository implements cache.PendingAuthStore on a MongoDB
// collection. Consumption uses FindOneAndDelete so that two concurrent
// callbacks cannot both succeed on the same record.
type PendingAuthRepository struct {
	coll *mongo.Collection
	ttl  time.Duration
}

// NewPendingAuthRepository creates the repository and ensures its indexes:
// a unique index on session_id and a TTL index on expires_at. A ttl of zero
// uses cache.DefaultPendingTTL.
func NewPendingAuthRepository(ctx context.Context, db *mongo.Database, ttl time.Duration) (*PendingAuthRepository, error) {
	if ttl <= 0 {
		ttl = cache.DefaultPendingTTL
	}

	coll := db.Collection(PendingAuthCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// expireAfterSeconds 0 lets each document carry its own deadline.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure pending authorization indexes: %w", err)
	}

	return &PendingAuthRepository{coll: coll, ttl: ttl}, nil
}

// Put implements cache.PendingAuthStore.Put.
func (r *PendingAuthRepository) Put(ctx context.Context, auth *domain.PendingAuthorization) error {
	if auth.SessionID == "" {
		return errors.New("pending authorization session id cannot be empty")
	}

	now := time.Now().UTC()
	if auth.CreatedAt.IsZero() {
		auth.CreatedAt = now
	}
	if auth.ExpiresAt.IsZero() {
		auth.ExpiresAt = now.Add(r.ttl)
	}

	if _, err := r.coll.InsertOne(ctx, auth); err != nil {
		var writeException mongo.WriteException
		if errors.As(err, &writeException) {
			for _, writeError := range writeException.WriteErrors {
				if writeError.Code == 11000 || writeError.Code == 11001 {
					return fmt.Errorf("pending authorization %s already exists: %w", auth.SessionID, err)
				}
			}
		}
		return fmt.Errorf("failed to save pending authorization: %w", err)
	}

	log.Debug().Str("session_id", auth.SessionID).Msg("Pending authorization saved")
	return nil
}

// TakeAndConsume implements cache.PendingAuthStore.TakeAndConsume. The
// filter excludes documents past their deadline that the TTL monitor has
// not reclaimed yet.
func (r *PendingAuthRepository) TakeAndConsume(ctx context.Context, sessionID string) (*domain.PendingAuthorization, error) {
	filter := bson.M{
		"session_id": sessionID,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}

	var auth domain.PendingAuthorization
	err := r.coll.FindOneAndDelete(ctx, filter).Decode(&auth)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cache.ErrPendingAuthNotFound
		}
		return nil, fmt.Errorf("failed to consume pending authorization: %w", err)
	}
	return &auth, nil
}

// Delete implements cache.PendingAuthStore.Delete.
func (r *PendingAuthRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("failed to delete pending authorization: %w", err)
	}
	return nil
}

// Close is a no-op; connection lifetime belongs to the shared client.
func (r *PendingAuthRepository) Close() error { return nil }
