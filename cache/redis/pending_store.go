// Package redis backs the pending-authorization store with Redis, so
// in-flight payments survive a process restart and multiple bridge
// instances can share one store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peerpay-dev/peerpay/cache"
	"github.com/peerpay-dev/peerpay/domain"
)

// PendingAuthStore implements cache.PendingAuthStore using Redis.
type PendingAuthStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewPendingAuthStore creates a Redis-backed store. A ttl of zero uses
// cache.DefaultPendingTTL.
func NewPendingAuthStore(client *redis.Client, prefix string, ttl time.Duration) *PendingAuthStore {
	if ttl <= 0 {
		ttl = cache.DefaultPendingTTL
	}
	return &PendingAuthStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *PendingAuthStore) redisKey(sessionID string) string {
	return fmt.Sprintf("%s:pending-auth:%s", s.prefix, sessionID)
}

// Put stores the record as JSON with the TTL applied by Redis itself.
func (s *PendingAuthStore) Put(ctx context.Context, auth *domain.PendingAuthorization) error {
	now := time.Now()
	if auth.CreatedAt.IsZero() {
		auth.CreatedAt = now
	}
	if auth.ExpiresAt.IsZero() {
		auth.ExpiresAt = now.Add(s.ttl)
	}

	payload, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("failed to marshal pending authorization: %w", err)
	}

	if err := s.client.Set(ctx, s.redisKey(auth.SessionID), payload, time.Until(auth.ExpiresAt)).Err(); err != nil {
		return fmt.Errorf("failed to store pending authorization in Redis: %w", err)
	}
	return nil
}

// TakeAndConsume uses GETDEL, which Redis executes atomically: concurrent
// callbacks race for one winner and the losers see nil.
func (s *PendingAuthStore) TakeAndConsume(ctx context.Context, sessionID string) (*domain.PendingAuthorization, error) {
	payload, err := s.client.GetDel(ctx, s.redisKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrPendingAuthNotFound
		}
		return nil, fmt.Errorf("failed to consume pending authorization from Redis: %w", err)
	}

	var auth domain.PendingAuthorization
	if err := json.Unmarshal(payload, &auth); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending authorization: %w", err)
	}

	if auth.Expired(time.Now()) {
		return nil, cache.ErrPendingAuthNotFound
	}
	return &auth, nil
}

// Delete implements cache.PendingAuthStore.Delete.
func (s *PendingAuthStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending authorization from Redis: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *PendingAuthStore) Close() error {
	return s.client.Close()
}
