package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/peerpay-dev/peerpay/domain"
)

// MemoryPendingAuthStore implements PendingAuthStore using ttlcache.
// Suitable for a single-process deployment; records do not survive a
// restart, so a restart invalidates all in-flight payments.
type MemoryPendingAuthStore struct {
	mu    sync.Mutex
	cache *ttlcache.Cache[string, *domain.PendingAuthorization]
	ttl   time.Duration
}

// NewMemoryPendingAuthStore creates an in-memory store with automatic
// cleanup. A ttl of zero uses DefaultPendingTTL.
func NewMemoryPendingAuthStore(ttl time.Duration) *MemoryPendingAuthStore {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}

	cache := ttlcache.New(
		ttlcache.WithTTL[string, *domain.PendingAuthorization](ttl),
		ttlcache.WithDisableTouchOnHit[string, *domain.PendingAuthorization](),
	)

	// Start the cleanup process
	go cache.Start()

	return &MemoryPendingAuthStore{
		cache: cache,
		ttl:   ttl,
	}
}

// Put implements PendingAuthStore.Put.
func (s *MemoryPendingAuthStore) Put(_ context.Context, auth *domain.PendingAuthorization) error {
	now := time.Now()
	if auth.CreatedAt.IsZero() {
		auth.CreatedAt = now
	}
	if auth.ExpiresAt.IsZero() {
		auth.ExpiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(auth.SessionID, auth, time.Until(auth.ExpiresAt))
	return nil
}

// TakeAndConsume implements PendingAuthStore.TakeAndConsume. The mutex makes
// the get-then-delete pair atomic, so at most one caller wins per key.
func (s *MemoryPendingAuthStore) TakeAndConsume(_ context.Context, sessionID string) (*domain.PendingAuthorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.cache.Get(sessionID)
	if item == nil {
		return nil, ErrPendingAuthNotFound
	}
	auth := item.Value()
	s.cache.Delete(sessionID)

	// ttlcache evicts on its own schedule; the record's own deadline is
	// what counts.
	if auth.Expired(time.Now()) {
		return nil, ErrPendingAuthNotFound
	}
	return auth, nil
}

// Delete implements PendingAuthStore.Delete.
func (s *MemoryPendingAuthStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(sessionID)
	return nil
}

// Len counts the records currently held.
func (s *MemoryPendingAuthStore) Len() int {
	return s.cache.Len()
}

// Close stops the cleanup goroutine.
func (s *MemoryPendingAuthStore) Close() error {
	s.cache.Stop()
	return nil
}
