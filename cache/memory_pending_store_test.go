package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerpay-dev/peerpay/domain"
)

func newTestStore(t *testing.T) *MemoryPendingAuthStore {
	t.Helper()
	store := NewMemoryPendingAuthStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(sessionID string) *domain.PendingAuthorization {
	return &domain.PendingAuthorization{
		SessionID:     sessionID,
		ContinueToken: "cont-tok",
		ContinueURI:   "https://auth.wallet.example/continue/1",
		ClientNonce:   "cn",
		FinishNonce:   "fn",
		GrantEndpoint: "https://auth.wallet.example/",
		QuoteID:       "https://ilp.wallet.example/quotes/1",
	}
}

func TestMemoryStorePutAndConsume(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testRecord("s1")))
	assert.Equal(t, 1, store.Len())

	record, err := store.TakeAndConsume(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "cont-tok", record.ContinueToken)
	assert.False(t, record.CreatedAt.IsZero())
	assert.False(t, record.ExpiresAt.IsZero())

	// Consumed means gone.
	_, err = store.TakeAndConsume(ctx, "s1")
	assert.ErrorIs(t, err, ErrPendingAuthNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreUnknownSession(t *testing.T) {
	store := newTestStore(t)

	_, err := store.TakeAndConsume(context.Background(), "never-stored")
	assert.ErrorIs(t, err, ErrPendingAuthNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testRecord("s1")))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.TakeAndConsume(ctx, "s1")
	assert.ErrorIs(t, err, ErrPendingAuthNotFound)
}

func TestMemoryStoreExpiredRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := testRecord("s1")
	record.CreatedAt = time.Now().Add(-20 * time.Minute)
	record.ExpiresAt = time.Now().Add(-5 * time.Minute)
	require.NoError(t, store.Put(ctx, record))

	_, err := store.TakeAndConsume(ctx, "s1")
	assert.ErrorIs(t, err, ErrPendingAuthNotFound)
}

func TestMemoryStoreKeyedPerSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testRecord("s1")
	a.QuoteID = "https://ilp.wallet.example/quotes/a"
	b := testRecord("s2")
	b.QuoteID = "https://ilp.wallet.example/quotes/b"

	require.NoError(t, store.Put(ctx, a))
	require.NoError(t, store.Put(ctx, b))
	assert.Equal(t, 2, store.Len())

	got, err := store.TakeAndConsume(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "https://ilp.wallet.example/quotes/b", got.QuoteID)

	got, err = store.TakeAndConsume(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "https://ilp.wallet.example/quotes/a", got.QuoteID)
}

// Exactly one of N concurrent consumers may win a given session.
func TestMemoryStoreConcurrentConsume(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testRecord("s1")))

	const workers = 32
	var wg sync.WaitGroup
	var wins int64
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.TakeAndConsume(ctx, "s1"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)
}
