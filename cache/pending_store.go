// Package cache holds the pending-authorization store: the only shared
// mutable state in the grant lifecycle. A record is written once at
// start-payment time and consumed destructively exactly once when the
// interaction callback arrives.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/peerpay-dev/peerpay/domain"
)

// ErrPendingAuthNotFound is returned when a key is absent, expired, or
// already consumed. Callers must treat it as terminal and never retry.
var ErrPendingAuthNotFound = errors.New("pending authorization not found")

// DefaultPendingTTL matches typical authorization-server interaction
// session lifetimes.
const DefaultPendingTTL = 15 * time.Minute

// PendingAuthStore stores in-flight interactive grants keyed by session id.
//
// TakeAndConsume must be an atomic read-then-delete on every backend: two
// concurrent callbacks for the same key must not both succeed.
type PendingAuthStore interface {
	// Put stores one pending authorization under auth.SessionID. The record
	// becomes invisible after its ExpiresAt regardless of backend cleanup.
	Put(ctx context.Context, auth *domain.PendingAuthorization) error

	// TakeAndConsume atomically retrieves and deletes the record, or
	// returns ErrPendingAuthNotFound.
	TakeAndConsume(ctx context.Context, sessionID string) (*domain.PendingAuthorization, error)

	// Delete discards a record without returning it (user abort).
	Delete(ctx context.Context, sessionID string) error

	// Close releases backend resources.
	Close() error
}
