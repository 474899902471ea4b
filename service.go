// Package peerpay implements the grant lifecycle of an Open Payments P2P
// bridge: invoice creation, price-locked quotes, interactive outgoing
// payment consent, and transaction history, on top of a GNAP-style
// authorization protocol.
package peerpay

import (
	"time"

	"github.com/peerpay-dev/peerpay/cache"
)

const (
	defaultInvoiceTTL      = 10 * time.Minute
	defaultHistoryPageSize = 50
)

// Options tunes a Service.
type Options struct {
	// CallbackBaseURL is the interaction finish target. The per-payment
	// session id is appended as a query parameter, so deep links
	// (scheme://payment/callback) work the same as plain HTTP callbacks.
	CallbackBaseURL string
	// PendingTTL bounds how long an interactive grant may stay in flight.
	PendingTTL time.Duration
	// IncludeOutgoingHistory toggles the outgoing side of history listing,
	// which some wallet providers cannot serve reliably.
	IncludeOutgoingHistory bool
	// HistoryPageSize is the page size for history list calls.
	HistoryPageSize int
	// InvoiceTTL is the expiry window of created invoices.
	InvoiceTTL time.Duration
}

// Service drives the grant lifecycle against wallets' authorization and
// resource servers. The pending-authorization store is its only shared
// mutable state.
type Service struct {
	clients ClientFactory
	pending cache.PendingAuthStore
	opts    Options
}

// NewService wires the service. Zero option values get working defaults.
func NewService(clients ClientFactory, pending cache.PendingAuthStore, opts Options) *Service {
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = cache.DefaultPendingTTL
	}
	if opts.HistoryPageSize <= 0 {
		opts.HistoryPageSize = defaultHistoryPageSize
	}
	if opts.InvoiceTTL <= 0 {
		opts.InvoiceTTL = defaultInvoiceTTL
	}
	return &Service{
		clients: clients,
		pending: pending,
		opts:    opts,
	}
}
