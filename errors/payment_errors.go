package errors

import (
	"errors"
	"fmt"
)

// Grant lifecycle errors. All of these are terminal: a consumed or forged
// one-time flow must never be retried automatically.
var (
	// ErrUnexpectedGrantState means a grant response did not have the shape
	// the caller asked for (pending where finalized was expected, or the
	// other way around). This is a protocol violation, never coerced.
	ErrUnexpectedGrantState = errors.New("unexpected grant state")

	// ErrGrantStillPending means a grant continuation came back without an
	// access token, i.e. the user has not finished (or has declined) the
	// interaction.
	ErrGrantStillPending = errors.New("grant is still pending after continuation")

	// ErrSessionExpired means no pending authorization matched the callback:
	// the payment session expired, was cancelled, or was already completed.
	ErrSessionExpired = errors.New("payment session expired or already completed")

	// ErrInteractionMismatch means the callback hash did not verify against
	// the stored nonces. The callback is forged or replayed and the consumed
	// record is discarded.
	ErrInteractionMismatch = errors.New("interaction reference verification failed")
)

// UpstreamError carries a failure reported by a wallet's authorization or
// resource server. Status and description are preserved end to end so the
// caller sees the upstream diagnosis, not a generic 500.
type UpstreamError struct {
	Status      int    `json:"status"`
	Description string `json:"description"`
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Description)
}

// NewUpstreamError builds an UpstreamError, defaulting to 502 when the
// upstream provided no status.
func NewUpstreamError(status int, description string) *UpstreamError {
	if status == 0 {
		status = 502
	}
	return &UpstreamError{Status: status, Description: description}
}

// History sides for PartialHistoryError.
const (
	HistorySideIncoming = "incoming"
	HistorySideOutgoing = "outgoing"
)

// PartialHistoryError records that one side of the history listing failed
// while the other succeeded. It is surfaced alongside the partial data so
// the presentation layer can warn instead of showing nothing.
type PartialHistoryError struct {
	Side string
	Err  error
}

func (e *PartialHistoryError) Error() string {
	return fmt.Sprintf("listing %s payments failed: %v", e.Side, e.Err)
}

func (e *PartialHistoryError) Unwrap() error {
	return e.Err
}
