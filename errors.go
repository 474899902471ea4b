package peerpay

import (
	serrors "github.com/peerpay-dev/peerpay/errors"
)

// Grant lifecycle errors (re-exported from the errors package).
var (
	ErrUnexpectedGrantState = serrors.ErrUnexpectedGrantState
	ErrGrantStillPending    = serrors.ErrGrantStillPending
	ErrSessionExpired       = serrors.ErrSessionExpired
	ErrInteractionMismatch  = serrors.ErrInteractionMismatch
)
