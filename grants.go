package peerpay

import (
	"fmt"

	"github.com/peerpay-dev/peerpay/domain"
	"github.com/peerpay-dev/peerpay/opclient"
)

// GrantOutcome is what the caller expects a grant response to be.
type GrantOutcome string

const (
	GrantOutcomePending   GrantOutcome = "pending"
	GrantOutcomeFinalized GrantOutcome = "finalized"
)

// hasContinuation reports whether the response carries a usable
// continuation. Continuation responses for an unfinished interaction carry
// only this, no interact object and no token.
func hasContinuation(resp *opclient.GrantResponse) bool {
	return resp.Continue != nil && resp.Continue.AccessToken.Value != "" && resp.Continue.URI != ""
}

// isPendingShaped reports whether the response carries an interaction
// redirect plus a usable continuation.
func isPendingShaped(resp *opclient.GrantResponse) bool {
	return resp.Interact != nil && resp.Interact.Redirect != "" && hasContinuation(resp)
}

// isFinalizedShaped reports whether the response carries an access token.
func isFinalizedShaped(resp *opclient.GrantResponse) bool {
	return resp.AccessToken != nil && resp.AccessToken.Value != ""
}

// FinalizedFromResponse classifies a grant response as finalized. A
// pending-shaped response (the server demanded interaction when none was
// requested or finished) is a protocol violation, never coerced.
func FinalizedFromResponse(resp *opclient.GrantResponse) (*domain.FinalizedGrant, error) {
	if isPendingShaped(resp) {
		return nil, fmt.Errorf("%w: server requires interaction but a finalized grant was expected", ErrUnexpectedGrantState)
	}
	if !isFinalizedShaped(resp) {
		return nil, fmt.Errorf("%w: grant response carries no access token", ErrUnexpectedGrantState)
	}
	return &domain.FinalizedGrant{
		AccessToken: resp.AccessToken.Value,
		ManageURL:   resp.AccessToken.Manage,
	}, nil
}

// PendingFromResponse classifies a grant response as pending interaction.
func PendingFromResponse(resp *opclient.GrantResponse) (*domain.PendingGrant, error) {
	if isFinalizedShaped(resp) {
		return nil, fmt.Errorf("%w: server issued a token but an interactive grant was expected", ErrUnexpectedGrantState)
	}
	if !isPendingShaped(resp) {
		return nil, fmt.Errorf("%w: grant response carries neither a token nor an interaction", ErrUnexpectedGrantState)
	}
	return &domain.PendingGrant{
		RedirectURL:   resp.Interact.Redirect,
		FinishNonce:   resp.Interact.Finish,
		ContinueToken: resp.Continue.AccessToken.Value,
		ContinueURI:   resp.Continue.URI,
		Wait:          resp.Continue.Wait,
	}, nil
}

// Classify applies the expected outcome to a grant response. It is pure:
// no network, no state. It must run after every grant request or
// continuation, never be assumed.
func Classify(resp *opclient.GrantResponse, expected GrantOutcome) (pending *domain.PendingGrant, finalized *domain.FinalizedGrant, err error) {
	switch expected {
	case GrantOutcomePending:
		pending, err = PendingFromResponse(resp)
	case GrantOutcomeFinalized:
		finalized, err = FinalizedFromResponse(resp)
	default:
		err = fmt.Errorf("unknown grant outcome %q", expected)
	}
	return pending, finalized, err
}

// accessOnlyGrant builds a non-interactive grant request from an access
// description.
func accessOnlyGrant(access domain.AccessRequest) *opclient.GrantRequest {
	return &opclient.GrantRequest{
		AccessToken: opclient.AccessTokenRequest{
			Access: []opclient.AccessItem{accessItem(access)},
		},
	}
}

// interactiveGrant builds a redirect-interactive grant request. The nonce
// must be fresh per request; it is the anti-replay binding between this
// request and its eventual callback.
func interactiveGrant(access domain.AccessRequest, finishURI, nonce string) *opclient.GrantRequest {
	return &opclient.GrantRequest{
		AccessToken: opclient.AccessTokenRequest{
			Access: []opclient.AccessItem{accessItem(access)},
		},
		Interact: &opclient.InteractRequest{
			Start: []string{"redirect"},
			Finish: &opclient.InteractFinish{
				Method: "redirect",
				URI:    finishURI,
				Nonce:  nonce,
			},
		},
	}
}

func accessItem(access domain.AccessRequest) opclient.AccessItem {
	item := opclient.AccessItem{
		Type:       string(access.Type),
		Actions:    access.Actions,
		Identifier: access.Identifier,
	}
	if access.QuoteID != "" {
		item.Limits = &opclient.AccessLimits{QuoteID: access.QuoteID}
	}
	return item
}
