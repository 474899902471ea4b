package domain

// ResourceType enumerates the Open Payments resource types a grant can
// cover.
type ResourceType string

const (
	ResourceTypeIncomingPayment ResourceType = "incoming-payment"
	ResourceTypeOutgoingPayment ResourceType = "outgoing-payment"
	ResourceTypeQuote           ResourceType = "quote"
)

// Grant actions as defined by the Open Payments authorization model.
const (
	ActionCreate   = "create"
	ActionRead     = "read"
	ActionReadAll  = "read-all"
	ActionList     = "list"
	ActionListAll  = "list-all"
	ActionComplete = "complete"
)

// AccessRequest describes the capability being requested from an
// authorization server. Immutable once sent.
type AccessRequest struct {
	Type    ResourceType
	Actions []string
	// Identifier optionally scopes the access to one wallet address
	// (required for outgoing-payment access).
	Identifier string
	// QuoteID optionally limits an outgoing-payment grant to a single quote.
	QuoteID string
}

// PendingGrant is a grant that requires out-of-band user consent before it
// yields a usable access token.
type PendingGrant struct {
	// RedirectURL is where the user must be sent to give consent.
	RedirectURL string
	// FinishNonce is the authorization server's nonce from interact.finish,
	// one input of the callback hash verification.
	FinishNonce string
	// ContinueToken and ContinueURI authorize exactly one continuation call
	// once the interaction reference arrives.
	ContinueToken string
	ContinueURI   string
	// Wait is the minimum number of seconds to wait before continuing.
	Wait int
}

// FinalizedGrant is a grant whose access token is immediately usable.
type FinalizedGrant struct {
	AccessToken string
	ManageURL   string
}
