package domain

import "time"

// PendingAuthorization is the server-held state of one in-flight interactive
// outgoing-payment grant. It is created when the pending grant is obtained,
// survives the redirect round-trip to the authorization server, and is
// consumed destructively exactly once when the callback arrives.
//
// The struct is keyed by SessionID, a value generated at start-payment time
// and embedded in the interaction finish URI, so both the start and the
// callback step possess it without any cookie binding.
type PendingAuthorization struct {
	SessionID     string    `bson:"session_id" json:"session_id"`
	ContinueToken string    `bson:"continue_token" json:"continue_token"`
	ContinueURI   string    `bson:"continue_uri" json:"continue_uri"`
	// ClientNonce is the fresh nonce this server sent in interact.finish.
	ClientNonce string `bson:"client_nonce" json:"client_nonce"`
	// FinishNonce is the nonce the authorization server returned for the
	// interaction. Both nonces feed the callback hash verification.
	FinishNonce string `bson:"finish_nonce" json:"finish_nonce"`
	// GrantEndpoint is the authorization server grant endpoint the request
	// was sent to, the final input of the hash verification.
	GrantEndpoint string    `bson:"grant_endpoint" json:"grant_endpoint"`
	QuoteID       string    `bson:"quote_id" json:"quote_id"`
	Owner         Identity  `bson:"owner" json:"owner"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt     time.Time `bson:"expires_at" json:"expires_at"`
}

// Expired reports whether the authorization is past its TTL at the given
// instant. Expired records must be treated as absent even when still
// physically present in a store.
func (p *PendingAuthorization) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
