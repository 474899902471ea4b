package peerpay

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/peerpay-dev/peerpay/domain"
)

// InteractionHash computes the GNAP interaction finish hash: the
// base64url-encoded SHA-256 of the client nonce, the authorization
// server's finish nonce, the interaction reference, and the grant
// endpoint URL, joined by newlines.
func InteractionHash(clientNonce, finishNonce, interactRef, grantEndpoint string) string {
	input := strings.Join([]string{clientNonce, finishNonce, interactRef, grantEndpoint}, "\n")
	sum := sha256.Sum256([]byte(input))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyInteraction checks a callback's hash against the nonces stored in
// the pending authorization. A mismatch means the callback is forged or
// replayed and the flow must be abandoned.
func VerifyInteraction(auth *domain.PendingAuthorization, interactRef, hash string) error {
	expected := InteractionHash(auth.ClientNonce, auth.FinishNonce, interactRef, auth.GrantEndpoint)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(hash)) != 1 {
		return ErrInteractionMismatch
	}
	return nil
}
