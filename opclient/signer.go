package opclient

import "net/http"

// RequestSigner attaches HTTP message signatures to outbound requests.
// Signing itself is outside this module; deployments plug in an
// implementation built on the identity's key material.
type RequestSigner interface {
	Sign(req *http.Request) error
}

// noopSigner leaves requests unsigned. Test wallets accept unsigned
// requests in development mode.
type noopSigner struct{}

func (noopSigner) Sign(*http.Request) error { return nil }

// NoopSigner returns a signer that does nothing.
//
//nolint:ireturn
func NoopSigner() RequestSigner { return noopSigner{} }
