package domain

// Identity is the per-request signing identity of one wallet owner. It is
// supplied by the presentation layer on every call and is never persisted
// beyond the lifetime of a single pending authorization.
type Identity struct {
	KeyID            string
	PrivateKeyPEM    []byte
	WalletAddressURL string
}

// Clone returns a copy of the identity with its own key buffer, so that
// wiping one copy does not clobber the other.
func (i Identity) Clone() Identity {
	keyCopy := make([]byte, len(i.PrivateKeyPEM))
	copy(keyCopy, i.PrivateKeyPEM)

	return Identity{
		KeyID:            i.KeyID,
		PrivateKeyPEM:    keyCopy,
		WalletAddressURL: i.WalletAddressURL,
	}
}

// Wipe zeroes the private key material. Callers must not use the identity
// afterwards. Key material must never be logged; see the logging rules in
// the api package.
func (i *Identity) Wipe() {
	for idx := range i.PrivateKeyPEM {
		i.PrivateKeyPEM[idx] = 0
	}
	i.PrivateKeyPEM = nil
}

// Valid reports whether all identity fields required for signed operations
// are present.
func (i Identity) Valid() bool {
	return i.KeyID != "" && len(i.PrivateKeyPEM) > 0 && i.WalletAddressURL != ""
}
