package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentityCloneIsIndependent(t *testing.T) {
	original := Identity{
		KeyID:            "key-1",
		PrivateKeyPEM:    []byte("secret key material"),
		WalletAddressURL: "https://wallet.example/alice",
	}
	clone := original.Clone()

	original.Wipe()

	assert.Nil(t, original.PrivateKeyPEM)
	assert.Equal(t, []byte("secret key material"), clone.PrivateKeyPEM)
	assert.True(t, clone.Valid())
	assert.False(t, original.Valid())
}

func TestIdentityWipeZeroesBuffer(t *testing.T) {
	key := []byte("secret key material")
	identity := Identity{KeyID: "key-1", PrivateKeyPEM: key, WalletAddressURL: "https://wallet.example/alice"}

	identity.Wipe()

	// The original backing array is zeroed, not just dropped.
	for _, b := range key {
		assert.Zero(t, b)
	}
}

func TestIdentityValid(t *testing.T) {
	assert.False(t, Identity{}.Valid())
	assert.False(t, Identity{KeyID: "k", WalletAddressURL: "u"}.Valid())
	assert.True(t, Identity{KeyID: "k", PrivateKeyPEM: []byte("p"), WalletAddressURL: "u"}.Valid())
}

func TestPendingAuthorizationExpired(t *testing.T) {
	now := time.Now()
	auth := &PendingAuthorization{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, auth.Expired(now))
	assert.True(t, auth.Expired(now.Add(2*time.Minute)))
}
