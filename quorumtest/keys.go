package quorumtest

import (
	"crypto/rand"

	"github.com/iov-one/quorum"
	"golang.org/x/crypto/ed25519"
)

// NewKey returns a freshly generated ed25519 private key.
func NewKey() ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return priv
}

// KeyCondition returns the signature condition of the given key.
func KeyCondition(key ed25519.PrivateKey) quorum.Condition {
	pub := key.Public().(ed25519.PublicKey)
	return quorum.NewCondition("sigs", "ed25519", pub)
}

// NewCondition returns the signature condition of a new random key.
func NewCondition() quorum.Condition {
	return KeyCondition(NewKey())
}
