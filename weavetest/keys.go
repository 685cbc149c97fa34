package weavetest

import (
	"crypto/rand"

	"github.com/iov-one/crowdfund"
	"golang.org/x/crypto/ed25519"
)

// NewKey returns a fresh ed25519 private key.
func NewKey() ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return priv
}

// KeyAddr returns the address of the given key.
func KeyAddr(key ed25519.PrivateKey) crowdfund.Address {
	return crowdfund.KeyAddress(key.Public().(ed25519.PublicKey))
}

// NewAddress returns the address of a fresh key.
func NewAddress() crowdfund.Address {
	return KeyAddr(NewKey())
}
