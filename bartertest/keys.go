package bartertest

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/crypto"
)

// NewKey returns a random private key.
func NewKey() crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewSigner returns the address of a random signer.
func NewSigner() barter.Address {
	return NewKey().PublicKey().Address()
}

// Namespace is the namespace used by all tests.
var Namespace = barter.MustNewNamespace("testnet", 1)

// NewAsset returns an asset address derived from given name.
func NewAsset(name string) barter.Address {
	addr, _ := Namespace.MustDerive([]byte("asset"), []byte(name))
	return addr
}
