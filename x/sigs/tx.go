package sigs

import (
	"github.com/iov-one/barter"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	barter.Tx

	// GetSignBytes returns the canonical byte representation of the Tx,
	// excluding the signatures.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signatures on the Tx.
	GetSignatures() []*StdSignature
}
