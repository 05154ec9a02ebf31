package sigs

import (
	"context"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/x"
)

type signersKey struct{}

// withSigners is unexported so that only verified signatures end up in the
// context.
func withSigners(ctx barter.Context, signers []barter.Address) barter.Context {
	return context.WithValue(ctx, signersKey{}, signers)
}

// Authenticate reads the signers verified by the Decorator.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetSigners returns the verified signers, possibly none.
func (Authenticate) GetSigners(ctx barter.Context) []barter.Address {
	signers, _ := ctx.Value(signersKey{}).([]barter.Address)
	return signers
}

// HasAddress returns true if addr signed the transaction.
func (a Authenticate) HasAddress(ctx barter.Context, addr barter.Address) bool {
	return x.HasAddress(a.GetSigners(ctx), addr)
}
