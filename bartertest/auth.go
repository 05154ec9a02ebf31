/*
Package bartertest provides mocks and helpers for testing extensions.
*/
package bartertest

import (
	"context"
	"fmt"

	"github.com/iov-one/barter"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced addresses.
// You can use either Signer or Signers (or both) attributes to reference
// addresses. Signer, if set, is always the main signer.
type Auth struct {
	// Signer represents an authentication of a single signer.
	Signer barter.Address

	// Signers represents an authentication of multiple signers.
	Signers []barter.Address
}

func (a *Auth) GetSigners(barter.Context) []barter.Address {
	if a.Signer != nil {
		return append([]barter.Address{a.Signer}, a.Signers...)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx barter.Context, addr barter.Address) bool {
	for _, s := range a.GetSigners(ctx) {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve signers.
type CtxAuth struct {
	// Key used to set and retrieve signers from the context. For
	// convenience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetSigners(ctx barter.Context, signers ...barter.Address) barter.Context {
	return context.WithValue(ctx, a.Key, signers)
}

func (a *CtxAuth) GetSigners(ctx barter.Context) []barter.Address {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	signers, ok := val.([]barter.Address)
	if !ok {
		panic(fmt.Sprintf("instead of []barter.Address got %T", val))
	}
	return signers
}

func (a *CtxAuth) HasAddress(ctx barter.Context, addr barter.Address) bool {
	for _, s := range a.GetSigners(ctx) {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}
