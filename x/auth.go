/*
Package x contains the shared code of all extensions. Each subpackage is an
extension that registers its own message handlers, queries and genesis
initializer.
*/
package x

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding x/sigs for all extensions.
type Authenticator interface {
	// GetSigners reveals all addresses that authorized the current
	// transaction. The first one is the main signer.
	GetSigners(barter.Context) []barter.Address
	// HasAddress checks if the address authorized the current transaction.
	HasAddress(barter.Context, barter.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetSigners combines all signers from all Authenticators, in order and
// without duplicates.
func (m MultiAuth) GetSigners(ctx barter.Context) []barter.Address {
	var res []barter.Address
	for _, impl := range m.impls {
		for _, a := range impl.GetSigners(ctx) {
			if !HasAddress(res, a) {
				res = append(res, a)
			}
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx barter.Context, addr barter.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first signer if any, otherwise nil
func MainSigner(ctx barter.Context, auth Authenticator) barter.Address {
	signers := auth.GetSigners(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// SignerOrMain returns the explicit address if it signed the transaction,
// or the main signer if no address is given.
func SignerOrMain(ctx barter.Context, auth Authenticator, explicit barter.Address) (barter.Address, error) {
	if len(explicit) == 0 {
		main := MainSigner(ctx, auth)
		if main == nil {
			return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
		}
		return main, nil
	}
	if !auth.HasAddress(ctx, explicit) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s did not sign", explicit)
	}
	return explicit, nil
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx barter.Context, auth Authenticator, required []barter.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasAddress returns true if set contains a.
func HasAddress(set []barter.Address, a barter.Address) bool {
	for _, s := range set {
		if s.Equals(a) {
			return true
		}
	}
	return false
}
