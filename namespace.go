package barter

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"regexp"

	"github.com/iov-one/barter/errors"
)

const (
	// MaxSeeds is the maximum number of seeds accepted by a derivation.
	MaxSeeds = 16
	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32

	derivedAddressMarker = "DerivedAddress"
)

var isNamespaceName = regexp.MustCompile(`^[a-z][a-z0-9_\-]{2,31}$`).MatchString

// Namespace is the identity of a deployment. All addresses derived by the
// extensions of one application are bound to its namespace, so two
// deployments never share a derived address.
//
// A namespace is created once during the application startup and passed to
// every extension that derives addresses.
type Namespace struct {
	name    string
	version uint32
	id      []byte
}

// NewNamespace returns a namespace for the given deployment name and version.
func NewNamespace(name string, version uint32) (Namespace, error) {
	if !isNamespaceName(name) {
		return Namespace{}, errors.Wrapf(errors.ErrInput, "namespace name %q", name)
	}
	h := sha256.Sum256([]byte(fmt.Sprintf("barter-namespace/%s/%d", name, version)))
	return Namespace{name: name, version: version, id: h[:]}, nil
}

// MustNewNamespace is like NewNamespace but panics on error.
func MustNewNamespace(name string, version uint32) Namespace {
	ns, err := NewNamespace(name, version)
	if err != nil {
		panic(err)
	}
	return ns
}

// ID returns the namespace identifier mixed into every derived address.
func (ns Namespace) ID() []byte {
	return ns.id
}

func (ns Namespace) String() string {
	return fmt.Sprintf("%s/v%d", ns.name, ns.version)
}

// Derive returns the derived address for given seeds together with the bump
// that was used to push the digest off the ed25519 curve. Bumps are tried
// from 255 downwards and the first one producing an off curve digest is
// used, so that the result is deterministic.
//
// Store the bump alongside the record to reconstruct the address with
// CreateDerived without searching again.
func (ns Namespace) Derive(seeds ...[]byte) (Address, uint8, error) {
	if err := ns.validate(seeds); err != nil {
		return nil, 0, err
	}
	for bump := 255; bump >= 0; bump-- {
		addr := ns.digest(seeds, uint8(bump))
		if !isOnCurve(addr) {
			return addr, uint8(bump), nil
		}
	}
	return nil, 0, errors.Wrap(errors.ErrInput, "no bump produces a derived address")
}

// MustDerive is like Derive but panics on error. Use only with seeds
// validated upfront.
func (ns Namespace) MustDerive(seeds ...[]byte) (Address, uint8) {
	addr, bump, err := ns.Derive(seeds...)
	if err != nil {
		panic(err)
	}
	return addr, bump
}

// CreateDerived returns the address for given seeds and bump. It fails if the
// resulting digest is a valid curve point, because such an address might have
// a private key.
func (ns Namespace) CreateDerived(bump uint8, seeds ...[]byte) (Address, error) {
	if err := ns.validate(seeds); err != nil {
		return nil, err
	}
	addr := ns.digest(seeds, bump)
	if isOnCurve(addr) {
		return nil, errors.Wrapf(errors.ErrInput, "bump %d produces an on curve address", bump)
	}
	return addr, nil
}

func (ns Namespace) validate(seeds [][]byte) error {
	if len(ns.id) == 0 {
		return errors.Wrap(errors.ErrHuman, "namespace not initialized")
	}
	if len(seeds) > MaxSeeds {
		return errors.Wrapf(errors.ErrInput, "too many seeds: %d", len(seeds))
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return errors.Wrapf(errors.ErrInput, "seed %d too long: %d", i, len(s))
		}
	}
	return nil
}

func (ns Namespace) digest(seeds [][]byte, bump uint8) Address {
	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write(ns.id)
	h.Write([]byte(derivedAddressMarker))
	return h.Sum(nil)
}

// SeedUint64 encodes a numeric seed, little endian.
func SeedUint64(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}
