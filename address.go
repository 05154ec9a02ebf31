package barter

import (
	"bytes"
	"encoding/json"

	"filippo.io/edwards25519"
	"github.com/iov-one/barter/errors"
	"github.com/mr-tron/base58"
)

// AddressLength is the length of all addresses. A signer address is an
// ed25519 public key, a derived address is a sha256 digest that does not
// represent a point on the curve.
const AddressLength = 32

// Address identifies a holder of assets, the type of an asset or any record
// owner.
//
// An address is either the public key of a signer, or it was derived from a
// namespace and a list of seeds (see Namespace.Derive). Derived addresses do
// not have a private key and therefore can be authorized only by the code
// owning the namespace.
type Address []byte

// Equals checks if two addresses are the same.
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// Clone returns an independent copy of the address.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	return append(Address(nil), a...)
}

// String returns the base58 representation.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return base58.Encode(a)
}

// Validate returns an error if the address is not the valid size.
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "address length %d", len(a))
	}
	return nil
}

// IsDerived returns true if this address is not a valid ed25519 point. Such
// an address cannot sign anything.
func (a Address) IsDerived() bool {
	return len(a) == AddressLength && !isOnCurve(a)
}

// MarshalJSON provides a base58 representation for JSON, to override the
// standard base64 []byte encoding.
func (a Address) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(base58.Encode(a))
}

// UnmarshalJSON parses the base58 representation of an address.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	// No value zero the address.
	if len(enc) == 0 {
		*a = nil
		return nil
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress decodes the base58 representation of an address.
func ParseAddress(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "base58: %s", err)
	}
	addr := Address(raw)
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}

// MustParseAddress is like ParseAddress but panics on error. Use it only
// with constant input.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func isOnCurve(b []byte) bool {
	if len(b) != AddressLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
