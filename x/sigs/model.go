package sigs

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/crypto"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// maxSequenceValue is limited by the client. The greatest supported
// nonce value at client side is
//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
const maxSequenceValue = (1 << 53) - 1

// UserData stores the sequence of a signer. Sequence is the value that the
// next signature must carry.
type UserData struct {
	PubKey   crypto.PublicKey
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

// Validate implements orm.Model.
func (u *UserData) Validate() error {
	if err := u.PubKey.Validate(); err != nil {
		return errors.Wrap(err, "pubkey")
	}
	if u.Sequence < 0 || u.Sequence > maxSequenceValue {
		return errors.Wrap(errors.ErrSequence, "out of range")
	}
	return nil
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(errors.ErrSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	next := u.Sequence + 1
	if next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// StdSignature authorizes a transaction by a single signer.
type StdSignature struct {
	PubKey    crypto.PublicKey
	Signature []byte
	Sequence  int64
}

// Validate ensures the signature is complete.
func (s *StdSignature) Validate() error {
	if s == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	if err := s.PubKey.Validate(); err != nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if len(s.Signature) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	if s.Sequence < 0 {
		return errors.Wrap(errors.ErrSequence, "negative")
	}
	return nil
}

// Bucket keeps the UserData of every signer, under the signer address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing signer sequences.
func NewBucket() Bucket {
	return Bucket{orm.NewModelBucket(BucketName, &UserData{})}
}

// GetOrCreate loads the user data, or returns a fresh one with sequence zero.
func (b Bucket) GetOrCreate(db barter.ReadOnlyKVStore, pub crypto.PublicKey) (*UserData, error) {
	var user UserData
	err := b.One(db, pub.Address(), &user)
	switch {
	case err == nil:
		return &user, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{PubKey: pub}, nil
	default:
		return nil, err
	}
}
