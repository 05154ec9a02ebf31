package orm

import (
	"github.com/iov-one/barter/errors"
	amino "github.com/tendermint/go-amino"
)

// cdc encodes all stored models. Models are concrete structs and do not need
// to be registered.
var cdc = amino.NewCodec()

// Marshal serializes a model into its stored representation.
func Marshal(m interface{}) ([]byte, error) {
	bz, err := cdc.MarshalBinaryBare(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal %T: %s", m, err)
	}
	return bz, nil
}

// Unmarshal loads the stored representation into dest, which must be a
// pointer.
func Unmarshal(bz []byte, dest interface{}) error {
	// a model with all fields zero is serialized as no bytes
	if len(bz) == 0 {
		return nil
	}
	if err := cdc.UnmarshalBinaryBare(bz, dest); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", dest, err)
	}
	return nil
}
