package app

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// ResultSet holds a list of keys or a list of values returned by a query.
// Query responses carry two result sets of the same length, one in the key
// field and one in the value field.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

// Marshal serializes the result set.
func (r *ResultSet) Marshal() ([]byte, error) {
	bz, err := cdc.MarshalBinaryBare(r)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal result set: %s", err)
	}
	return bz, nil
}

// Unmarshal loads a serialized result set.
func (r *ResultSet) Unmarshal(bz []byte) error {
	// an empty set is serialized as no bytes at all
	if len(bz) == 0 {
		r.Results = nil
		return nil
	}
	if err := cdc.UnmarshalBinaryBare(bz, r); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal result set: %s", err)
	}
	return nil
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []barter.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []barter.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]barter.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrap(errors.ErrState, "mismatched result set size")
	}
	mods := make([]barter.Model, len(kref))
	for i := range mods {
		mods[i] = barter.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}
