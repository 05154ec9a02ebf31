package orm

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

const indexPrefix = "_i."

// Indexer calculates the secondary index key for a given model. Returning
// nil means the model is not indexed.
type Indexer func(Model) ([]byte, error)

// Index is a secondary index on the models of one bucket. All keys indexed
// under one value are kept as a set, serialized and stored under a single
// database key. Use it only for small collections.
type Index struct {
	name   string
	prefix []byte
	unique bool
	index  Indexer
	bucket *modelBucket
}

var _ barter.QueryHandler = (*Index)(nil)

// Name returns the name of this index.
func (idx *Index) Name() string {
	return idx.name
}

func (idx *Index) dbKey(value []byte) []byte {
	out := make([]byte, len(idx.prefix)+len(value))
	copy(out, idx.prefix)
	copy(out[len(idx.prefix):], value)
	return out
}

// Keys returns primary keys of all models indexed under given value.
func (idx *Index) Keys(db barter.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	refs, err := idx.load(db, value)
	if err != nil {
		return nil, err
	}
	return refs.Refs, nil
}

func (idx *Index) load(db barter.ReadOnlyKVStore, value []byte) (*MultiRef, error) {
	bz, err := db.Get(idx.dbKey(value))
	if err != nil {
		return nil, errors.Wrap(err, "index")
	}
	var refs MultiRef
	if bz == nil {
		return &refs, nil
	}
	if err := Unmarshal(bz, &refs); err != nil {
		return nil, err
	}
	return &refs, nil
}

func (idx *Index) save(db barter.KVStore, value []byte, refs *MultiRef) error {
	if len(refs.Refs) == 0 {
		return db.Delete(idx.dbKey(value))
	}
	bz, err := Marshal(refs)
	if err != nil {
		return err
	}
	return db.Set(idx.dbKey(value), bz)
}

// update moves the primary key from the index value of prev to the index
// value of next. Either can be nil for insert and delete.
func (idx *Index) update(db barter.KVStore, key []byte, prev, next Model) error {
	var prevVal, nextVal []byte
	var err error
	if prev != nil {
		if prevVal, err = idx.index(prev); err != nil {
			return errors.Wrapf(err, "index %s", idx.name)
		}
	}
	if next != nil {
		if nextVal, err = idx.index(next); err != nil {
			return errors.Wrapf(err, "index %s", idx.name)
		}
	}
	if prev != nil && next != nil && string(prevVal) == string(nextVal) {
		return nil
	}

	if prevVal != nil {
		refs, err := idx.load(db, prevVal)
		if err != nil {
			return err
		}
		if err := refs.Remove(key); err != nil {
			return errors.Wrapf(err, "index %s", idx.name)
		}
		if err := idx.save(db, prevVal, refs); err != nil {
			return err
		}
	}
	if nextVal != nil {
		refs, err := idx.load(db, nextVal)
		if err != nil {
			return err
		}
		if idx.unique && len(refs.Refs) > 0 {
			return errors.Wrapf(errors.ErrDuplicate, "unique index %s", idx.name)
		}
		if err := refs.Add(key); err != nil {
			return errors.Wrapf(err, "index %s", idx.name)
		}
		if err := idx.save(db, nextVal, refs); err != nil {
			return err
		}
	}
	return nil
}

// Query returns all models indexed under the value given as data. Prefix
// queries are not supported.
func (idx *Index) Query(db barter.ReadOnlyKVStore, mod string, data []byte) ([]barter.Model, error) {
	if mod != barter.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported index query mod: %q", mod)
	}
	keys, err := idx.Keys(db, data)
	if err != nil {
		return nil, err
	}
	res := make([]barter.Model, 0, len(keys))
	for _, k := range keys {
		bz, err := db.Get(idx.bucket.dbKey(k))
		if err != nil {
			return nil, err
		}
		if bz == nil {
			return nil, errors.Wrapf(errors.ErrState, "index %s references missing key", idx.name)
		}
		res = append(res, barter.Pair(k, bz))
	}
	return res, nil
}
