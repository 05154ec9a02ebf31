/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* It has a primary key, provided by the caller (usually an address).
* It may possess secondary indexes.
* Easy queries for one and iteration.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,16}$`).MatchString

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	Validate() error
}

// ModelBucket stores models of a single type under a prefixed subspace of
// the database.
type ModelBucket interface {
	barter.QueryHandler

	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db barter.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given key exists, ErrNotFound
	// otherwise.
	Has(db barter.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database, updating all indexes.
	Put(db barter.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db barter.KVStore, key []byte) error

	// ByIndex returns primary keys of all models indexed under given
	// value. Models are not loaded.
	ByIndex(db barter.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error)

	// Register registers this bucket and all its indexes in the query
	// router. Root path is "/" + name and indexes are available under
	// "/" + name + "/" + index name.
	Register(name string, r barter.QueryRouter)
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("index %q registered twice", name))
		}
		mb.indexes[name] = &Index{
			name:   name,
			prefix: []byte(indexPrefix + mb.name + "_" + name + ":"),
			unique: unique,
			index:  indexer,
			bucket: mb,
		}
	}
}

// NewModelBucket returns a ModelBucket instance. The model is used to
// create new instances when loading models for index maintenance.
func NewModelBucket(name string, model Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket: %s", name))
	}
	mb := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   model,
		indexes: make(map[string]*Index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   Model
	indexes map[string]*Index
}

var _ ModelBucket = (*modelBucket)(nil)

// dbKey is the full key we store in the db, including prefix.
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (mb *modelBucket) dbKey(key []byte) []byte {
	out := make([]byte, len(mb.prefix)+len(key))
	copy(out, mb.prefix)
	copy(out[len(mb.prefix):], key)
	return out
}

func (mb *modelBucket) One(db barter.ReadOnlyKVStore, key []byte, dest Model) error {
	bz, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot get")
	}
	if bz == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	return Unmarshal(bz, dest)
}

func (mb *modelBucket) Has(db barter.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot check existence")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", mb.model)
	}
	return nil
}

func (mb *modelBucket) Put(db barter.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	if len(mb.indexes) > 0 {
		prev, err := mb.loadPrev(db, key)
		if err != nil {
			return err
		}
		for _, idx := range mb.indexes {
			if err := idx.update(db, key, prev, m); err != nil {
				return err
			}
		}
	}
	bz, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := db.Set(mb.dbKey(key), bz); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db barter.KVStore, key []byte) error {
	prev, err := mb.loadPrev(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", mb.model)
	}
	for _, idx := range mb.indexes {
		if err := idx.update(db, key, prev, nil); err != nil {
			return err
		}
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete")
	}
	return nil
}

// loadPrev returns the currently stored model or nil.
func (mb *modelBucket) loadPrev(db barter.ReadOnlyKVStore, key []byte) (Model, error) {
	bz, err := db.Get(mb.dbKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "cannot get")
	}
	if bz == nil {
		return nil, nil
	}
	prev := newInstance(mb.model)
	if err := Unmarshal(bz, prev); err != nil {
		return nil, err
	}
	return prev, nil
}

func (mb *modelBucket) ByIndex(db barter.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "no index %q", indexName)
	}
	return idx.Keys(db, value)
}

func (mb *modelBucket) Register(name string, r barter.QueryRouter) {
	if name == "" {
		name = mb.name
	}
	root := "/" + name
	r.Register(root, mb)
	for iname, idx := range mb.indexes {
		r.Register(root+"/"+iname, idx)
	}
}

// Query handles queries from the QueryRouter. Returned keys are the primary
// keys, without the bucket prefix.
func (mb *modelBucket) Query(db barter.ReadOnlyKVStore, mod string, data []byte) ([]barter.Model, error) {
	switch mod {
	case barter.KeyQueryMod:
		bz, err := db.Get(mb.dbKey(data))
		if err != nil {
			return nil, err
		}
		// return nothing on miss
		if bz == nil {
			return nil, nil
		}
		return []barter.Model{barter.Pair(data, bz)}, nil
	case barter.PrefixQueryMod:
		models, err := queryPrefix(db, mb.dbKey(data))
		if err != nil {
			return nil, err
		}
		for i := range models {
			models[i].Key = models[i].Key[len(mb.prefix):]
		}
		return models, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}
