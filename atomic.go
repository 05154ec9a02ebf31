package barter

import (
	"github.com/iov-one/barter/errors"
)

// Atomic runs fn as one unit of work. All writes done by fn are visible to
// the caller only if fn returns no error. On error the store is left
// untouched, as if fn was never called.
//
// Stores that cannot be cache wrapped are passed to fn directly and the caller
// is responsible for discarding the outer state on failure (the application
// does so for every transaction).
func Atomic(db KVStore, fn func(db KVStore) error) error {
	cstore, ok := db.(CacheableKVStore)
	if !ok {
		return fn(db)
	}

	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write unit of work")
	}
	return nil
}
