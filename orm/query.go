package orm

import (
	"reflect"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// ConsumeIterator will read all remaining data into an
// array and release the iterator
func ConsumeIterator(it barter.Iterator) ([]barter.Model, error) {
	defer it.Release()

	var res []barter.Model
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, barter.Pair(key, value))
	}
}

// queryPrefix returns all models whose key starts with given prefix.
func queryPrefix(db barter.ReadOnlyKVStore, prefix []byte) ([]barter.Model, error) {
	it, err := db.Iterator(prefix, prefixRangeEnd(prefix))
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(it)
}

// prefixRangeEnd returns the smallest key that is greater than all keys
// starting with given prefix, or nil when no such key exists.
func prefixRangeEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// newInstance returns a new zero value instance of the same type as the
// given model. Model must be a pointer.
func newInstance(m Model) Model {
	t := reflect.TypeOf(m)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface().(Model)
}
