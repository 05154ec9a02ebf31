package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/barter/errors"
)

// DefaultFreeListSize is the number of btree nodes kept for reuse.
const DefaultFreeListSize = btree.DefaultFreeListSize

// btreeDegree is the degree of every cache btree.
const btreeDegree = 2

// BTreeCacheable adds a btree cache-wrap to any KVStore.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a cache that is written to the store with Write.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns a store that lives only in memory. Use it in tests and
// to dry run operations, ie. genesis validation.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// BTreeCacheWrap keeps all changes in a btree on top of a read only view
// of the parent store. Changes are recorded in a batch as well, which is
// what Write applies to the parent.
//
// Every unit of work (a transaction, a handler executed with
// barter.Atomic) runs in such a cache, so a failure leaves the parent
// untouched.
type BTreeCacheWrap struct {
	bt     *btree.BTree
	free   *btree.FreeList
	parent ReadOnlyKVStore
	batch  Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap builds a cache over parent. All writes go to the batch.
// free may be nil, pass the list of another cache to share its nodes.
func NewBTreeCacheWrap(parent ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:     btree.NewWithFreeList(btreeDegree, free),
		free:   free,
		parent: parent,
		batch:  batch,
	}
}

// CacheWrap stacks another cache on top of this one.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a batch writing into this cache.
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write applies all changes to the parent and releases the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all changes. The cache must not be used afterwards.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
	if d, ok := b.batch.(interface{ Discard() }); ok {
		d.Discard()
	}
}

// Set implements KVStore.
func (b BTreeCacheWrap) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrDatabase, "nil key")
	}
	b.bt.ReplaceOrInsert(&cached{key: key, value: value})
	return b.batch.Set(key, value)
}

// Delete implements KVStore. The key is hidden from the parent until the
// cache is written.
func (b BTreeCacheWrap) Delete(key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrDatabase, "nil key")
	}
	b.bt.ReplaceOrInsert(&cached{key: key, deleted: true})
	return b.batch.Delete(key)
}

// Get implements ReadOnlyKVStore.
func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	c, ok := b.lookup(key)
	if !ok {
		return b.parent.Get(key)
	}
	if c.deleted {
		return nil, nil
	}
	return c.value, nil
}

// Has implements ReadOnlyKVStore.
func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	c, ok := b.lookup(key)
	if !ok {
		return b.parent.Has(key)
	}
	return !c.deleted, nil
}

func (b BTreeCacheWrap) lookup(key []byte) (*cached, bool) {
	item := b.bt.Get(&cached{key: key})
	if item == nil {
		return nil, false
	}
	return item.(*cached), true
}

// Iterator returns keys of [start, end) in ascending order, merging the
// cache with the parent.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(b.snapshot(start, end, true), parent, true)
}

// ReverseIterator returns keys of [start, end) in descending order, merging
// the cache with the parent.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.parent.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(b.snapshot(start, end, false), parent, false)
}

// snapshot copies the cached items of [start, end) in iteration order. A
// nil bound is open.
func (b BTreeCacheWrap) snapshot(start, end []byte, ascending bool) []*cached {
	var res []*cached
	inRange := func(key []byte) bool {
		return (start == nil || bytes.Compare(key, start) >= 0) &&
			(end == nil || bytes.Compare(key, end) < 0)
	}
	if ascending {
		collect := func(i btree.Item) bool {
			c := i.(*cached)
			if end != nil && bytes.Compare(c.key, end) >= 0 {
				return false
			}
			res = append(res, c)
			return true
		}
		if start == nil {
			b.bt.Ascend(collect)
		} else {
			b.bt.AscendGreaterOrEqual(&cached{key: start}, collect)
		}
		return res
	}

	collect := func(i btree.Item) bool {
		c := i.(*cached)
		if start != nil && bytes.Compare(c.key, start) < 0 {
			return false
		}
		if inRange(c.key) {
			res = append(res, c)
		}
		return true
	}
	if end == nil {
		b.bt.Descend(collect)
	} else {
		// includes end itself, filtered out by inRange
		b.bt.DescendLessOrEqual(&cached{key: end}, collect)
	}
	return res
}

// cached is a btree item recording either a new value or a deletion.
type cached struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = (*cached)(nil)

// Less orders items by key.
func (c *cached) Less(than btree.Item) bool {
	return bytes.Compare(c.key, than.(*cached).key) < 0
}
