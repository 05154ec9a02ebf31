package store

import (
	"bytes"

	"github.com/iov-one/barter/errors"
)

// mergeIterator joins the cached items of a btree with the results of the
// parent store, taking into consideration overwrites and deletes.
type mergeIterator struct {
	items     []*cached
	parent    Iterator
	ascending bool

	// next pending element of the parent, nil when exhausted
	pkey, pvalue []byte
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []*cached, parent Iterator, ascending bool) (*mergeIterator, error) {
	it := &mergeIterator{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
	if err := it.advanceParent(); err != nil {
		parent.Release()
		return nil, err
	}
	return it, nil
}

func (it *mergeIterator) advanceParent() error {
	if it.parent == nil {
		return nil
	}
	k, v, err := it.parent.Next()
	switch {
	case err == nil:
		it.pkey, it.pvalue = k, v
	case errors.ErrIteratorDone.Is(err):
		it.pkey, it.pvalue = nil, nil
		it.parent.Release()
		it.parent = nil
	default:
		return err
	}
	return nil
}

// cmp compares the head of the cache with the head of the parent, in the
// order of iteration. Negative means the cache goes first.
func (it *mergeIterator) cmp() int {
	c := bytes.Compare(it.items[0].key, it.pkey)
	if !it.ascending {
		c = -c
	}
	return c
}

// Next implements Iterator.
func (it *mergeIterator) Next() (key, value []byte, err error) {
	for {
		hasCache := len(it.items) > 0
		hasParent := it.parent != nil

		switch {
		case !hasCache && !hasParent:
			return nil, nil, errors.ErrIteratorDone
		case !hasCache || (hasParent && it.cmp() > 0):
			key, value = it.pkey, it.pvalue
			if err := it.advanceParent(); err != nil {
				return nil, nil, err
			}
			return key, value, nil
		}

		head := it.items[0]
		it.items = it.items[1:]
		if hasParent && bytes.Equal(head.key, it.pkey) {
			// cache overrides the parent value
			if err := it.advanceParent(); err != nil {
				return nil, nil, err
			}
		}
		if !head.deleted {
			return head.key, head.value, nil
		}
		// deleted item, keep looking
	}
}

// Release implements Iterator.
func (it *mergeIterator) Release() {
	if it.parent != nil {
		it.parent.Release()
		it.parent = nil
	}
	it.items = nil
}

// SliceIterator wraps an Iterator over a slice of models
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{
		data: data,
	}
}

// Next implements Iterator.
func (s *SliceIterator) Next() (key, value []byte, err error) {
	if s.idx >= len(s.data) {
		return nil, nil, errors.ErrIteratorDone
	}
	m := s.data[s.idx]
	s.idx++
	return m.Key, m.Value, nil
}

// Release implements Iterator.
func (s *SliceIterator) Release() {
	s.data = nil
}
