package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/quorum/errors"
)

// ascendBtree returns a snapshot of all cached items within the range, in
// ascending order. Taking a snapshot keeps the iterator independent from
// later writes to the btree.
func ascendBtree(bt *btree.BTree, start, end []byte) []entry {
	var items []entry
	collect := func(item btree.Item) bool {
		items = append(items, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		bt.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	return items
}

// descendBtree is the descending counterpart of ascendBtree.
func descendBtree(bt *btree.BTree, start, end []byte) []entry {
	var items []entry
	collect := func(item btree.Item) bool {
		items = append(items, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Descend(collect)
	case start == nil:
		bt.DescendLessOrEqual(upTo(end), collect)
	case end == nil:
		bt.DescendGreaterThan(upTo(start), collect)
	default:
		bt.DescendRange(upTo(end), upTo(start), collect)
	}
	return items
}

// source marks where the current item comes from
type source int32

const (
	us source = iota
	parent
	both
)

// itemIter combines cached items with the results of the parent,
// taking into consideration overwrites and deletes.
type itemIter struct {
	items []entry
	pos   int

	// if we are iterating in a cache-wrap (and who isn't),
	// we need to combine this iterator with the parent
	parent     Iterator
	parentKey  []byte
	parentVal  []byte
	parentDone bool

	reverse bool
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(items []entry, parent Iterator, reverse bool) (*itemIter, error) {
	it := &itemIter{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
	if err := it.advanceParent(); err != nil {
		parent.Release()
		return nil, err
	}
	return it, nil
}

func (i *itemIter) advanceParent() error {
	if i.parentDone {
		return nil
	}
	key, value, err := i.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		i.parentDone = true
		i.parentKey, i.parentVal = nil, nil
		return nil
	case err != nil:
		return err
	}
	i.parentKey, i.parentVal = key, value
	return nil
}

// Next returns the next key-value pair, skipping over everything that was
// deleted in the cache. Returns ErrIteratorDone when exhausted.
func (i *itemIter) Next() (key, value []byte, err error) {
	for {
		src, ok := i.firstKey()
		if !ok {
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "cache iterator")
		}

		switch src {
		case parent:
			key, value := i.parentKey, i.parentVal
			if err := i.advanceParent(); err != nil {
				return nil, nil, err
			}
			return key, value, nil
		case both:
			// cached value shadows the parent one
			if err := i.advanceParent(); err != nil {
				return nil, nil, err
			}
		}

		item := i.items[i.pos]
		i.pos++
		if !item.deleted {
			return item.key, item.value, nil
		}
		// deleted item, continue with the next one
	}
}

// firstKey selects the source with the lowest (highest when reversed) key.
// Returns false if both sources are exhausted.
func (i *itemIter) firstKey() (source, bool) {
	usValid := i.pos < len(i.items)
	switch {
	case !usValid && i.parentDone:
		return 0, false
	case !usValid:
		return parent, true
	case i.parentDone:
		return us, true
	}

	cmp := bytes.Compare(i.parentKey, i.items[i.pos].key)
	if i.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent, true
	case cmp > 0:
		return us, true
	default:
		return both, true
	}
}

// Release releases the Iterator.
func (i *itemIter) Release() {
	i.parent.Release()
	i.items = nil
}
