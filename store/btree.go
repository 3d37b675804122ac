package store

import (
	"bytes"

	"github.com/google/btree"
)

// BTreeCacheable gives any KVStore a btree backed CacheWrap.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a cache whose writes reach the wrapped store only
// through a batch, on Write.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns a store without any persistence, for tests and tools.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// BTreeCacheWrap keeps all changes in a btree on top of a read only store.
// Reads see the changes first. Every change is also recorded in the batch,
// which is applied to the backing store by Write.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns a cache over kv. Nested caches share the free
// list of their parent, free can be nil for the first one.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(btree.DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
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

// Write applies all changes to the backing store and empties the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all changes. Nodes go back to the free list.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(entry{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(entry{key: key, deleted: true})
	return b.batch.Delete(key)
}

// cached returns the change recorded for given key, if any.
func (b BTreeCacheWrap) cached(key []byte) (entry, bool) {
	item := b.bt.Get(entry{key: key})
	if item == nil {
		return entry{}, false
	}
	return item.(entry), true
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if e, ok := b.cached(key); ok {
		return e.value, nil
	}
	return b.back.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if e, ok := b.cached(key); ok {
		return !e.deleted, nil
	}
	return b.back.Has(key)
}

// Iterator merges the cached changes with the backing store, in ascending
// key order.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parentIter, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newItemIter(ascendBtree(b.bt, start, end), parentIter, false)
}

// ReverseIterator is the descending counterpart of Iterator.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parentIter, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newItemIter(descendBtree(b.bt, start, end), parentIter, true)
}

// entry is a change kept in the btree. A deleted entry shadows the value
// of the backing store.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(item btree.Item) bool {
	return bytes.Compare(e.key, itemKey(item)) < 0
}

// upTo is a btree pivot placed right above its key. Descending ranges use it
// so that an exact match of the key is included.
type upTo []byte

var _ btree.Item = upTo(nil)

func (u upTo) Less(item btree.Item) bool {
	return bytes.Compare(u, itemKey(item)) <= 0
}

func itemKey(item btree.Item) []byte {
	switch it := item.(type) {
	case entry:
		return it.key
	case upTo:
		return it
	default:
		panic("unexpected btree item")
	}
}
