package orm

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

const nativeIdxPrefix = "_x."

// MultiKeyIndexer calculates the secondary index keys for a given object
type MultiKeyIndexer func(Object) ([][]byte, error)

// Index is a secondary index maintained by a bucket.
type Index interface {
	// Name returns the name of this index.
	Name() string

	// Update updates the index. It should be called when any of the bucket
	// entities has changed in the store.
	//
	// prev == nil means insert
	// next == nil means delete
	// both == nil is error
	Update(db quorum.KVStore, prev Object, next Object) error

	// Keys returns all entity keys that were indexed under given value.
	Keys(db quorum.ReadOnlyKVStore, value []byte) ([][]byte, error)
}

// nativeIndex is an index implementation that is using a database native
// storage and query in order to maintain and provide access to an index.
//
// Each indexed pair is stored under its own key in format
//
//	_x.<index name>:<value length><value><entity key>
//
// so that all entities indexed under the same value can be found using
// a prefix iteration.
type nativeIndex struct {
	name    string
	indexer MultiKeyIndexer
}

var _ Index = (*nativeIndex)(nil)

// NewNativeIndex returns an index implementation that is using a database
// native storage and query in order to maintain and provide access to an
// index.
func NewNativeIndex(name string, indexer MultiKeyIndexer) Index {
	return &nativeIndex{
		name:    name,
		indexer: indexer,
	}
}

func (ix *nativeIndex) Name() string {
	return ix.name
}

func (ix *nativeIndex) lookupKey(value []byte) []byte {
	prefix := nativeIdxPrefix + ix.name + ":"
	key := make([]byte, len(prefix)+2+len(value))
	copy(key, prefix)
	binary.BigEndian.PutUint16(key[len(prefix):], uint16(len(value)))
	copy(key[len(prefix)+2:], value)
	return key
}

func (ix *nativeIndex) Update(db quorum.KVStore, prev Object, next Object) error {
	if next == nil && prev == nil {
		return errors.Wrap(errors.ErrInput, "update requires at least one non-nil object")
	}
	if next != nil && prev != nil {
		if !bytes.Equal(next.Key(), prev.Key()) {
			return errors.Wrap(errors.ErrState, "previous key is not the same as the new one")
		}
	}

	if prev != nil {
		values, err := ix.indexer(prev)
		if err != nil {
			return errors.Wrap(err, "indexer")
		}
		for _, v := range values {
			if err := db.Delete(append(ix.lookupKey(v), prev.Key()...)); err != nil {
				return errors.Wrap(err, "db delete")
			}
		}
	}

	if next != nil {
		values, err := ix.indexer(next)
		if err != nil {
			return errors.Wrap(err, "indexer")
		}
		for _, v := range values {
			if len(v) > 0xFFFF {
				return errors.Wrap(errors.ErrInput, "index value too long")
			}
			if err := db.Set(append(ix.lookupKey(v), next.Key()...), []byte{1}); err != nil {
				return errors.Wrap(err, "db set")
			}
		}
	}
	return nil
}

func (ix *nativeIndex) Keys(db quorum.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	prefix := ix.lookupKey(value)
	models, err := queryPrefix(db, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, 0, len(models))
	for _, m := range models {
		keys = append(keys, m.Key[len(prefix):])
	}
	return keys, nil
}
