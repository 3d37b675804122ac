package orm

import (
	"reflect"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// ModelBucket is implemented by buckets that operates on Models rather than
// Objects.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db quorum.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key value exists. It
	// returns ErrNotFound if no entity can be found.
	Has(db quorum.ReadOnlyKVStore, key []byte) error

	// ByIndex returns all keys of the entities indexed under given value.
	ByIndex(db quorum.ReadOnlyKVStore, indexName string, key []byte) ([][]byte, error)

	// Put saves given model in the database.
	Put(db quorum.KVStore, key []byte, m Model) error

	// Create saves given model in the database, failing with ErrDuplicate
	// if an entity is already stored under given key.
	Create(db quorum.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db quorum.KVStore, key []byte) error

	// PrefixScan returns an iterator over all entities whose primary key
	// starts with given prefix. Use nil prefix to iterate over all
	// entities.
	PrefixScan(db quorum.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error)

	// Register registers this buckets content to be accessible via query
	// requests under the given name.
	Register(name string, r quorum.QueryRouter)
}

// NewModelBucket returns a ModelBucket instance.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	b := NewBucket(name, NewSimpleObj(nil, m))
	mb := &modelBucket{
		b:     b,
		model: reflect.TypeOf(m),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function.
func WithIndex(name string, indexer MultiKeyIndexer) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.b = mb.b.WithMultiKeyIndex(name, indexer)
	}
}

type modelBucket struct {
	b     Bucket
	model reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) Register(name string, r quorum.QueryRouter) {
	mb.b.Register(name, r)
}

func (mb *modelBucket) One(db quorum.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value() == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.b.Name())
	}
	res := obj.Value()

	if !reflect.TypeOf(res).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %T", res, dest)
	}

	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(res).Elem())
	return nil
}

func (mb *modelBucket) Has(db quorum.ReadOnlyKVStore, key []byte) error {
	if key == nil {
		// nil key is a special case that would cause the store API to panic.
		return errors.ErrNotFound
	}
	ok, err := mb.b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.b.Name())
	}
	return nil
}

func (mb *modelBucket) ByIndex(db quorum.ReadOnlyKVStore, indexName string, key []byte) ([][]byte, error) {
	objs, err := mb.b.GetIndexed(db, indexName, key)
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(objs))
	for i, o := range objs {
		keys[i] = o.Key()
	}
	return keys, nil
}

func (mb *modelBucket) Put(db quorum.KVStore, key []byte, m Model) error {
	mTp := reflect.TypeOf(m)
	if mTp != mb.model {
		return errors.Wrapf(errors.ErrType, "cannot store %T type in this bucket", m)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	obj := NewSimpleObj(key, m)
	if err := mb.b.Save(db, obj); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Create(db quorum.KVStore, key []byte, m Model) error {
	switch err := mb.Has(db, key); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "%s %X", mb.b.Name(), key)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	return mb.Put(db, key, m)
}

func (mb *modelBucket) Delete(db quorum.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

func (mb *modelBucket) PrefixScan(db quorum.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error) {
	start, end := prefixRange(mb.b.DBKey(prefix))
	var (
		it  quorum.Iterator
		err error
	)
	if reverse {
		it, err = db.ReverseIterator(start, end)
	} else {
		it, err = db.Iterator(start, end)
	}
	if err != nil {
		return nil, err
	}
	return &modelIterator{it: it, prefixLen: len(mb.b.DBKey(nil)), model: mb.model}, nil
}

// ModelIterator allows to iterate over a set of entities stored in a bucket.
type ModelIterator interface {
	// LoadNext loads the next entity into given destination and returns
	// its primary key. It returns ErrIteratorDone when there are no more
	// entities.
	LoadNext(dest Model) ([]byte, error)

	// Release releases the iterator.
	Release()
}

type modelIterator struct {
	it        quorum.Iterator
	prefixLen int
	model     reflect.Type
}

func (m *modelIterator) LoadNext(dest Model) ([]byte, error) {
	if reflect.TypeOf(dest) != m.model {
		return nil, errors.Wrapf(errors.ErrType, "cannot load into %T", dest)
	}
	key, value, err := m.it.Next()
	if err != nil {
		return nil, err
	}
	if err := dest.Unmarshal(value); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %X", key)
	}
	return key[m.prefixLen:], nil
}

func (m *modelIterator) Release() {
	m.it.Release()
}
