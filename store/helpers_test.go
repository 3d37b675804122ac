package store

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
)

// TestSliceIterator makes sure the basic slice iterator works.
func TestSliceIterator(t *testing.T) {
	const size = 10

	ks := randKeys(size, 8)
	vs := randKeys(size, 40)

	models := make([]Model, size)
	for i := 0; i < size; i++ {
		models[i].Key = ks[i]
		models[i].Value = vs[i]
	}

	iter := NewSliceIterator(models)
	for i := 0; i < size; i++ {
		key, value, err := iter.Next()
		assert.Nil(t, err)
		assert.Equal(t, ks[i], key)
		assert.Equal(t, vs[i], value)
	}
	if _, _, err := iter.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("want ErrIteratorDone, got %+v", err)
	}

	it := NewSliceIterator(models)
	it.Release()
	if _, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatal("released iterator must be exhausted")
	}
}

func TestEmptyKVStore(t *testing.T) {
	var e EmptyKVStore
	assert.Nil(t, e.Set([]byte("a"), []byte("b")))
	val, err := e.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Nil(t, val)
	has, err := e.Has([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)
}

// randKeys returns a slice of count keys, all of length
func randKeys(count, length int) [][]byte {
	res := make([][]byte, count)
	for i := 0; i < count; i++ {
		res[i] = randBytes(length)
	}
	return res
}

func randBytes(length int) []byte {
	res := make([]byte, length)
	rand.Read(res)
	return res
}
