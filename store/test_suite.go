package store

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
)

// TestStoreConstructor returns a fresh store and a function releasing it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// RunTestSuite checks that the store returned by the constructor behaves
// like a KVStore with all-or-nothing cache wraps. Every check runs on a new
// store instance. It is shared by all store implementations.
func RunTestSuite(t *testing.T, makeBase TestStoreConstructor) {
	checks := map[string]func(*testing.T, CacheableKVStore){
		"get set":            checkGetSet,
		"write and discard":  checkWriteDiscard,
		"child overrides":    checkChildOverrides,
		"merged iteration":   checkMergedIteration,
		"deleted iteration":  checkDeletedIteration,
		"iteration in range": checkRangeIteration,
	}
	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			base, cleanup := makeBase()
			defer cleanup()
			check(t, base)
		})
	}
}

func checkGetSet(t *testing.T, base CacheableKVStore) {
	k, v := []byte("multisig"), []byte("threshold")
	AssertGetHas(t, base, k, nil, false)
	assert.Nil(t, base.Set(k, v))
	AssertGetHas(t, base, k, v, true)

	v2 := []byte("members")
	assert.Nil(t, base.Set(k, v2))
	AssertGetHas(t, base, k, v2, true)

	assert.Nil(t, base.Delete(k))
	AssertGetHas(t, base, k, nil, false)
	// deleting a missing key is not an error
	assert.Nil(t, base.Delete(k))
}

func checkWriteDiscard(t *testing.T, base CacheableKVStore) {
	created, fee := []byte("created"), []byte("fee")
	assert.Nil(t, base.Set(created, []byte("1")))

	failed := base.CacheWrap()
	assert.Nil(t, failed.Set(fee, []byte("paid")))
	assert.Nil(t, failed.Delete(created))
	AssertGetHas(t, failed, fee, []byte("paid"), true)
	AssertGetHas(t, failed, created, nil, false)
	// nothing leaks before the cache is written
	AssertGetHas(t, base, fee, nil, false)
	AssertGetHas(t, base, created, []byte("1"), true)
	failed.Discard()
	AssertGetHas(t, base, fee, nil, false)
	AssertGetHas(t, base, created, []byte("1"), true)

	succeeded := base.CacheWrap()
	assert.Nil(t, succeeded.Set(fee, []byte("paid")))
	assert.Nil(t, succeeded.Delete(created))
	assert.Nil(t, succeeded.Write())
	AssertGetHas(t, base, fee, []byte("paid"), true)
	AssertGetHas(t, base, created, nil, false)
}

func checkChildOverrides(t *testing.T, base CacheableKVStore) {
	ms := testModels(4)
	assert.Nil(t, base.Set(ms[0].Key, ms[0].Value))
	assert.Nil(t, base.Set(ms[1].Key, ms[1].Value))

	outer := base.CacheWrap()
	assert.Nil(t, outer.Set(ms[0].Key, []byte("outer")))
	assert.Nil(t, outer.Delete(ms[1].Key))

	inner := outer.CacheWrap()
	assert.Nil(t, inner.Set(ms[2].Key, ms[2].Value))
	assert.Nil(t, inner.Set(ms[1].Key, []byte("inner")))

	AssertGetHas(t, inner, ms[0].Key, []byte("outer"), true)
	AssertGetHas(t, inner, ms[1].Key, []byte("inner"), true)
	AssertGetHas(t, outer, ms[1].Key, nil, false)
	AssertGetHas(t, outer, ms[2].Key, nil, false)

	assert.Nil(t, inner.Write())
	assert.Nil(t, outer.Write())
	AssertGetHas(t, base, ms[0].Key, []byte("outer"), true)
	AssertGetHas(t, base, ms[1].Key, []byte("inner"), true)
	AssertGetHas(t, base, ms[2].Key, ms[2].Value, true)
	AssertGetHas(t, base, ms[3].Key, nil, false)
}

func checkMergedIteration(t *testing.T, base CacheableKVStore) {
	ms := testModels(10)
	for _, m := range ms[:5] {
		assert.Nil(t, base.Set(m.Key, m.Value))
	}
	child := base.CacheWrap()
	for _, m := range ms[5:] {
		assert.Nil(t, child.Set(m.Key, m.Value))
	}
	override := Pair(ms[2].Key, []byte("override"))
	assert.Nil(t, child.Set(override.Key, override.Value))

	want := sortedModels(append(append([]Model{}, ms[:2]...), append([]Model{override}, ms[3:]...)...))
	assertIteration(t, child, nil, nil, false, want)
	assertIteration(t, child, nil, nil, true, reversed(want))
}

func checkDeletedIteration(t *testing.T, base CacheableKVStore) {
	ms := sortedModels(testModels(6))
	for _, m := range ms {
		assert.Nil(t, base.Set(m.Key, m.Value))
	}
	child := base.CacheWrap()
	for _, i := range []int{0, 2, 5} {
		assert.Nil(t, child.Delete(ms[i].Key))
	}
	want := []Model{ms[1], ms[3], ms[4]}
	assertIteration(t, child, nil, nil, false, want)
	assertIteration(t, child, nil, nil, true, reversed(want))
	// range ending before the first remaining key is empty
	assertIteration(t, child, nil, ms[1].Key, false, nil)
}

func checkRangeIteration(t *testing.T, base CacheableKVStore) {
	ms := sortedModels(testModels(20))
	for _, m := range ms[:10] {
		assert.Nil(t, base.Set(m.Key, m.Value))
	}
	child := base.CacheWrap()
	for _, m := range ms[10:] {
		assert.Nil(t, child.Set(m.Key, m.Value))
	}

	cases := []struct {
		start, end []byte
		want       []Model
	}{
		{start: ms[4].Key, want: ms[4:]},
		{end: ms[12].Key, want: ms[:12]},
		{start: ms[7].Key, end: ms[15].Key, want: ms[7:15]},
	}
	for _, tc := range cases {
		assertIteration(t, child, tc.start, tc.end, false, tc.want)
		assertIteration(t, child, tc.start, tc.end, true, reversed(tc.want))
	}
}

// AssertGetHas checks the value stored under given key as returned by both
// Get and Has.
func AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func assertIteration(t testing.TB, kv ReadOnlyKVStore, start, end []byte, reverse bool, want []Model) {
	t.Helper()
	var (
		it  Iterator
		err error
	)
	if reverse {
		it, err = kv.ReverseIterator(start, end)
	} else {
		it, err = kv.Iterator(start, end)
	}
	assert.Nil(t, err)
	defer it.Release()

	for i, m := range want {
		key, value, err := it.Next()
		if err != nil {
			t.Fatalf("item %d: %+v", i, err)
		}
		if !bytes.Equal(m.Key, key) || !bytes.Equal(m.Value, value) {
			t.Fatalf("item %d: want %s=%s, got %s=%s", i, m.Key, m.Value, key, value)
		}
	}
	if _, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("want iterator done, got %+v", err)
	}
}

// testModels returns models with keys that do not sort in creation order.
func testModels(count int) []Model {
	ms := make([]Model, count)
	for i := range ms {
		ms[i] = Pair(
			[]byte(fmt.Sprintf("key-%02d", (i*7)%count)),
			[]byte(fmt.Sprintf("value-%d", i)))
	}
	return ms
}

func sortedModels(models []Model) []Model {
	res := append([]Model(nil), models...)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func reversed(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}
