package compress

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tendermint/libs/db"
)

var programID = quorumtest.SeqAddr(0xAA)

func newAccount(seed byte) *Account {
	return &Account{
		Owner:         programID,
		Address:       DeriveAddress(programID, DefaultTreeID(), []byte("test"), []byte{seed}),
		Discriminator: [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
		Data:          []byte{seed, seed, seed},
	}
}

func bootstrapped(t *testing.T) (*Store, quorum.CacheableKVStore) {
	t.Helper()
	s := NewMemStore(DefaultTreeID())
	db := store.MemStore()
	require.NoError(t, Initializer{Store: s}.FromGenesis(nil, db))
	require.Equal(t, int64(1), s.Version())
	return s, db
}

func TestCreateCompressedAccount(t *testing.T) {
	s, db := bootstrapped(t)
	acct := newAccount(1)

	proof, err := s.ProveVacancy(acct.Address)
	require.NoError(t, err)
	require.Equal(t, int64(1), proof.Version)

	require.NoError(t, s.VerifyVacancy(db, acct.Address, *proof))
	require.NoError(t, s.Insert(db, acct))

	// Until flushed the account is only queued.
	n, err := s.Queued(db)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	_, err = s.Account(acct.Address)
	require.True(t, errors.ErrNotFound.Is(err))

	// Queued address cannot be claimed again.
	err = s.VerifyVacancy(db, acct.Address, *proof)
	require.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
	err = s.Insert(db, acct)
	require.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

	flushed, err := s.Flush(db)
	require.NoError(t, err)
	require.Equal(t, 1, flushed)
	require.Equal(t, int64(2), s.Version())

	n, err = s.Queued(db)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	got, err := s.Account(acct.Address)
	require.NoError(t, err)
	require.Equal(t, acct.Data, got.Data)
	require.Equal(t, acct.LeafHash(), got.LeafHash())

	root, err := s.Root(db, 2)
	require.NoError(t, err)
	require.Equal(t, int64(1), root.Leaves)

	// The old proof still references a known root, but the address was
	// inserted since.
	err = s.VerifyVacancy(db, acct.Address, *proof)
	require.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

	_, err = s.ProveVacancy(acct.Address)
	require.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

	// A taken address is reported as such whatever the proof.
	corrupted := *proof
	corrupted.Proof = []byte{0xFF}
	err = s.VerifyVacancy(db, acct.Address, corrupted)
	require.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
	unknown := *proof
	unknown.Version = 9
	err = s.VerifyVacancy(db, acct.Address, unknown)
	require.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

	// Empty queue does not create a new version.
	flushed, err = s.Flush(db)
	require.NoError(t, err)
	require.Equal(t, 0, flushed)
	require.Equal(t, int64(2), s.Version())
}

func TestVerifyVacancyFailures(t *testing.T) {
	s, db := bootstrapped(t)
	a := newAccount(1)

	proof, err := s.ProveVacancy(a.Address)
	require.NoError(t, err)

	cases := map[string]struct {
		addr    quorum.Address
		proof   func() AddressProof
		wantErr *errors.Error
	}{
		"valid": {
			addr:  a.Address,
			proof: func() AddressProof { return *proof },
		},
		"unknown version": {
			addr: a.Address,
			proof: func() AddressProof {
				p := *proof
				p.Version = 7
				return p
			},
			wantErr: ErrUnknownRoot,
		},
		"root not matching history": {
			addr: a.Address,
			proof: func() AddressProof {
				p := *proof
				p.Root = append([]byte(nil), p.Root...)
				p.Root[0] ^= 0xFF
				return p
			},
			wantErr: ErrUnknownRoot,
		},
		"corrupted proof": {
			addr: a.Address,
			proof: func() AddressProof {
				p := *proof
				p.Proof = []byte{1, 2, 3}
				return p
			},
			wantErr: ErrInvalidProof,
		},
		"missing proof": {
			addr: a.Address,
			proof: func() AddressProof {
				p := *proof
				p.Proof = nil
				return p
			},
			wantErr: ErrInvalidProof,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := s.VerifyVacancy(db, tc.addr, tc.proof())
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestRootHistoryPruning(t *testing.T) {
	s, db := bootstrapped(t)
	s.history = 2

	first, err := s.ProveVacancy(newAccount(9).Address)
	require.NoError(t, err)

	for i := byte(1); i <= 3; i++ {
		require.NoError(t, s.Insert(db, newAccount(i)))
		_, err := s.Flush(db)
		require.NoError(t, err)
	}
	require.Equal(t, int64(4), s.Version())

	_, err = s.Root(db, 1)
	require.True(t, errors.ErrNotFound.Is(err), "%+v", err)
	_, err = s.Root(db, 3)
	require.NoError(t, err)

	err = s.VerifyVacancy(db, newAccount(9).Address, *first)
	require.True(t, ErrUnknownRoot.Is(err), "%+v", err)
}

func TestStoreReload(t *testing.T) {
	mem := dbm.NewMemDB()
	s, err := NewStore(mem, DefaultTreeID())
	require.NoError(t, err)
	db := store.MemStore()
	require.NoError(t, s.Bootstrap(db))

	acct := newAccount(5)
	require.NoError(t, s.Insert(db, acct))
	_, err = s.Flush(db)
	require.NoError(t, err)

	reloaded, err := NewStore(mem, DefaultTreeID())
	require.NoError(t, err)
	require.Equal(t, s.Version(), reloaded.Version())
	got, err := reloaded.Account(acct.Address)
	require.NoError(t, err)
	require.Equal(t, acct.Data, got.Data)

	// Bootstrap of an initialized store is a no-op.
	require.NoError(t, reloaded.Bootstrap(db))
	require.Equal(t, s.Version(), reloaded.Version())

	// A store that lost the root record gets it back.
	want, err := s.Root(db, s.Version())
	require.NoError(t, err)
	fresh := store.MemStore()
	require.NoError(t, reloaded.Bootstrap(fresh))
	got2, err := reloaded.Root(fresh, s.Version())
	require.NoError(t, err)
	require.Equal(t, want.AddressRoot, got2.AddressRoot)
	require.Equal(t, want.StateRoot, got2.StateRoot)
	require.Equal(t, want.Leaves, got2.Leaves)
}

func TestReloadDropsUncommittedFlush(t *testing.T) {
	mem := dbm.NewMemDB()
	s, err := NewStore(mem, DefaultTreeID())
	require.NoError(t, err)
	committed := store.MemStore()
	require.NoError(t, s.Bootstrap(committed))

	// Nothing recorded means nothing to roll back to.
	require.NoError(t, s.Reload(store.MemStore()))
	require.Equal(t, int64(1), s.Version())

	acct := newAccount(4)
	block := committed.CacheWrap()
	require.NoError(t, s.Insert(block, acct))
	_, err = s.Flush(block)
	require.NoError(t, err)
	require.Equal(t, int64(2), s.Version())
	// The block is never committed.
	block.Discard()

	reopened, err := NewStore(mem, DefaultTreeID())
	require.NoError(t, err)
	require.Equal(t, int64(2), reopened.Version())

	require.NoError(t, reopened.Reload(committed))
	require.Equal(t, int64(1), reopened.Version())
	_, err = reopened.Account(acct.Address)
	require.True(t, errors.ErrNotFound.Is(err), "%+v", err)

	// The same account can be created again, this time for good.
	proof, err := reopened.ProveVacancy(acct.Address)
	require.NoError(t, err)
	require.NoError(t, reopened.VerifyVacancy(committed, acct.Address, *proof))
	require.NoError(t, reopened.Insert(committed, acct))
	_, err = reopened.Flush(committed)
	require.NoError(t, err)
	require.Equal(t, int64(2), reopened.Version())
	require.NoError(t, reopened.Reload(committed))
	require.Equal(t, int64(2), reopened.Version())
	_, err = reopened.Account(acct.Address)
	require.NoError(t, err)
}

func TestReloadTreesBehindCommittedState(t *testing.T) {
	s, _ := bootstrapped(t)
	db := store.MemStore()
	ahead := RootRecord{Version: 5, AddressRoot: []byte{1}}
	require.NoError(t, s.roots.Put(db, orm.EncodeSequence(5), &ahead))

	err := s.Reload(db)
	require.True(t, errors.ErrState.Is(err), "%+v", err)
	require.Equal(t, int64(1), s.Version())
}

func TestFailedSaveRevertsBothTrees(t *testing.T) {
	s, db := bootstrapped(t)

	// Leave a conflicting second version behind the state tree so that
	// saving it fails once the address tree is already saved.
	s.states.Set([]byte("conflict"), []byte("conflict"))
	_, _, err := s.states.SaveVersion()
	require.NoError(t, err)
	_, err = s.states.LoadVersion(1)
	require.NoError(t, err)

	acct := newAccount(6)
	block := db.CacheWrap()
	require.NoError(t, s.Insert(block, acct))
	_, err = s.Flush(block)
	require.True(t, errors.ErrDatabase.Is(err), "%+v", err)
	block.Discard()

	require.Equal(t, int64(1), s.Version())
	require.Equal(t, int64(1), s.states.Version())
	_, err = s.Account(acct.Address)
	require.True(t, errors.ErrNotFound.Is(err), "%+v", err)

	// Both trees agree again, so the next flush succeeds.
	require.NoError(t, s.Insert(db, acct))
	n, err := s.Flush(db)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int64(2), s.Version())
	require.Equal(t, int64(2), s.states.Version())
}

func TestNewStoreInvalidTreeID(t *testing.T) {
	_, err := NewStore(dbm.NewMemDB(), quorum.Address{1, 2})
	require.True(t, errors.ErrInput.Is(err), "%+v", err)
}

func TestTicker(t *testing.T) {
	s, db := bootstrapped(t)
	ticker := NewTicker(s)
	ctx := context.Background()

	res, err := ticker.Tick(ctx, db)
	require.NoError(t, err)
	require.Empty(t, res.Log)

	require.NoError(t, s.Insert(db, newAccount(1)))
	require.NoError(t, s.Insert(db, newAccount(2)))
	res, err = ticker.Tick(ctx, db)
	require.NoError(t, err)
	require.Equal(t, "2 compressed accounts appended at version 2", res.Log)
}

func TestQueries(t *testing.T) {
	s, db := bootstrapped(t)
	acct := newAccount(1)
	require.NoError(t, s.Insert(db, acct))
	_, err := s.Flush(db)
	require.NoError(t, err)

	qr := quorum.NewQueryRouter()
	s.RegisterQuery(qr)

	res, err := qr.Handler("/compressed").Query(db, quorum.KeyQueryMod, acct.Address)
	require.NoError(t, err)
	require.Len(t, res, 1)
	var got Account
	require.NoError(t, got.Unmarshal(res[0].Value))
	require.Equal(t, acct.Address, got.Address)

	res, err = qr.Handler("/compressed").Query(db, quorum.KeyQueryMod, newAccount(2).Address)
	require.NoError(t, err)
	require.Empty(t, res)

	res, err = qr.Handler("/compressed/proof").Query(db, quorum.KeyQueryMod, newAccount(2).Address)
	require.NoError(t, err)
	require.Len(t, res, 1)
	var proof AddressProof
	require.NoError(t, proof.Unmarshal(res[0].Value))
	require.NoError(t, s.VerifyVacancy(db, newAccount(2).Address, proof))

	res, err = qr.Handler("/compressed/roots").Query(db, quorum.PrefixQueryMod, nil)
	require.NoError(t, err)
	require.Len(t, res, 2)
}

func TestDeriveAddress(t *testing.T) {
	other := quorumtest.SeqAddr(0x01)
	a := DeriveAddress(programID, DefaultTreeID(), []byte("seed"))
	require.NoError(t, a.Validate())
	require.Equal(t, a, DeriveAddress(programID, DefaultTreeID(), []byte("seed")))
	require.NotEqual(t, a, DeriveAddress(programID, other, []byte("seed")))
	require.NotEqual(t, a, DeriveAddress(other, DefaultTreeID(), []byte("seed")))
	require.NotEqual(t, a, DeriveAddress(programID, DefaultTreeID(), []byte("seed2")))
}
