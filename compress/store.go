package compress

import (
	"bytes"
	"sync"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

const (
	// DefaultRootHistory is how many recent roots are accepted for proofs.
	DefaultRootHistory int64 = 20

	defaultCacheSize = 1000
)

// sentinel is always present in the address tree, so that an absence proof
// can be created even before the first address is inserted. No valid
// address is a single byte long.
var sentinel = []byte{0}

// Store maintains the address and the state Merkle trees of compressed
// accounts.
//
// Trees are only modified by Flush. All other methods read the last saved
// version and may be called concurrently.
type Store struct {
	mu        sync.RWMutex
	db        dbm.DB
	treeID    quorum.Address
	addresses *iavl.MutableTree
	states    *iavl.MutableTree
	history   int64

	roots orm.ModelBucket
	queue orm.ModelBucket
	seq   orm.Sequence
}

var _ quorum.Reloader = (*Store)(nil)

// NewStore returns a store that keeps both trees in given database. The
// tree identifier is the address of the address tree, used as the address
// space context when deriving compressed addresses.
func NewStore(db dbm.DB, treeID quorum.Address) (*Store, error) {
	if err := treeID.Validate(); err != nil {
		return nil, errors.Wrap(err, "tree id")
	}
	s := &Store{
		db:        db,
		treeID:    treeID,
		addresses: iavl.NewMutableTree(dbm.NewPrefixDB(db, []byte("a/")), defaultCacheSize),
		states:    iavl.NewMutableTree(dbm.NewPrefixDB(db, []byte("s/")), defaultCacheSize),
		history:   DefaultRootHistory,
		roots:     newRootBucket(),
		queue:     newQueueBucket(),
		seq:       orm.NewSequence(queueBucketName, "id"),
	}
	if _, err := s.addresses.Load(); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "load address tree: %s", err)
	}
	if _, err := s.states.Load(); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "load state tree: %s", err)
	}
	return s, nil
}

// NewMemStore returns a store that keeps both trees in memory.
func NewMemStore(treeID quorum.Address) *Store {
	s, err := NewStore(dbm.NewMemDB(), treeID)
	if err != nil {
		// A memory database cannot fail to load.
		panic(err)
	}
	return s
}

// DefaultTreeID is the address of the default address tree.
func DefaultTreeID() quorum.Address {
	return quorum.NewAddress([]byte("compress/address-tree"))
}

// TreeID returns the address of the address tree.
func (s *Store) TreeID() quorum.Address {
	return s.treeID
}

// Close releases the underlying database.
func (s *Store) Close() {
	s.db.Close()
}

// Bootstrap saves the first version of both trees and records its roots.
// If the trees were already initialized, it only restores the root record
// of the last version when the given store lacks it.
func (s *Store) Bootstrap(db quorum.KVStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version := s.addresses.Version(); version > 0 {
		switch err := s.roots.Has(db, orm.EncodeSequence(version)); {
		case err == nil:
			return nil
		case errors.ErrNotFound.Is(err):
			return s.recordRoot(db, version, s.addresses.Hash(), s.states.Hash())
		default:
			return errors.Wrap(err, "root history")
		}
	}
	s.addresses.Set(sentinel, sentinel)
	return s.save(db)
}

// Version returns the last saved version of the trees.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addresses.Version()
}

// ProveVacancy returns a proof that given address is not present in the
// last saved address tree. It fails with ErrDuplicate if the address is
// already taken.
func (s *Store) ProveVacancy(addr quorum.Address) (*AddressProof, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	version := s.addresses.Version()
	if version == 0 {
		return nil, errors.Wrap(errors.ErrState, "address tree not initialized")
	}
	val, proof, err := s.addresses.GetVersionedWithProof(addr, version)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "proof: %s", err)
	}
	if val != nil {
		return nil, errors.Wrapf(errors.ErrDuplicate, "address %s", addr)
	}
	return newAddressProof(version, s.addresses.Hash(), proof)
}

// VerifyVacancy checks that the address was neither inserted nor queued,
// and that the proof proves its absence against a known root. A taken
// address fails with ErrDuplicate whatever the proof.
func (s *Store) VerifyVacancy(db quorum.ReadOnlyKVStore, addr quorum.Address, proof AddressProof) error {
	s.mu.RLock()
	taken := s.addresses.Has(addr)
	s.mu.RUnlock()
	if taken {
		return errors.Wrapf(errors.ErrDuplicate, "address %s already inserted", addr)
	}
	if err := s.notQueued(db, addr); err != nil {
		return err
	}

	var root RootRecord
	switch err := s.roots.One(db, orm.EncodeSequence(proof.Version), &root); {
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(ErrUnknownRoot, "version %d", proof.Version)
	case err != nil:
		return errors.Wrap(err, "root history")
	}
	if !proof.sameRoot(&root) {
		return errors.Wrapf(ErrUnknownRoot, "root %X at version %d", proof.Root, proof.Version)
	}
	return proof.VerifyAbsence(addr)
}

func (s *Store) notQueued(db quorum.ReadOnlyKVStore, addr quorum.Address) error {
	keys, err := s.queue.ByIndex(db, queueAddrIndex, addr)
	if err != nil {
		return errors.Wrap(err, "queue")
	}
	if len(keys) != 0 {
		return errors.Wrapf(errors.ErrDuplicate, "address %s already queued", addr)
	}
	return nil
}

// Insert puts the account into the output queue. The account is appended
// to the trees by the next Flush. Insert does not verify the vacancy of the
// address in the trees, use VerifyVacancy for that.
func (s *Store) Insert(db quorum.KVStore, acct *Account) error {
	if err := acct.Validate(); err != nil {
		return errors.Wrap(err, "account")
	}
	if err := s.notQueued(db, acct.Address); err != nil {
		return err
	}
	key, err := s.seq.NextVal(db)
	if err != nil {
		return errors.Wrap(err, "queue sequence")
	}
	return s.queue.Put(db, key, acct)
}

// Queued returns the number of accounts waiting for the next Flush.
func (s *Store) Queued(db quorum.ReadOnlyKVStore) (int, error) {
	it, err := s.queue.PrefixScan(db, nil, false)
	if err != nil {
		return 0, err
	}
	defer it.Release()

	var n int
	for {
		var acct Account
		switch _, err := it.LoadNext(&acct); {
		case errors.ErrIteratorDone.Is(err):
			return n, nil
		case err != nil:
			return 0, err
		}
		n++
	}
}

// Flush appends all queued accounts to the trees in the order they were
// queued, saves a new version of both trees and records its roots. It
// returns the number of appended accounts. Nothing is saved when the queue
// is empty.
func (s *Store) Flush(db quorum.KVStore) (int, error) {
	queued, keys, err := s.drain(db)
	if err != nil {
		return 0, err
	}
	if len(queued) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acct := range queued {
		if s.addresses.Has(acct.Address) {
			return 0, errors.Wrapf(errors.ErrDuplicate, "address %s", acct.Address)
		}
	}

	for _, acct := range queued {
		raw, err := acct.Marshal()
		if err != nil {
			s.rollback()
			return 0, errors.Wrap(err, "marshal account")
		}
		index := orm.EncodeSequence(s.states.Size())
		s.states.Set(index, raw)
		s.addresses.Set(acct.Address, index)
	}
	for _, k := range keys {
		if err := s.queue.Delete(db, k); err != nil {
			s.rollback()
			return 0, errors.Wrap(err, "dequeue")
		}
	}
	if err := s.save(db); err != nil {
		return 0, err
	}
	return len(queued), nil
}

func (s *Store) drain(db quorum.ReadOnlyKVStore) ([]*Account, [][]byte, error) {
	it, err := s.queue.PrefixScan(db, nil, false)
	if err != nil {
		return nil, nil, err
	}
	defer it.Release()

	var (
		queued []*Account
		keys   [][]byte
	)
	for {
		var acct Account
		key, err := it.LoadNext(&acct)
		if errors.ErrIteratorDone.Is(err) {
			return queued, keys, nil
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "queue")
		}
		queued = append(queued, &acct)
		keys = append(keys, key)
	}
}

// save must be called with the write lock held.
func (s *Store) save(db quorum.KVStore) error {
	addrRoot, version, err := s.addresses.SaveVersion()
	if err != nil {
		s.rollback()
		return errors.Wrapf(errors.ErrDatabase, "save address tree: %s", err)
	}
	stateRoot, _, err := s.states.SaveVersion()
	if err != nil {
		s.revert(version - 1)
		return errors.Wrapf(errors.ErrDatabase, "save state tree: %s", err)
	}

	if err := s.recordRoot(db, version, addrRoot, stateRoot); err != nil {
		s.revert(version - 1)
		return err
	}

	if old := version - s.history; old > 0 {
		if err := s.roots.Delete(db, orm.EncodeSequence(old)); err != nil && !errors.ErrNotFound.Is(err) {
			return errors.Wrap(err, "prune root history")
		}
		if err := s.addresses.DeleteVersion(old); err != nil {
			return errors.Wrapf(errors.ErrDatabase, "prune address tree: %s", err)
		}
		if err := s.states.DeleteVersion(old); err != nil {
			return errors.Wrapf(errors.ErrDatabase, "prune state tree: %s", err)
		}
	}
	return nil
}

func (s *Store) recordRoot(db quorum.KVStore, version int64, addrRoot, stateRoot []byte) error {
	root := RootRecord{
		Version:     version,
		AddressRoot: addrRoot,
		StateRoot:   stateRoot,
		Leaves:      s.states.Size(),
	}
	if err := s.roots.Put(db, orm.EncodeSequence(version), &root); err != nil {
		return errors.Wrap(err, "root history")
	}
	return nil
}

func (s *Store) rollback() {
	s.addresses.Rollback()
	s.states.Rollback()
}

// revert drops unsaved changes and every version of both trees above
// given one. Version zero cannot be restored, only unsaved changes are
// dropped then.
func (s *Store) revert(version int64) {
	s.rollback()
	if version > 0 {
		// Nothing better to do if this fails, Reload repairs the trees.
		_ = s.loadVersion(version)
	}
}

// loadVersion must be called with the write lock held.
func (s *Store) loadVersion(version int64) error {
	if _, err := s.addresses.LoadVersionForOverwriting(version); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "load address tree version %d: %s", version, err)
	}
	if _, err := s.states.LoadVersionForOverwriting(version); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "load state tree version %d: %s", version, err)
	}
	return nil
}

// Reload rolls both trees back to the last version recorded in the root
// history of given store. Versions saved by a Flush whose block was never
// committed are dropped. Trees that were never recorded are left untouched,
// Bootstrap takes care of them.
func (s *Store) Reload(committed quorum.ReadOnlyKVStore) error {
	root, err := s.lastRoot(committed)
	switch {
	case errors.ErrNotFound.Is(err):
		return nil
	case err != nil:
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	addrVersion, stateVersion := s.addresses.Version(), s.states.Version()
	if addrVersion == root.Version && stateVersion == root.Version {
		return nil
	}
	if addrVersion < root.Version || stateVersion < root.Version {
		return errors.Wrapf(errors.ErrState, "trees at version %d and %d, committed root at %d",
			addrVersion, stateVersion, root.Version)
	}
	if err := s.loadVersion(root.Version); err != nil {
		return err
	}
	if !bytes.Equal(s.addresses.Hash(), root.AddressRoot) || !bytes.Equal(s.states.Hash(), root.StateRoot) {
		return errors.Wrapf(errors.ErrState, "trees do not match the committed root at version %d", root.Version)
	}
	return nil
}

func (s *Store) lastRoot(db quorum.ReadOnlyKVStore) (*RootRecord, error) {
	it, err := s.roots.PrefixScan(db, nil, true)
	if err != nil {
		return nil, errors.Wrap(err, "root history")
	}
	defer it.Release()

	var root RootRecord
	switch _, err := it.LoadNext(&root); {
	case errors.ErrIteratorDone.Is(err):
		return nil, errors.Wrap(errors.ErrNotFound, "no root recorded")
	case err != nil:
		return nil, errors.Wrap(err, "root history")
	}
	return &root, nil
}

// Account returns the compressed account stored under given address in the
// last saved version. It returns ErrNotFound if there is none.
func (s *Store) Account(addr quorum.Address) (*Account, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	version := s.addresses.Version()
	_, index := s.addresses.GetVersioned(addr, version)
	if index == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "address %s", addr)
	}
	_, raw := s.states.GetVersioned(index, version)
	if raw == nil {
		return nil, errors.Wrapf(errors.ErrState, "missing leaf %X", index)
	}
	var acct Account
	if err := acct.Unmarshal(raw); err != nil {
		return nil, err
	}
	return &acct, nil
}

// Root returns the root record of given version from the root history.
func (s *Store) Root(db quorum.ReadOnlyKVStore, version int64) (*RootRecord, error) {
	var root RootRecord
	if err := s.roots.One(db, orm.EncodeSequence(version), &root); err != nil {
		return nil, errors.Wrapf(err, "version %d", version)
	}
	return &root, nil
}
