package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/compress"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

// committer persists a multisig that passed all checks.
type committer interface {
	// Target returns the address the multisig is stored under. The pda
	// is the address derived from the create key.
	Target(req *createRequest, pda quorum.Address) (quorum.Address, error)

	// Check fails if the multisig cannot be stored under given address.
	// It does not modify the state.
	Check(db quorum.ReadOnlyKVStore, req *createRequest, addr quorum.Address) error

	// Commit stores the multisig under given address.
	Commit(db quorum.KVStore, req *createRequest, addr quorum.Address, m *Multisig) error
}

// directCommitter stores a multisig as a regular account in the multisig
// bucket, keyed by its derived address.
type directCommitter struct {
	bucket orm.ModelBucket
}

var _ committer = directCommitter{}

func (directCommitter) Target(req *createRequest, pda quorum.Address) (quorum.Address, error) {
	return pda, nil
}

func (c directCommitter) Check(db quorum.ReadOnlyKVStore, req *createRequest, addr quorum.Address) error {
	switch err := c.bucket.Has(db, addr); {
	case err == nil:
		return errors.Wrapf(ErrAlreadyInitialized, "multisig %s", addr)
	case !errors.ErrNotFound.Is(err):
		return errors.Wrap(err, "cannot check multisig")
	}
	return nil
}

func (c directCommitter) Commit(db quorum.KVStore, req *createRequest, addr quorum.Address, m *Multisig) error {
	switch err := c.bucket.Create(db, addr, m); {
	case errors.ErrDuplicate.Is(err):
		return errors.Wrapf(ErrAlreadyInitialized, "multisig %s", addr)
	case err != nil:
		return errors.Wrap(err, "cannot store multisig")
	}
	return nil
}

// compressedCommitter stores a multisig as a compressed account. The
// account is queued in the compressed store and appended to its trees at
// the end of the block.
type compressedCommitter struct {
	programID quorum.Address
	store     *compress.Store
}

var _ committer = compressedCommitter{}

func (c compressedCommitter) Target(req *createRequest, pda quorum.Address) (quorum.Address, error) {
	if !req.addressTree.Equals(c.store.TreeID()) {
		return nil, errors.Wrapf(ErrInvalidAccount, "address tree %s is not %s", req.addressTree, c.store.TreeID())
	}
	return DeriveCompressedAddress(c.programID, req.createKey, req.addressTree)
}

func (c compressedCommitter) Check(db quorum.ReadOnlyKVStore, req *createRequest, addr quorum.Address) error {
	if req.proof == nil {
		return errors.Wrap(compress.ErrInvalidProof, "missing proof")
	}
	switch err := c.store.VerifyVacancy(db, addr, *req.proof); {
	case errors.ErrDuplicate.Is(err):
		return errors.Wrapf(ErrAlreadyInitialized, "compressed multisig %s: %s", addr, err)
	case err != nil:
		return errors.Wrap(err, "address vacancy")
	}
	return nil
}

func (c compressedCommitter) Commit(db quorum.KVStore, req *createRequest, addr quorum.Address, m *Multisig) error {
	if err := c.Check(db, req, addr); err != nil {
		return err
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal multisig")
	}
	acct := compress.Account{
		Owner:         c.programID,
		Address:       addr,
		Discriminator: multisigDiscriminator,
		Data:          raw[len(multisigDiscriminator):],
	}
	switch err := c.store.Insert(db, &acct); {
	case errors.ErrDuplicate.Is(err):
		return errors.Wrapf(ErrAlreadyInitialized, "compressed multisig %s", addr)
	case err != nil:
		return errors.Wrap(err, "cannot queue compressed multisig")
	}
	return nil
}

// LoadCompressed returns the multisig stored as a compressed account under
// given address. Only accounts appended to the trees can be loaded.
func LoadCompressed(s *compress.Store, addr quorum.Address) (*Multisig, error) {
	acct, err := s.Account(addr)
	if err != nil {
		return nil, err
	}
	if acct.Discriminator != multisigDiscriminator {
		return nil, errors.Wrapf(errors.ErrType, "account %s is not a multisig", addr)
	}
	raw := make([]byte, 0, len(acct.Discriminator)+len(acct.Data))
	raw = append(raw, acct.Discriminator[:]...)
	raw = append(raw, acct.Data...)

	var m Multisig
	if err := m.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "compressed multisig")
	}
	return &m, nil
}
