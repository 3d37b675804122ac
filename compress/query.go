package compress

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// RegisterQuery registers the compressed accounts under "/compressed", the
// vacancy proofs under "/compressed/proof" and the root history under
// "/compressed/roots".
func (s *Store) RegisterQuery(qr quorum.QueryRouter) {
	qr.Register("/compressed", accountQuery{store: s})
	qr.Register("/compressed/proof", proofQuery{store: s})
	s.roots.Register("compressed/roots", qr)
}

type accountQuery struct {
	store *Store
}

func (q accountQuery) Query(db quorum.ReadOnlyKVStore, mod string, data []byte) ([]quorum.Model, error) {
	if mod != quorum.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
	acct, err := q.store.Account(data)
	switch {
	case errors.ErrNotFound.Is(err):
		return nil, nil
	case err != nil:
		return nil, err
	}
	raw, err := acct.Marshal()
	if err != nil {
		return nil, err
	}
	return []quorum.Model{quorum.Pair(data, raw)}, nil
}

type proofQuery struct {
	store *Store
}

func (q proofQuery) Query(db quorum.ReadOnlyKVStore, mod string, data []byte) ([]quorum.Model, error) {
	if mod != quorum.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
	proof, err := q.store.ProveVacancy(data)
	if err != nil {
		return nil, err
	}
	raw, err := proof.Marshal()
	if err != nil {
		return nil, err
	}
	return []quorum.Model{quorum.Pair(data, raw)}, nil
}
