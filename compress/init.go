package compress

import (
	"github.com/iov-one/quorum"
)

// Initializer saves the first version of the trees at genesis.
type Initializer struct {
	Store *Store
}

var _ quorum.Initializer = Initializer{}

func (i Initializer) FromGenesis(opts quorum.Options, db quorum.KVStore) error {
	return i.Store.Bootstrap(db)
}
