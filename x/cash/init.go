package cash

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/coin"
	"github.com/iov-one/quorum/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file. Addresses are
// given in any format quorum.ParseAddress accepts and coins in the human
// readable form, for example "10 SOL".
type GenesisAccount struct {
	Address quorum.Address `json:"address"`
	Coins   []coin.Coin    `json:"coins"`
}

// Initializer fulfils the quorum.Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ quorum.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts quorum.Options, kv quorum.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	ctrl := NewController(NewBucket())
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		for _, c := range acct.Coins {
			if err := ctrl.CoinMint(kv, acct.Address, c); err != nil {
				return errors.Wrapf(err, "account %d", i)
			}
		}
	}
	return nil
}
