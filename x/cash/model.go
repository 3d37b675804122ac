package cash

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum/coin"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet is the set of coins held by a single address. The address is the
// key the wallet is stored under.
type Wallet struct {
	Coins coin.Coins
}

var _ orm.Model = (*Wallet)(nil)

// Validate requires that all coins are in alphabetical order, positive and
// unique.
func (w *Wallet) Validate() error {
	return errors.Wrap(w.Coins.Validate(), "coins")
}

func (w *Wallet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(*w); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

func (w *Wallet) Unmarshal(raw []byte) error {
	var res Wallet
	if err := bin.NewBorshDecoder(raw).Decode(&res); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*w = res
	return nil
}

// NewBucket returns a bucket for storing wallets, keyed by owner address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}
