package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/coin"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/cash"
)

// feeTransfer moves the creation fee from the creator to the treasury.
type feeTransfer struct {
	ctrl cash.Controller
}

// Check ensures the treasury is the configured one and that the creator
// can afford the fee. It does not modify the state.
func (f feeTransfer) Check(db quorum.ReadOnlyKVStore, conf *ProgramConfig, creator, treasury quorum.Address) error {
	if !treasury.Equals(conf.Treasury) {
		return errors.Wrapf(ErrInvalidAccount, "treasury %s is not %s", treasury, conf.Treasury)
	}
	fee := conf.MultisigCreationFee
	if fee.IsZero() {
		return nil
	}
	balance, err := f.ctrl.Balance(db, creator)
	if err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "balance")
	}
	if !balance.Contains(fee) {
		return errors.Wrapf(ErrTransfer, "creator cannot pay the creation fee of %s", fee)
	}
	return nil
}

// Transfer pays the creation fee. It must be the last step that modifies
// the state. Zero fee is a no op. The paid fee is returned.
func (f feeTransfer) Transfer(ctx quorum.Context, db quorum.KVStore, conf *ProgramConfig, creator quorum.Address) (coin.Coin, error) {
	fee := conf.MultisigCreationFee
	if fee.IsZero() {
		return fee, nil
	}
	if err := f.ctrl.MoveCoins(db, creator, conf.Treasury, fee); err != nil {
		return fee, errors.Wrapf(ErrTransfer, "creation fee %s: %s", fee, err)
	}
	quorum.GetLogger(ctx).Info("Creation fee paid",
		"fee", fee.Whole(),
		"creator", creator,
		"treasury", conf.Treasury)
	return fee, nil
}
