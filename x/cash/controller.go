package cash

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/coin"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins removes funds from the source account and adds them to the
	// destination account. This operation is atomic.
	MoveCoins(db quorum.KVStore, src, dest quorum.Address, amount coin.Coin) error
}

// CoinMinter is an interface to create new coins.
type CoinMinter interface {
	// CoinMint increases the number of funds on given account by a
	// specified amount.
	CoinMint(db quorum.KVStore, dest quorum.Address, amount coin.Coin) error
}

// Balancer is an interface to query the amount of coins.
type Balancer interface {
	// Balance returns the amount of funds stored under given account
	// address. It returns ErrNotFound for an address without a wallet.
	Balance(db quorum.ReadOnlyKVStore, addr quorum.Address) (coin.Coins, error)
}

// Controller is the functionality needed by cash.Handler and cash.Decorator.
// BaseController should work plenty fine, but you can add other logic if so
// desired.
type Controller interface {
	CoinMover
	CoinMinter
	Balancer
}

// BaseController is a simple implementation of controller wallet is
// the only stored model.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the amount of funds stored under given account address.
func (c BaseController) Balance(db quorum.ReadOnlyKVStore, addr quorum.Address) (coin.Coins, error) {
	var w Wallet
	if err := c.bucket.One(db, addr, &w); err != nil {
		return nil, errors.Wrapf(err, "wallet %s", addr)
	}
	return w.Coins, nil
}

// MoveCoins moves the given amount from src to dest. If src doesn't exist,
// or doesn't have sufficient coins, it fails without modifying any wallet.
func (c BaseController) MoveCoins(db quorum.KVStore, src, dest quorum.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount: %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}

	var sender Wallet
	switch err := c.bucket.One(db, src, &sender); {
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	case err != nil:
		return errors.Wrap(err, "cannot load sender wallet")
	}
	if !sender.Coins.Contains(amount) {
		return errors.Wrapf(errors.ErrAmount, "funds: has %v, needs %s", sender.Coins, amount)
	}
	remaining, err := sender.Coins.Subtract(amount)
	if err != nil {
		return errors.Wrap(err, "subtract")
	}

	// Sending to self must not create coins.
	if src.Equals(dest) {
		return nil
	}

	recipient, err := c.loadOrEmpty(db, dest)
	if err != nil {
		return err
	}
	received, err := recipient.Coins.Add(amount)
	if err != nil {
		return errors.Wrap(err, "add")
	}

	sender.Coins = remaining
	recipient.Coins = received
	if err := c.save(db, src, &sender); err != nil {
		return err
	}
	return c.save(db, dest, recipient)
}

// CoinMint attempts to add the given amount of coins to the destination
// address. Fails if it overflows the wallet.
func (c BaseController) CoinMint(db quorum.KVStore, dest quorum.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	w, err := c.loadOrEmpty(db, dest)
	if err != nil {
		return err
	}
	if w.Coins, err = w.Coins.Add(amount); err != nil {
		return errors.Wrap(err, "add")
	}
	return c.save(db, dest, w)
}

func (c BaseController) loadOrEmpty(db quorum.ReadOnlyKVStore, addr quorum.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	case err != nil:
		return nil, errors.Wrapf(err, "cannot load wallet %s", addr)
	}
	return &w, nil
}

// save stores the wallet, removing it entirely when it holds no coins.
func (c BaseController) save(db quorum.KVStore, addr quorum.Address, w *Wallet) error {
	if w.Coins.IsEmpty() {
		err := c.bucket.Delete(db, addr)
		if errors.ErrNotFound.Is(err) {
			return nil
		}
		return errors.Wrap(err, "delete wallet")
	}
	return errors.Wrap(c.bucket.Put(db, addr, w), "save wallet")
}
