package coin

import (
	"bytes"
	"sort"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum/errors"
)

// Coins represents a set of coins. Most operations on the coin set require
// normalized form: sorted by ticker, one entry per currency and no zero
// amounts.
type Coins []Coin

// CombineCoins creates a Coins containing all given coins.
// It will sort them and combine duplicates to produce
// a normalized form regardless of input.
func CombineCoins(cs ...Coin) (Coins, error) {
	var err error
	var coins Coins
	for _, c := range cs {
		coins, err = coins.Add(c)
		if err != nil {
			return nil, err
		}
	}
	if err := coins.Validate(); err != nil {
		return nil, err
	}
	return coins, nil
}

// Clone returns a copy that can be safely modified
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	return append(Coins(nil), cs...)
}

// Add returns a new set with holdings increased by c. The receiver is not
// modified.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs.Clone(), nil
	}
	res := cs.Clone()
	has, i := res.findCoin(c.ID())
	if has != nil {
		sum, err := has.Add(c)
		if err != nil {
			return nil, err
		}
		res[i] = sum
		return res, nil
	}
	res = append(res, Coin{})
	copy(res[i+1:], res[i:])
	res[i] = c
	return res, nil
}

// Subtract returns a new set with holdings decreased by c. A currency that
// drops to zero is removed from the set. Subtracting more than is held
// fails with ErrAmount.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs.Clone(), nil
	}
	res := cs.Clone()
	has, i := res.findCoin(c.ID())
	if has == nil {
		return nil, errors.Wrapf(errors.ErrAmount, "no %s held", c.Ticker)
	}
	diff, err := has.Subtract(c)
	if err != nil {
		return nil, err
	}
	if diff.IsZero() {
		return append(res[:i], res[i+1:]...), nil
	}
	res[i] = diff
	return res, nil
}

// Combine will create a new Coins adding all the coins
// of s and o together.
func (cs Coins) Combine(o Coins) (Coins, error) {
	var err error
	res := cs.Clone()
	for _, c := range o {
		res, err = res.Add(c)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Contains returns true if there is at least that much
// coin in the Coins. If it returns true, then:
//
//	s.Subtract(c) does not fail
func (cs Coins) Contains(c Coin) bool {
	if c.IsZero() {
		return true
	}
	has, _ := cs.findCoin(c.ID())
	if has == nil {
		return false
	}
	return has.IsGTE(c)
}

// Get returns the held amount of given currency, a zero coin when none is
// held.
func (cs Coins) Get(ticker string) Coin {
	if has, _ := cs.findCoin(ticker); has != nil {
		return *has
	}
	return Coin{Ticker: ticker}
}

// findCoin returns a coin and index that have this
// currency code.
//
// If there was a match, then result is non-nil, and the
// index is where it was. If there was no match, then
// result is nil, and index is where it should be
// (which may be between 0 and len(cs)).
func (cs Coins) findCoin(id string) (*Coin, int) {
	i := sort.Search(len(cs), func(i int) bool {
		return strings.Compare(cs[i].ID(), id) >= 0
	})
	if i < len(cs) && cs[i].ID() == id {
		return &cs[i], i
	}
	return nil, i
}

// IsEmpty returns if nothing is in the Coins
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// Equals returns true if both Coins contain same coins
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(o[i]) {
			return false
		}
	}
	return true
}

// Validate requires that all coins are in alphabetical
// order and that each coin is valid in it's own right
//
// Zero amounts should not be present
func (cs Coins) Validate() error {
	var err error
	last := ""
	for _, c := range cs {
		err = errors.Append(err, errors.Wrap(c.Validate(), "coin"))
		if c.IsZero() {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "zero coins"))
		}
		if c.Ticker <= last && last != "" {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "not sorted"))
		}
		last = c.Ticker
	}
	return err
}

// NormalizeCoins is a cleanup operation that merge and orders set of coin
// instances into a unified form. This includes merging coins of the same
// currency, dropping zero values and sorting coins according to the ticker
// name.
func NormalizeCoins(cs Coins) (Coins, error) {
	var res Coins
	for _, c := range cs {
		var err error
		if res, err = res.Add(c); err != nil {
			return nil, errors.Wrap(err, "cannot sum coins")
		}
	}
	return res, nil
}

// Marshal returns the borsh encoding of the set.
func (cs Coins) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode([]Coin(cs)); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the set from its borsh encoding.
func (cs *Coins) Unmarshal(raw []byte) error {
	var res []Coin
	if err := bin.NewBorshDecoder(raw).Decode(&res); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*cs = res
	return nil
}
