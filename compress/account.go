package compress

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/tendermint/tendermint/crypto/tmhash"
)

// Account is a compressed account leaf.
type Account struct {
	// Owner is the program that created the account.
	Owner quorum.Address
	// Address is the unique address of the account in the address tree.
	Address quorum.Address
	// Discriminator identifies the type of the data.
	Discriminator [8]byte
	// Data is the serialized account state.
	Data []byte
}

var _ quorum.Persistent = (*Account)(nil)

// DataHash returns the hash of the account data.
func (a *Account) DataHash() []byte {
	return tmhash.Sum(a.Data)
}

// LeafHash returns the hash committed to the state tree for this account.
func (a *Account) LeafHash() []byte {
	h := tmhash.New()
	h.Write(a.Owner)
	h.Write(a.Address)
	h.Write(a.Discriminator[:])
	h.Write(a.DataHash())
	return h.Sum(nil)
}

func (a *Account) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", a.Owner.Validate())
	errs = errors.AppendField(errs, "Address", a.Address.Validate())
	if len(a.Data) == 0 {
		errs = errors.AppendField(errs, "Data", errors.ErrEmpty)
	}
	return errs
}

func (a *Account) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(*a); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

func (a *Account) Unmarshal(raw []byte) error {
	var res Account
	if err := bin.NewBorshDecoder(raw).Decode(&res); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*a = res
	return nil
}

// DeriveAddress returns the address of a compressed account created by
// given program from given seeds within the address space of given address
// tree. The same seeds produce different addresses in different trees.
func DeriveAddress(programID, addressTree quorum.Address, seeds ...[]byte) quorum.Address {
	h := tmhash.New()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write(addressTree)
	h.Write(programID)
	return h.Sum(nil)
}
