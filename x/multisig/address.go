package multisig

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/compress"
	"github.com/iov-one/quorum/errors"
)

// DefaultProgramID is the identity of the program that owns all multisig
// accounts. Addresses are derived in its name.
var DefaultProgramID = quorum.Address(
	solana.MustPublicKeyFromBase58("SQDS4ep65T869zMMBKyuUq6aD6EgTu8psMjkvj52pCf").Bytes())

var (
	seedPrefix   = []byte("multisig")
	seedMultisig = []byte("multisig")
)

func addressSeeds(createKey quorum.Address) [][]byte {
	return [][]byte{seedPrefix, seedMultisig, createKey}
}

// DeriveAddress returns the address of the multisig created with given
// create key, together with the bump that pushes it off the ed25519 curve.
// Nobody holds a private key for that address.
func DeriveAddress(programID, createKey quorum.Address) (quorum.Address, uint8, error) {
	if err := programID.Validate(); err != nil {
		return nil, 0, errors.Wrap(err, "program id")
	}
	if err := createKey.Validate(); err != nil {
		return nil, 0, errors.Wrap(err, "create key")
	}
	pda, bump, err := solana.FindProgramAddress(addressSeeds(createKey), solana.PublicKeyFromBytes(programID))
	if err != nil {
		return nil, 0, errors.Wrapf(errors.ErrInput, "cannot derive address: %s", err)
	}
	return quorum.Address(pda.Bytes()), bump, nil
}

// VerifyAddress ensures that given address was derived from the create key
// with given bump.
func VerifyAddress(programID, createKey, addr quorum.Address, bump uint8) error {
	if err := createKey.Validate(); err != nil {
		return errors.Wrap(err, "create key")
	}
	seeds := append(addressSeeds(createKey), []byte{bump})
	pda, err := solana.CreateProgramAddress(seeds, solana.PublicKeyFromBytes(programID))
	if err != nil {
		return errors.Wrapf(ErrInvalidAccount, "cannot derive address: %s", err)
	}
	if !addr.Equals(pda.Bytes()) {
		return errors.Wrapf(ErrInvalidAccount, "%s is not derived from %s", addr, createKey)
	}
	return nil
}

// DeriveCompressedAddress returns the address of the multisig created with
// given create key in the address space of given address tree.
func DeriveCompressedAddress(programID, createKey, addressTree quorum.Address) (quorum.Address, error) {
	if err := programID.Validate(); err != nil {
		return nil, errors.Wrap(err, "program id")
	}
	if err := createKey.Validate(); err != nil {
		return nil, errors.Wrap(err, "create key")
	}
	if err := addressTree.Validate(); err != nil {
		return nil, errors.Wrap(err, "address tree")
	}
	return compress.DeriveAddress(programID, addressTree, addressSeeds(createKey)...), nil
}
