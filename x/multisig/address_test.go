package multisig

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/compress"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func TestDeriveAddress(t *testing.T) {
	createKey := quorumtest.SeqAddr(0xC0)

	addr, bump, err := DeriveAddress(DefaultProgramID, createKey)
	assert.Nil(t, err)
	assert.Nil(t, addr.Validate())

	again, againBump, err := DeriveAddress(DefaultProgramID, createKey)
	assert.Nil(t, err)
	assert.Equal(t, addr, again)
	assert.Equal(t, bump, againBump)

	// Derived address must not be a valid public key, so that nobody can
	// sign on its behalf.
	assert.Equal(t, false, solana.IsOnCurve(addr))

	assert.Nil(t, VerifyAddress(DefaultProgramID, createKey, addr, bump))
	assert.IsErr(t, ErrInvalidAccount, VerifyAddress(DefaultProgramID, createKey, addr, bump-1))
	assert.IsErr(t, ErrInvalidAccount, VerifyAddress(DefaultProgramID, quorumtest.SeqAddr(0xC1), addr, bump))

	other, _, err := DeriveAddress(DefaultProgramID, quorumtest.SeqAddr(0xC1))
	assert.Nil(t, err)
	if other.Equals(addr) {
		t.Fatal("different create keys must result in different addresses")
	}

	otherProgram, _, err := DeriveAddress(quorumtest.SeqAddr(0x11), createKey)
	assert.Nil(t, err)
	if otherProgram.Equals(addr) {
		t.Fatal("different programs must result in different addresses")
	}
}

func TestDeriveAddressInvalidInput(t *testing.T) {
	_, _, err := DeriveAddress(DefaultProgramID, quorum.Address{1, 2, 3})
	assert.IsErr(t, errors.ErrInput, err)

	_, _, err = DeriveAddress(nil, quorumtest.SeqAddr(1))
	assert.IsErr(t, errors.ErrInput, err)

	_, err = DeriveCompressedAddress(DefaultProgramID, quorumtest.SeqAddr(1), nil)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestDeriveCompressedAddress(t *testing.T) {
	createKey := quorumtest.SeqAddr(0xC0)
	tree := compress.DefaultTreeID()

	addr, err := DeriveCompressedAddress(DefaultProgramID, createKey, tree)
	assert.Nil(t, err)
	assert.Nil(t, addr.Validate())

	again, err := DeriveCompressedAddress(DefaultProgramID, createKey, tree)
	assert.Nil(t, err)
	assert.Equal(t, addr, again)

	pda, _, err := DeriveAddress(DefaultProgramID, createKey)
	assert.Nil(t, err)
	if pda.Equals(addr) {
		t.Fatal("compressed address must differ from the account address")
	}

	otherTree, err := DeriveCompressedAddress(DefaultProgramID, createKey, quorumtest.SeqAddr(0x77))
	assert.Nil(t, err)
	if otherTree.Equals(addr) {
		t.Fatal("address must depend on the address tree")
	}
}
