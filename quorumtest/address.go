package quorumtest

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/iov-one/quorum"
)

// ParseAddress takes an address in a human readable format and returns
// its binary representation.
func ParseAddress(t testing.TB, encodedAddress string) quorum.Address {
	t.Helper()

	addr, err := quorum.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// RandomAddr returns a valid random address generated on the fly.
func RandomAddr(t testing.TB) quorum.Address {
	t.Helper()
	raw := make([]byte, quorum.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	return quorum.Address(raw)
}

// SeqAddr returns a deterministic address filled with the given byte.
// Addresses created with a higher seed sort after the lower ones.
func SeqAddr(seed byte) quorum.Address {
	raw := make([]byte, quorum.AddressLength)
	for i := range raw {
		raw[i] = seed
	}
	return quorum.Address(raw)
}

// DecodeAddr takes a hex encoded address string and returns its raw
// representation. This function ensures that returned value is a valid
// address.
func DecodeAddr(t testing.TB, encoded string) quorum.Address {
	t.Helper()
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		t.Fatalf("cannot decode hex string: %s", err)
	}
	a := quorum.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("decoded string is not a valid address: %s", err)
	}
	return a
}
