package compress

import (
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func TestAddressProofValidate(t *testing.T) {
	cases := map[string]struct {
		proof     AddressProof
		wantField string
	}{
		"missing version": {
			proof:     AddressProof{Root: []byte{1}, Proof: []byte{1}},
			wantField: "Version",
		},
		"missing root": {
			proof:     AddressProof{Version: 1, Proof: []byte{1}},
			wantField: "Root",
		},
		"missing proof": {
			proof:     AddressProof{Version: 1, Root: []byte{1}},
			wantField: "Proof",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.proof.Validate()
			if err == nil {
				t.Fatal("want error")
			}
			if len(errors.FieldErrors(err, tc.wantField)) == 0 {
				t.Fatalf("want %s field error, got %+v", tc.wantField, err)
			}
		})
	}
}

func TestAddressProofMarshal(t *testing.T) {
	s, _ := bootstrapped(t)
	addr := newAccount(1).Address
	proof, err := s.ProveVacancy(addr)
	assert.Nil(t, err)

	raw, err := proof.Marshal()
	assert.Nil(t, err)
	var got AddressProof
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, *proof, got)
	assert.Nil(t, got.VerifyAbsence(addr))
}

func TestAccountValidate(t *testing.T) {
	acct := newAccount(1)
	assert.Nil(t, acct.Validate())

	acct.Data = nil
	assert.FieldError(t, acct.Validate(), "Data", errors.ErrEmpty)

	acct = newAccount(1)
	acct.Owner = nil
	assert.FieldError(t, acct.Validate(), "Owner", errors.ErrInput)
}
