package multisig

import (
	"testing"

	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func member(seed byte, mask uint8) Member {
	return Member{Key: quorumtest.SeqAddr(seed), Permissions: Permissions{Mask: mask}}
}

func validMultisig() *Multisig {
	return &Multisig{
		CreateKey:       quorumtest.SeqAddr(0xC0),
		ConfigAuthority: quorumtest.SeqAddr(0),
		Threshold:       2,
		Members: []Member{
			member(1, PermFull),
			member(2, PermVote),
			member(3, PermVote),
		},
	}
}

func TestInvariant(t *testing.T) {
	cases := map[string]struct {
		multisig  func(*Multisig)
		policy    Policy
		wantField string
	}{
		"valid": {
			multisig: func(*Multisig) {},
			policy:   DefaultPolicy(),
		},
		"valid with strict policy": {
			multisig: func(*Multisig) {},
			policy:   StrictPolicy(),
		},
		"threshold equal to the number of members": {
			multisig: func(m *Multisig) { m.Threshold = 3 },
			policy:   DefaultPolicy(),
		},
		"zero threshold": {
			multisig:  func(m *Multisig) { m.Threshold = 0 },
			policy:    DefaultPolicy(),
			wantField: "Threshold",
		},
		"threshold greater than the number of members": {
			multisig:  func(m *Multisig) { m.Threshold = 4 },
			policy:    DefaultPolicy(),
			wantField: "Threshold",
		},
		"no members": {
			multisig: func(m *Multisig) {
				m.Members = nil
				m.Threshold = 1
			},
			policy:    Policy{},
			wantField: "Threshold",
		},
		"duplicated member": {
			multisig: func(m *Multisig) {
				m.Members = []Member{member(1, PermFull), member(2, PermVote), member(2, PermVote)}
			},
			policy:    DefaultPolicy(),
			wantField: "Members.2.Key",
		},
		"members not sorted": {
			multisig: func(m *Multisig) {
				m.Members = []Member{member(2, PermFull), member(1, PermVote), member(3, PermVote)}
			},
			policy:    DefaultPolicy(),
			wantField: "Members.1.Key",
		},
		"too many members": {
			multisig:  func(*Multisig) {},
			policy:    Policy{MaxMembers: 2},
			wantField: "Members",
		},
		"unknown permission bits": {
			multisig: func(m *Multisig) {
				m.Members[1].Permissions.Mask = 0x0A
			},
			policy:    DefaultPolicy(),
			wantField: "Members.1.Permissions",
		},
		"stale transaction index ahead of transaction index": {
			multisig:  func(m *Multisig) { m.StaleTransactionIndex = 1 },
			policy:    DefaultPolicy(),
			wantField: "StaleTransactionIndex",
		},
		"time lock too long": {
			multisig:  func(m *Multisig) { m.TimeLock = MaxTimeLock + 1 },
			policy:    DefaultPolicy(),
			wantField: "TimeLock",
		},
		"time lock not limited by zero policy": {
			multisig: func(m *Multisig) { m.TimeLock = MaxTimeLock + 1 },
			policy:   Policy{},
		},
		"no proposer with strict policy": {
			multisig: func(m *Multisig) {
				m.Members[0].Permissions.Mask = PermVote | PermExecute
			},
			policy:    StrictPolicy(),
			wantField: "Members",
		},
		"no proposer with default policy": {
			multisig: func(m *Multisig) {
				m.Members[0].Permissions.Mask = PermVote | PermExecute
			},
			policy: DefaultPolicy(),
		},
		"no executor with strict policy": {
			multisig: func(m *Multisig) {
				m.Members[0].Permissions.Mask = PermVote | PermInitiate
			},
			policy:    StrictPolicy(),
			wantField: "Members",
		},
		"not enough voters with strict policy": {
			multisig: func(m *Multisig) {
				m.Members[1].Permissions.Mask = PermInitiate
				m.Members[2].Permissions.Mask = PermInitiate
			},
			policy:    StrictPolicy(),
			wantField: "Threshold",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			m := validMultisig()
			tc.multisig(m)
			err := m.Invariant(tc.policy)
			if tc.wantField == "" {
				assert.Nil(t, err)
				return
			}
			if !ErrStateInvariant.Is(err) {
				t.Fatalf("want state invariant error, got %+v", err)
			}
			assert.FieldError(t, err, tc.wantField, ErrStateInvariant)
		})
	}
}

func TestInvariantCollectsAllViolations(t *testing.T) {
	m := validMultisig()
	m.Threshold = 0
	m.StaleTransactionIndex = 3

	err := m.Invariant(DefaultPolicy())
	assert.FieldError(t, err, "Threshold", ErrStateInvariant)
	assert.FieldError(t, err, "StaleTransactionIndex", ErrStateInvariant)
	assert.FieldError(t, err, "Members", nil)
}
