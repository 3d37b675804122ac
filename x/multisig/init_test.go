package multisig

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/coin"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/store"
)

func TestGenesis(t *testing.T) {
	const genesis = `{
		"conf": {
			"multisig": {
				"authority": "0101010101010101010101010101010101010101010101010101010101010101",
				"multisig_creation_fee": "0.001 SOL",
				"treasury": "0202020202020202020202020202020202020202020202020202020202020202"
			}
		},
		"multisig": [
			{
				"create_key": "c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0",
				"threshold": 2,
				"members": [
					{"key": "0303030303030303030303030303030303030303030303030303030303030303", "permissions": {"mask": 2}},
					{"key": "0404040404040404040404040404040404040404040404040404040404040404", "permissions": {"mask": 7}}
				],
				"time_lock": 60
			},
			{
				"create_key": "c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1",
				"config_authority": "0505050505050505050505050505050505050505050505050505050505050505",
				"threshold": 1,
				"members": [
					{"key": "0505050505050505050505050505050505050505050505050505050505050505", "permissions": {"mask": 7}}
				],
				"rent_collector": "0606060606060606060606060606060606060606060606060606060606060606"
			}
		]
	}`
	var opts quorum.Options
	if err := json.Unmarshal([]byte(genesis), &opts); err != nil {
		t.Fatalf("cannot unmarshal genesis: %s", err)
	}

	db := store.MemStore()
	assert.Nil(t, (&Initializer{}).FromGenesis(opts, db))

	conf, err := LoadConfig(db)
	assert.Nil(t, err)
	assert.Equal(t, quorumtest.SeqAddr(2), conf.Treasury)
	assert.Equal(t, coin.NewCoin(0, 1000000, "SOL"), conf.MultisigCreationFee)

	addr, bump, err := DeriveAddress(DefaultProgramID, quorumtest.SeqAddr(0xC0))
	assert.Nil(t, err)
	var first Multisig
	assert.Nil(t, NewBucket().One(db, addr, &first))
	assert.Equal(t, bump, first.Bump)
	assert.Equal(t, uint16(2), first.Threshold)
	assert.Equal(t, uint32(60), first.TimeLock)
	assert.Equal(t, true, first.IsAutonomous())
	assert.Equal(t, []Member{member(3, PermVote), member(4, PermFull)}, first.Members)

	addr, _, err = DeriveAddress(DefaultProgramID, quorumtest.SeqAddr(0xC1))
	assert.Nil(t, err)
	var second Multisig
	assert.Nil(t, NewBucket().One(db, addr, &second))
	assert.Equal(t, quorumtest.SeqAddr(5), second.ConfigAuthority)
	assert.Equal(t, quorumtest.SeqAddr(6), second.RentCollector)
}

func TestGenesisWithoutConfiguration(t *testing.T) {
	db := store.MemStore()
	assert.Nil(t, (&Initializer{}).FromGenesis(quorum.Options{}, db))

	_, err := LoadConfig(db)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestGenesisErrors(t *testing.T) {
	const (
		createKey = `"c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0"`
		member    = `{"key": "0303030303030303030303030303030303030303030303030303030303030303", "permissions": {"mask": 7}}`
	)

	cases := map[string]struct {
		multisigs string
		wantErr   *errors.Error
	}{
		"threshold greater than the member count": {
			multisigs: `[{"create_key": ` + createKey + `, "threshold": 2, "members": [` + member + `]}]`,
			wantErr:   ErrStateInvariant,
		},
		"duplicated create key": {
			multisigs: `[
				{"create_key": ` + createKey + `, "threshold": 1, "members": [` + member + `]},
				{"create_key": ` + createKey + `, "threshold": 1, "members": [` + member + `]}
			]`,
			wantErr: ErrAlreadyInitialized,
		},
		"invalid create key": {
			multisigs: `[{"create_key": "0102", "threshold": 1, "members": [` + member + `]}]`,
			wantErr:   errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			opts := quorum.Options{"multisig": []byte(tc.multisigs)}
			err := (&Initializer{}).FromGenesis(opts, store.MemStore())
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}
