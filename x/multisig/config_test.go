package multisig

import (
	"testing"

	"github.com/iov-one/quorum/coin"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/store"
)

func TestProgramConfigValidate(t *testing.T) {
	cases := map[string]struct {
		conf      ProgramConfig
		wantField string
		wantErr   *errors.Error
	}{
		"valid": {
			conf: ProgramConfig{
				Authority:           quorumtest.SeqAddr(1),
				MultisigCreationFee: coin.NewCoin(0, 1000000, "SOL"),
				Treasury:            quorumtest.SeqAddr(2),
			},
		},
		"no fee": {
			conf: ProgramConfig{
				Authority: quorumtest.SeqAddr(1),
				Treasury:  quorumtest.SeqAddr(2),
			},
		},
		"missing treasury": {
			conf: ProgramConfig{
				Authority: quorumtest.SeqAddr(1),
			},
			wantField: "Treasury",
			wantErr:   errors.ErrInput,
		},
		"invalid fee currency": {
			conf: ProgramConfig{
				Authority:           quorumtest.SeqAddr(1),
				MultisigCreationFee: coin.Coin{Ticker: "s", Amount: 10},
				Treasury:            quorumtest.SeqAddr(2),
			},
			wantField: "MultisigCreationFee",
			wantErr:   errors.ErrCurrency,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.conf.Validate()
			if tc.wantErr == nil {
				assert.Nil(t, err)
				return
			}
			assert.FieldError(t, err, tc.wantField, tc.wantErr)
		})
	}
}

func TestSaveLoadConfig(t *testing.T) {
	db := store.MemStore()

	_, err := LoadConfig(db)
	assert.IsErr(t, errors.ErrNotFound, err)

	conf := &ProgramConfig{
		Authority:           quorumtest.SeqAddr(1),
		MultisigCreationFee: coin.NewCoin(1, 0, "SOL"),
		Treasury:            quorumtest.SeqAddr(2),
	}
	assert.Nil(t, SaveConfig(db, conf))

	got, err := LoadConfig(db)
	assert.Nil(t, err)
	assert.Equal(t, conf, got)

	assert.IsErr(t, errors.ErrInput, SaveConfig(db, &ProgramConfig{}))
}
