package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/x/multisig"
)

func TestLoadGenesis(t *testing.T) {
	cases := map[string]struct {
		content string
		wantErr *errors.Error
	}{
		"valid genesis": {
			content: `{
				"chain_id": "quorum-test",
				"app_state": {
					"conf": {"multisig": {"multisig_creation_fee": "0.001 SOL"}}
				}
			}`,
		},
		"invalid chain id": {
			content: `{"chain_id": "x", "app_state": {}}`,
			wantErr: errors.ErrInput,
		},
		"not a json": {
			content: `chain_id = "quorum-test"`,
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(tc.content), 0600); err != nil {
				t.Fatalf("cannot write genesis: %s", err)
			}
			gen, err := LoadGenesis(path)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			assert.Equal(t, "quorum-test", gen.ChainID)

			var conf map[string]multisig.ProgramConfig
			assert.Nil(t, gen.AppState.ReadOptions("conf", &conf))
			assert.Equal(t, uint64(1000000), conf["multisig"].MultisigCreationFee.Amount)
		})
	}
}

func TestLoadGenesisMissingFile(t *testing.T) {
	_, err := LoadGenesis(filepath.Join(t.TempDir(), "missing.json"))
	assert.IsErr(t, errors.ErrInput, err)
}
