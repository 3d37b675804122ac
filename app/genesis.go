package app

import (
	"encoding/json"
	"os"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Genesis file format, designed to be overlayed with tendermint genesis
type Genesis struct {
	ChainID  string         `json:"chain_id"`
	AppState quorum.Options `json:"app_state"`
}

// LoadGenesis reads the genesis file at given path.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot read genesis file: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot decode genesis file: %s", err)
	}
	if !quorum.IsValidChainID(gen.ChainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %q", gen.ChainID)
	}
	return &gen, nil
}
