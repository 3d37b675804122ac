package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct {
	// Policy every genesis multisig must follow. The zero value
	// enforces only the basic rules.
	Policy Policy
}

var _ quorum.Initializer = (*Initializer)(nil)

// FromGenesis stores the program configuration from conf.multisig and
// creates all multisigs listed under multisig. Both are optional.
func (i *Initializer) FromGenesis(opts quorum.Options, kv quorum.KVStore) error {
	switch err := gconf.InitConfig(kv, opts, configPackage, &ProgramConfig{}); {
	case errors.ErrNotFound.Is(err):
		// Fee aware creation stays unavailable until configured.
	case err != nil:
		return errors.Wrap(err, "program config")
	}

	var multisigs []struct {
		CreateKey       quorum.Address `json:"create_key"`
		ConfigAuthority quorum.Address `json:"config_authority"`
		Threshold       uint16         `json:"threshold"`
		Members         []Member       `json:"members"`
		TimeLock        uint32         `json:"time_lock"`
		RentCollector   quorum.Address `json:"rent_collector"`
	}
	if err := opts.ReadOptions("multisig", &multisigs); err != nil {
		return err
	}

	bucket := NewBucket()
	for n, ms := range multisigs {
		addr, bump, err := DeriveAddress(DefaultProgramID, ms.CreateKey)
		if err != nil {
			return errors.Wrapf(err, "multisig #%d", n)
		}
		m := Multisig{
			CreateKey:       ms.CreateKey,
			ConfigAuthority: ms.ConfigAuthority,
			Threshold:       ms.Threshold,
			TimeLock:        ms.TimeLock,
			RentCollector:   ms.RentCollector,
			Bump:            bump,
			Members:         NormalizeMembers(ms.Members),
		}
		if m.ConfigAuthority == nil {
			m.ConfigAuthority = quorum.ZeroAddress()
		}
		if err := m.Invariant(i.Policy); err != nil {
			return errors.Wrapf(err, "multisig #%d", n)
		}
		if err := bucket.Create(kv, addr, &m); err != nil {
			if errors.ErrDuplicate.Is(err) {
				err = ErrAlreadyInitialized
			}
			return errors.Wrapf(err, "cannot save #%d multisig", n)
		}
	}
	return nil
}
