package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/coin"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
)

// configPackage is the name the program configuration is stored under.
const configPackage = "multisig"

// ProgramConfig is the global configuration of the multisig program.
type ProgramConfig struct {
	// Authority can change the configuration.
	Authority quorum.Address `json:"authority"`
	// MultisigCreationFee is paid by the creator of every multisig created
	// with a fee aware message. Zero fee disables the transfer.
	MultisigCreationFee coin.Coin `json:"multisig_creation_fee"`
	// Treasury receives the creation fee.
	Treasury quorum.Address `json:"treasury"`
}

var _ gconf.Configuration = (*ProgramConfig)(nil)

func (c *ProgramConfig) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Authority", c.Authority.Validate())
	errs = errors.AppendField(errs, "Treasury", c.Treasury.Validate())
	if fee := c.MultisigCreationFee; !fee.IsZero() || fee.Ticker != "" {
		errs = errors.AppendField(errs, "MultisigCreationFee", fee.Validate())
	}
	return errs
}

func (c *ProgramConfig) Marshal() ([]byte, error) {
	w := newBorshWriter()
	w.key(c.Authority)
	w.put(c.MultisigCreationFee)
	w.key(c.Treasury)
	return w.bytes()
}

func (c *ProgramConfig) Unmarshal(raw []byte) error {
	var res ProgramConfig
	r := newBorshReader(raw)
	res.Authority = r.key()
	r.get(&res.MultisigCreationFee)
	res.Treasury = r.key()
	if err := r.done(); err != nil {
		return err
	}
	*c = res
	return nil
}

// LoadConfig returns the program configuration. It fails with ErrNotFound
// if the configuration was never saved.
func LoadConfig(db gconf.ReadStore) (*ProgramConfig, error) {
	var conf ProgramConfig
	if err := gconf.Load(db, configPackage, &conf); err != nil {
		return nil, errors.Wrap(err, "program config")
	}
	return &conf, nil
}

// SaveConfig validates and stores the program configuration.
func SaveConfig(db gconf.Store, conf *ProgramConfig) error {
	return gconf.Save(db, configPackage, conf)
}
