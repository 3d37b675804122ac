package compress

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/iavl"
)

var cdc = amino.NewCodec()

// AddressProof proves that an address is not present in the address tree
// at given version.
type AddressProof struct {
	// Version of the address tree the proof was created for.
	Version int64
	// Root is the hash of the address tree at that version.
	Root []byte
	// Proof is the amino encoded iavl range proof.
	Proof []byte
}

func (p *AddressProof) Validate() error {
	var errs error
	if p.Version <= 0 {
		errs = errors.AppendField(errs, "Version", errors.ErrInput)
	}
	if len(p.Root) == 0 {
		errs = errors.AppendField(errs, "Root", errors.ErrEmpty)
	}
	if len(p.Proof) == 0 {
		errs = errors.AppendField(errs, "Proof", errors.ErrEmpty)
	}
	return errs
}

// newAddressProof serializes given range proof.
func newAddressProof(version int64, root []byte, proof *iavl.RangeProof) (*AddressProof, error) {
	raw, err := cdc.MarshalBinaryLengthPrefixed(proof)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidProof, "cannot encode: %s", err)
	}
	return &AddressProof{
		Version: version,
		Root:    root,
		Proof:   raw,
	}, nil
}

// VerifyAbsence checks that the proof is valid for its root and that it
// proves the absence of given address.
func (p *AddressProof) VerifyAbsence(addr quorum.Address) error {
	if err := p.Validate(); err != nil {
		return errors.Wrap(ErrInvalidProof, err.Error())
	}
	var proof iavl.RangeProof
	if err := cdc.UnmarshalBinaryLengthPrefixed(p.Proof, &proof); err != nil {
		return errors.Wrapf(ErrInvalidProof, "cannot decode: %s", err)
	}
	if err := proof.Verify(p.Root); err != nil {
		return errors.Wrapf(ErrInvalidProof, "root: %s", err)
	}
	if err := proof.VerifyAbsence(addr); err != nil {
		return errors.Wrapf(ErrInvalidProof, "absence of %s: %s", addr, err)
	}
	return nil
}

// sameRoot returns true if the proof was created for given root.
func (p *AddressProof) sameRoot(r *RootRecord) bool {
	return p.Version == r.Version && bytes.Equal(p.Root, r.AddressRoot)
}

func (p *AddressProof) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(*p); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

func (p *AddressProof) Unmarshal(raw []byte) error {
	var res AddressProof
	if err := bin.NewBorshDecoder(raw).Decode(&res); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*p = res
	return nil
}
