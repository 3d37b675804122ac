package multisig

import (
	"fmt"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/compress"
	"github.com/iov-one/quorum/errors"
)

const (
	pathCreateMsg           = "multisig/create"
	pathCreateV2Msg         = "multisig/create_v2"
	pathCreateCompressedMsg = "multisig/create_compressed"
)

var (
	createMsgDiscriminator           = discriminator("global", "multisig_create")
	createV2MsgDiscriminator         = discriminator("global", "multisig_create_v2")
	createCompressedMsgDiscriminator = discriminator("global", "multisig_create_compressed")
)

// CreateArgs is the configuration of a new multisig, shared by all
// creation messages.
type CreateArgs struct {
	// ConfigAuthority can reconfigure the multisig. Leave empty for an
	// autonomous multisig.
	ConfigAuthority quorum.Address
	// Threshold is the number of approvals required to execute.
	Threshold uint16
	// Members in any order.
	Members []Member
	// TimeLock is the number of seconds between approval and execution.
	TimeLock uint32
	// RentCollector receives reclaimed rent. Leave empty to turn the
	// reclamation off.
	RentCollector quorum.Address
	// Memo is used for indexing only and it is never stored.
	Memo *string
}

// validate checks that all identities are well formed. Threshold and
// member set rules are checked against the normalized multisig.
func (a *CreateArgs) validate() error {
	var errs error
	if a.ConfigAuthority != nil {
		errs = errors.AppendField(errs, "ConfigAuthority", a.ConfigAuthority.Validate())
	}
	if a.RentCollector != nil {
		errs = errors.AppendField(errs, "RentCollector", a.RentCollector.Validate())
	}
	if len(a.Members) == 0 {
		errs = errors.AppendField(errs, "Members", errors.ErrEmpty)
	}
	for i, m := range a.Members {
		errs = errors.Append(errs, errors.Field(fmt.Sprintf("Members.%d.Key", i), m.Key.Validate(), ""))
	}
	return errs
}

func (a *CreateArgs) write(w *borshWriter) {
	w.optionalKey(a.ConfigAuthority)
	w.put(a.Threshold)
	w.members(a.Members)
	w.put(a.TimeLock)
	w.optionalKey(a.RentCollector)
	w.optionalString(a.Memo)
}

func (a *CreateArgs) read(r *borshReader) {
	a.ConfigAuthority = r.optionalKey()
	r.get(&a.Threshold)
	a.Members = r.members()
	r.get(&a.TimeLock)
	a.RentCollector = r.optionalKey()
	a.Memo = r.optionalString()
}

// memo returns the memo text or an empty string.
func (a *CreateArgs) memo() string {
	if a.Memo == nil {
		return ""
	}
	return *a.Memo
}

func validateSigners(createKey, creator quorum.Address) error {
	var errs error
	errs = errors.AppendField(errs, "CreateKey", createKey.Validate())
	errs = errors.AppendField(errs, "Creator", creator.Validate())
	return errs
}

// CreateMsg creates a multisig without paying the creation fee.
//
// Deprecated: use CreateV2Msg.
type CreateMsg struct {
	// CreateKey must sign the transaction.
	CreateKey quorum.Address
	// Creator must sign the transaction.
	Creator quorum.Address
	CreateArgs
}

var _ quorum.Msg = (*CreateMsg)(nil)

func (CreateMsg) Path() string {
	return pathCreateMsg
}

func (m *CreateMsg) Validate() error {
	return errors.Append(validateSigners(m.CreateKey, m.Creator), m.CreateArgs.validate())
}

func (m *CreateMsg) Marshal() ([]byte, error) {
	w := newBorshWriter()
	w.put(createMsgDiscriminator)
	w.key(m.CreateKey)
	w.key(m.Creator)
	m.CreateArgs.write(w)
	return w.bytes()
}

func (m *CreateMsg) Unmarshal(raw []byte) error {
	var res CreateMsg
	r := newBorshReader(raw)
	r.prefix(createMsgDiscriminator)
	res.CreateKey = r.key()
	res.Creator = r.key()
	res.CreateArgs.read(r)
	if err := r.done(); err != nil {
		return err
	}
	*m = res
	return nil
}

// CreateV2Msg creates a multisig and pays the creation fee to the treasury.
type CreateV2Msg struct {
	// CreateKey must sign the transaction.
	CreateKey quorum.Address
	// Creator must sign the transaction. It pays the creation fee.
	Creator quorum.Address
	// Treasury must be the treasury of the program configuration.
	Treasury quorum.Address
	CreateArgs
}

var _ quorum.Msg = (*CreateV2Msg)(nil)

func (CreateV2Msg) Path() string {
	return pathCreateV2Msg
}

func (m *CreateV2Msg) Validate() error {
	errs := validateSigners(m.CreateKey, m.Creator)
	errs = errors.AppendField(errs, "Treasury", m.Treasury.Validate())
	return errors.Append(errs, m.CreateArgs.validate())
}

func (m *CreateV2Msg) Marshal() ([]byte, error) {
	w := newBorshWriter()
	w.put(createV2MsgDiscriminator)
	w.key(m.CreateKey)
	w.key(m.Creator)
	w.key(m.Treasury)
	m.CreateArgs.write(w)
	return w.bytes()
}

func (m *CreateV2Msg) Unmarshal(raw []byte) error {
	var res CreateV2Msg
	r := newBorshReader(raw)
	r.prefix(createV2MsgDiscriminator)
	res.CreateKey = r.key()
	res.Creator = r.key()
	res.Treasury = r.key()
	res.CreateArgs.read(r)
	if err := r.done(); err != nil {
		return err
	}
	*m = res
	return nil
}

// CreateCompressedMsg creates a multisig stored as a compressed account and
// pays the creation fee to the treasury.
type CreateCompressedMsg struct {
	// CreateKey must sign the transaction.
	CreateKey quorum.Address
	// Creator must sign the transaction. It pays the creation fee.
	Creator quorum.Address
	// Treasury must be the treasury of the program configuration.
	Treasury quorum.Address
	// AddressTree is the identity of the address tree the multisig
	// address is derived for.
	AddressTree quorum.Address
	// Proof proves that the multisig address is not present in the
	// address tree.
	Proof compress.AddressProof
	CreateArgs
}

var _ quorum.Msg = (*CreateCompressedMsg)(nil)

func (CreateCompressedMsg) Path() string {
	return pathCreateCompressedMsg
}

func (m *CreateCompressedMsg) Validate() error {
	errs := validateSigners(m.CreateKey, m.Creator)
	errs = errors.AppendField(errs, "Treasury", m.Treasury.Validate())
	errs = errors.AppendField(errs, "AddressTree", m.AddressTree.Validate())
	errs = errors.AppendField(errs, "Proof", m.Proof.Validate())
	return errors.Append(errs, m.CreateArgs.validate())
}

func (m *CreateCompressedMsg) Marshal() ([]byte, error) {
	w := newBorshWriter()
	w.put(createCompressedMsgDiscriminator)
	w.key(m.CreateKey)
	w.key(m.Creator)
	w.key(m.Treasury)
	w.key(m.AddressTree)
	w.put(m.Proof)
	m.CreateArgs.write(w)
	return w.bytes()
}

func (m *CreateCompressedMsg) Unmarshal(raw []byte) error {
	var res CreateCompressedMsg
	r := newBorshReader(raw)
	r.prefix(createCompressedMsgDiscriminator)
	res.CreateKey = r.key()
	res.Creator = r.key()
	res.Treasury = r.key()
	res.AddressTree = r.key()
	r.get(&res.Proof)
	res.CreateArgs.read(r)
	if err := r.done(); err != nil {
		return err
	}
	*m = res
	return nil
}
