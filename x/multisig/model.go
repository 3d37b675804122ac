package multisig

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

// BucketName is where we store the multisig accounts.
const BucketName = "msig"

// Member permission bits.
const (
	PermInitiate uint8 = 1 << iota
	PermVote
	PermExecute

	PermFull = PermInitiate | PermVote | PermExecute
)

// Permissions is the bit mask of actions a member is allowed to take.
type Permissions struct {
	Mask uint8 `json:"mask"`
}

// Has returns true if all bits of perm are set.
func (p Permissions) Has(perm uint8) bool {
	return p.Mask&perm == perm
}

// Member is a participant of a multisig.
type Member struct {
	Key         quorum.Address `json:"key"`
	Permissions Permissions    `json:"permissions"`
}

// Multisig is the state of a single multisig account. It is stored under
// the address derived from its create key.
type Multisig struct {
	// CreateKey is the one time key the address of this multisig is
	// derived from.
	CreateKey quorum.Address
	// ConfigAuthority can reconfigure the multisig. A zero address
	// marks an autonomous multisig.
	ConfigAuthority quorum.Address
	// Threshold is the number of approvals required to execute.
	Threshold uint16
	// TimeLock is the number of seconds between approval and execution.
	TimeLock uint32
	// TransactionIndex is the index of the last created transaction.
	TransactionIndex uint64
	// StaleTransactionIndex marks all transactions up to this index as
	// stale.
	StaleTransactionIndex uint64
	// RentCollector receives reclaimed rent. Nil turns reclamation off.
	RentCollector quorum.Address
	// Bump is the seed used to derive the address off the curve.
	Bump uint8
	// Members are sorted ascending by key.
	Members []Member
}

var _ orm.Model = (*Multisig)(nil)

var multisigDiscriminator = discriminator("account", "Multisig")

const memberSize = quorum.AddressLength + 1

// Size returns the number of bytes allocated for a multisig account with
// given number of members.
func Size(members int, rentCollector bool) int {
	size := 8 + // discriminator
		quorum.AddressLength + // create key
		quorum.AddressLength + // config authority
		2 + // threshold
		4 + // time lock
		8 + // transaction index
		8 + // stale transaction index
		1 + // rent collector option
		1 + // bump
		4 + // members vector length
		members*memberSize
	if rentCollector {
		size += quorum.AddressLength
	}
	return size
}

// Size returns the allocation size of this multisig.
func (m *Multisig) Size() int {
	return Size(len(m.Members), m.RentCollector != nil)
}

// Validate ensures all identities are well formed. Structural rules are
// checked by Invariant.
func (m *Multisig) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "CreateKey", m.CreateKey.Validate())
	errs = errors.AppendField(errs, "ConfigAuthority", m.ConfigAuthority.Validate())
	if m.RentCollector != nil {
		errs = errors.AppendField(errs, "RentCollector", m.RentCollector.Validate())
	}
	if len(m.Members) == 0 {
		errs = errors.AppendField(errs, "Members", errors.ErrEmpty)
	}
	for i, mb := range m.Members {
		errs = errors.Append(errs, errors.Field(fmt.Sprintf("Members.%d.Key", i), mb.Key.Validate(), ""))
	}
	return errs
}

// Marshal returns the account data: the discriminator followed by all
// fields in their fixed order.
func (m *Multisig) Marshal() ([]byte, error) {
	w := newBorshWriter()
	w.put(multisigDiscriminator)
	w.key(m.CreateKey)
	w.key(m.ConfigAuthority)
	w.put(m.Threshold)
	w.put(m.TimeLock)
	w.put(m.TransactionIndex)
	w.put(m.StaleTransactionIndex)
	w.optionalKey(m.RentCollector)
	w.put(m.Bump)
	w.members(m.Members)
	return w.bytes()
}

func (m *Multisig) Unmarshal(raw []byte) error {
	var res Multisig
	r := newBorshReader(raw)
	r.prefix(multisigDiscriminator)
	res.CreateKey = r.key()
	res.ConfigAuthority = r.key()
	r.get(&res.Threshold)
	r.get(&res.TimeLock)
	r.get(&res.TransactionIndex)
	r.get(&res.StaleTransactionIndex)
	res.RentCollector = r.optionalKey()
	r.get(&res.Bump)
	res.Members = r.members()
	if err := r.done(); err != nil {
		return err
	}
	*m = res
	return nil
}

// IsAutonomous returns true if nobody can reconfigure this multisig.
func (m *Multisig) IsAutonomous() bool {
	return m.ConfigAuthority.IsZero()
}

// MemberIndex returns the position of the member with given key. Members
// must be in canonical order.
func (m *Multisig) MemberIndex(key quorum.Address) (int, bool) {
	i := sort.Search(len(m.Members), func(i int) bool {
		return bytes.Compare(m.Members[i].Key, key) >= 0
	})
	if i < len(m.Members) && m.Members[i].Key.Equals(key) {
		return i, true
	}
	return -1, false
}

// IsMember returns true if given key belongs to one of the members.
func (m *Multisig) IsMember(key quorum.Address) bool {
	_, ok := m.MemberIndex(key)
	return ok
}

// NewBucket returns a bucket for storing multisig accounts, keyed by their
// derived address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Multisig{})
}
