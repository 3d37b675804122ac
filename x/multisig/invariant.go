package multisig

import (
	"bytes"
	"fmt"
	"math"

	"github.com/iov-one/quorum/errors"
)

const (
	// MaxMembers is the hard limit of members. Member count must always
	// be representable by the threshold type.
	MaxMembers = math.MaxUint16

	// MaxTimeLock is three months, in seconds.
	MaxTimeLock uint32 = 3 * 30 * 24 * 60 * 60
)

// Policy configures the structural rules a multisig must follow in
// addition to the basic ones that are always enforced: a threshold between
// one and the number of members, and members in strictly ascending order.
//
// The zero value enforces only the basic rules and the MaxMembers limit.
type Policy struct {
	// MaxMembers limits the number of members. Zero or anything above
	// MaxMembers means MaxMembers.
	MaxMembers int `json:"max_members"`
	// MaxTimeLock limits the time lock. Zero means no limit.
	MaxTimeLock uint32 `json:"max_time_lock"`
	// RequireProposer requires at least one member with the initiate
	// permission.
	RequireProposer bool `json:"require_proposer"`
	// RequireExecutor requires at least one member with the execute
	// permission.
	RequireExecutor bool `json:"require_executor"`
	// VotingThreshold counts the threshold against the members with the
	// vote permission instead of all members.
	VotingThreshold bool `json:"voting_threshold"`
}

// DefaultPolicy returns the rules every multisig created by the handlers
// of this package must follow unless configured otherwise.
func DefaultPolicy() Policy {
	return Policy{
		MaxMembers:  MaxMembers,
		MaxTimeLock: MaxTimeLock,
	}
}

// StrictPolicy extends the default policy with all permission coverage
// rules.
func StrictPolicy() Policy {
	p := DefaultPolicy()
	p.RequireProposer = true
	p.RequireExecutor = true
	p.VotingThreshold = true
	return p
}

func (p Policy) maxMembers() int {
	if p.MaxMembers <= 0 || p.MaxMembers > MaxMembers {
		return MaxMembers
	}
	return p.MaxMembers
}

// Invariant checks the structural consistency of the multisig. All
// violations are reported as field errors of ErrStateInvariant.
func (m *Multisig) Invariant(p Policy) error {
	var errs error
	n := len(m.Members)

	if max := p.maxMembers(); n > max {
		errs = errors.Append(errs, errors.Field("Members", ErrStateInvariant,
			"%d members exceed the limit of %d", n, max))
	}

	switch {
	case m.Threshold == 0:
		errs = errors.Append(errs, errors.Field("Threshold", ErrStateInvariant,
			"must be greater than zero"))
	case int(m.Threshold) > n:
		errs = errors.Append(errs, errors.Field("Threshold", ErrStateInvariant,
			"%d is greater than the number of members %d", m.Threshold, n))
	}

	for i := 1; i < n; i++ {
		switch c := bytes.Compare(m.Members[i-1].Key, m.Members[i].Key); {
		case c == 0:
			errs = errors.Append(errs, errors.Field(fmt.Sprintf("Members.%d.Key", i), ErrStateInvariant,
				"duplicated member %s", m.Members[i].Key))
		case c > 0:
			errs = errors.Append(errs, errors.Field(fmt.Sprintf("Members.%d.Key", i), ErrStateInvariant,
				"members not sorted"))
		}
	}

	var proposers, voters, executors int
	for i, mb := range m.Members {
		if mb.Permissions.Mask&^PermFull != 0 {
			errs = errors.Append(errs, errors.Field(fmt.Sprintf("Members.%d.Permissions", i), ErrStateInvariant,
				"unknown permission bits %b", mb.Permissions.Mask))
		}
		if mb.Permissions.Has(PermInitiate) {
			proposers++
		}
		if mb.Permissions.Has(PermVote) {
			voters++
		}
		if mb.Permissions.Has(PermExecute) {
			executors++
		}
	}

	if m.StaleTransactionIndex > m.TransactionIndex {
		errs = errors.Append(errs, errors.Field("StaleTransactionIndex", ErrStateInvariant,
			"%d is greater than the transaction index %d", m.StaleTransactionIndex, m.TransactionIndex))
	}
	if p.MaxTimeLock != 0 && m.TimeLock > p.MaxTimeLock {
		errs = errors.Append(errs, errors.Field("TimeLock", ErrStateInvariant,
			"%d seconds exceed the limit of %d", m.TimeLock, p.MaxTimeLock))
	}

	if p.RequireProposer && proposers == 0 {
		errs = errors.Append(errs, errors.Field("Members", ErrStateInvariant,
			"no member can initiate"))
	}
	if p.RequireExecutor && executors == 0 {
		errs = errors.Append(errs, errors.Field("Members", ErrStateInvariant,
			"no member can execute"))
	}
	if p.VotingThreshold && m.Threshold != 0 && int(m.Threshold) > voters {
		errs = errors.Append(errs, errors.Field("Threshold", ErrStateInvariant,
			"%d is greater than the number of voters %d", m.Threshold, voters))
	}
	return errs
}
