package x

import (
	"github.com/iov-one/quorum"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding a signature scheme for all extensions.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want GetAddresses helper
	GetConditions(quorum.Context) []quorum.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(quorum.Context, quorum.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators
func (m MultiAuth) GetConditions(ctx quorum.Context) []quorum.Condition {
	var res []quorum.Condition
	for _, impl := range m.impls {
		res = append(res, impl.GetConditions(ctx)...)
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the GetConditions method of any Authenticator
func GetAddresses(ctx quorum.Context, auth Authenticator) []quorum.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]quorum.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// MainSigner returns the first permission if any, otherwise nil
func MainSigner(ctx quorum.Context, auth Authenticator) quorum.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx quorum.Context, auth Authenticator, required ...quorum.Address) bool {
	return len(MissingSigners(ctx, auth, required...)) == 0
}

// MissingSigners returns all addresses from required that are not
// authenticated in given context, in the order they were given.
func MissingSigners(ctx quorum.Context, auth Authenticator, required ...quorum.Address) []quorum.Address {
	var missing []quorum.Address
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			missing = append(missing, r)
		}
	}
	return missing
}
