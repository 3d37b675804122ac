package multisig

import (
	"github.com/iov-one/quorum/errors"
)

// ABCI Response Codes
// multisig takes 1030-1039
var (
	// ErrInvalidAccount is returned when an account passed along with the
	// message is not the one the program configuration expects.
	ErrInvalidAccount = errors.Register(1030, "invalid account")

	// ErrStateInvariant is returned when the multisig state breaks any of
	// its structural rules.
	ErrStateInvariant = errors.Register(1031, "state invariant violated")

	// ErrAlreadyInitialized is returned when the derived address of a
	// multisig is already taken.
	ErrAlreadyInitialized = errors.Register(1032, "already initialized")

	// ErrTransfer is returned when the creation fee cannot be transferred.
	ErrTransfer = errors.Register(1033, "transfer failed")
)
