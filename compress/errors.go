package compress

import (
	"github.com/iov-one/quorum/errors"
)

var (
	// ErrInvalidProof is returned when an address proof cannot be decoded
	// or does not prove what it should.
	ErrInvalidProof = errors.Register(1040, "invalid proof")

	// ErrUnknownRoot is returned when a proof was created against a root
	// that is not in the root history.
	ErrUnknownRoot = errors.Register(1041, "unknown root")
)
