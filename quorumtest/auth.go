package quorumtest

import (
	"context"
	"fmt"

	"github.com/iov-one/quorum"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced conditions. Both Signer and
// Signers attributes are considered.
type Auth struct {
	// Signer represents an authentication of a single signer.
	Signer quorum.Condition

	// Signers represents an authentication of multiple signers.
	Signers []quorum.Condition
}

func (a *Auth) GetConditions(quorum.Context) []quorum.Condition {
	if a.Signer != nil {
		return append(a.Signers, a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve permissions.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context. For
	// convenience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetConditions(ctx quorum.Context, permissions ...quorum.Condition) quorum.Context {
	return context.WithValue(ctx, a.Key, permissions)
}

func (a *CtxAuth) GetConditions(ctx quorum.Context) []quorum.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]quorum.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []quorum.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
