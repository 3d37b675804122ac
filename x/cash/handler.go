package cash

import (
	"github.com/iov-one/quorum"
)

// RegisterQuery will register the wallets bucket as "/wallets"
func RegisterQuery(qr quorum.QueryRouter) {
	NewBucket().Register("wallets", qr)
}
