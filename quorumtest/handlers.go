package quorumtest

import "github.com/iov-one/quorum"

// Handler is a mock implementation of the quorum.Handler interface. It
// returns preconfigured results and counts calls. When Write is set the key
// value pair is written to the store on every call, which allows testing
// rollback behaviour.
type Handler struct {
	checkCall   int
	CheckResult quorum.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult quorum.DeliverResult
	DeliverErr    error

	Write *KV
}

// KV is a key value pair written by the Handler mock.
type KV struct {
	Key   []byte
	Value []byte
}

var _ quorum.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	h.checkCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	h.deliverCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) write(db quorum.KVStore) error {
	if h.Write == nil {
		return nil
	}
	return db.Set(h.Write.Key, h.Write.Value)
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
