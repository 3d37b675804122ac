package app

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Runner executes transactions against a committed store, one at a time.
//
// Every transaction runs on its own cache wrap of the current block state.
// The cache is written only when the handler succeeds and discarded on any
// error, so a failed transaction never leaves a partial change behind.
// Blocks are processed as BeginBlock, any number of DeliverTx, EndBlock and
// Commit.
type Runner struct {
	store   *CommitStore
	init    quorum.Initializer
	handler quorum.Handler
	ticker  quorum.Ticker
	queries quorum.QueryRouter
	logger  log.Logger
	debug   bool

	// chainID is loaded from the store or saved by InitChain.
	chainID string
	// height of the last committed block.
	height int64
	// blockCtx is valid for the current block, reset by BeginBlock.
	blockCtx quorum.Context
}

// NewRunner loads the latest version of given store. Ticker can be nil.
func NewRunner(
	store quorum.CommitKVStore,
	init quorum.Initializer,
	handler quorum.Handler,
	ticker quorum.Ticker,
	queries quorum.QueryRouter,
) (*Runner, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	info, err := cs.CommitInfo()
	if err != nil {
		return nil, errors.Wrap(err, "commit info")
	}
	chainID, err := loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	return &Runner{
		store:   cs,
		init:    init,
		handler: handler,
		ticker:  ticker,
		queries: queries,
		logger:  log.NewNopLogger(),
		chainID: chainID,
		height:  info.Version,
	}, nil
}

// Reload brings the state that extensions keep outside of the commit store
// back to the last committed block. Call it after NewRunner, before the
// first block.
func (r *Runner) Reload(rs ...quorum.Reloader) error {
	db := r.store.committed.CacheWrap()
	defer db.Discard()
	for _, rl := range rs {
		if err := rl.Reload(db); err != nil {
			return errors.Wrap(err, "reload")
		}
	}
	return nil
}

// WithLogger sets the logger passed to all handlers.
func (r *Runner) WithLogger(logger log.Logger) *Runner {
	r.logger = logger
	return r
}

// WithDebug disables redaction of internal errors in results.
func (r *Runner) WithDebug(debug bool) *Runner {
	r.debug = debug
	return r
}

// ChainID returns the chain id or an empty string before InitChain.
func (r *Runner) ChainID() string {
	return r.chainID
}

// Height returns the height of the last committed block.
func (r *Runner) Height() int64 {
	return r.height
}

// InitChain stores the chain id and initializes all extensions from the
// genesis. Nothing is written if any initializer fails.
func (r *Runner) InitChain(gen *Genesis) error {
	if r.chainID != "" {
		return errors.Wrapf(errors.ErrState, "chain %q already initialized", r.chainID)
	}
	cache := r.store.DeliverStore().CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	if r.init != nil {
		if err := r.init.FromGenesis(gen.AppState, cache); err != nil {
			cache.Discard()
			return errors.Wrap(err, "genesis")
		}
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	r.chainID = gen.ChainID
	r.logger.Info("Chain initialized", "chain_id", gen.ChainID)
	return nil
}

// BeginBlock prepares the context for the next block.
func (r *Runner) BeginBlock() error {
	if r.chainID == "" {
		return errors.Wrap(errors.ErrState, "chain not initialized")
	}
	height := r.height + 1
	ctx := quorum.WithLogger(context.Background(), r.logger.With("height", height))
	ctx = quorum.WithChainID(ctx, r.chainID)
	r.blockCtx = quorum.WithHeight(ctx, height)
	return nil
}

// CheckTx validates the transaction against the check state. Successful
// checks are kept so that following checks see them.
func (r *Runner) CheckTx(tx quorum.Tx) TxResult {
	if r.blockCtx == nil {
		return checkResult(nil, errors.Wrap(errors.ErrState, "no block"), r.debug)
	}
	ctx := quorum.WithLogInfo(r.blockCtx, "call", "check_tx", "path", quorum.GetPath(tx))
	cache := r.store.CheckStore().CacheWrap()
	res, err := r.handler.Check(ctx, cache, tx)
	err = finish(cache, err)
	return checkResult(res, err, r.debug)
}

// DeliverTx executes the transaction against the block state.
func (r *Runner) DeliverTx(tx quorum.Tx) TxResult {
	if r.blockCtx == nil {
		return deliverResult(nil, errors.Wrap(errors.ErrState, "no block"), r.debug)
	}
	ctx := quorum.WithLogInfo(r.blockCtx, "call", "deliver_tx", "path", quorum.GetPath(tx))
	cache := r.store.DeliverStore().CacheWrap()
	res, err := r.handler.Deliver(ctx, cache, tx)
	err = finish(cache, err)
	return deliverResult(res, err, r.debug)
}

// finish writes the cache if the transaction succeeded and discards it
// otherwise.
func finish(cache quorum.KVCacheWrap, err error) error {
	if err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write cache")
	}
	return nil
}

// EndBlock runs the ticker against the block state.
func (r *Runner) EndBlock() (quorum.TickResult, error) {
	if r.blockCtx == nil {
		return quorum.TickResult{}, errors.Wrap(errors.ErrState, "no block")
	}
	if r.ticker == nil {
		return quorum.TickResult{}, nil
	}
	ctx := quorum.WithLogInfo(r.blockCtx, "call", "end_block")
	cache := r.store.DeliverStore().CacheWrap()
	res, err := r.ticker.Tick(ctx, cache)
	if err := finish(cache, err); err != nil {
		return quorum.TickResult{}, err
	}
	return res, nil
}

// Commit persists the block state and returns the new version.
func (r *Runner) Commit() (quorum.CommitID, error) {
	id, err := r.store.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	r.height = id.Version
	r.blockCtx = nil
	r.logger.Info("Commit synced", "height", id.Version, "hash", id.Hash)
	return id, nil
}

// Query runs the query registered under given path against the last
// committed state.
func (r *Runner) Query(path, mod string, data []byte) ([]quorum.Model, error) {
	h := r.queries.Handler(path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no query handler for path %q", path)
	}
	db := r.store.committed.CacheWrap()
	defer db.Discard()
	return h.Query(db, mod, data)
}
