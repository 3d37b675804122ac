package multisig

import (
	"fmt"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/compress"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/cash"
)

const creationCost int64 = 100

// DeprecationWarning is logged and returned by every successful legacy
// multisig creation.
const DeprecationWarning = "WARNING: This instruction is deprecated and will be removed soon. " +
	"Please use `multisig_create_v2` to ensure future compatibility."

// createVersion selects the variant of the creation pipeline.
type createVersion uint8

const (
	versionLegacy createVersion = iota + 1
	versionV2
	versionCompressed
)

func (v createVersion) String() string {
	switch v {
	case versionLegacy:
		return "legacy"
	case versionV2:
		return "v2"
	case versionCompressed:
		return "compressed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// RegisterRoutes will instantiate and register all handlers in this
// package. The compressed creation is only registered if a compressed store
// is provided.
func RegisterRoutes(r quorum.Registry, auth x.Authenticator, policy Policy, store *compress.Store, ctrl cash.Controller) {
	direct := directCommitter{bucket: NewBucket()}
	fees := &feeTransfer{ctrl: ctrl}

	r.Handle(pathCreateMsg, newCreateHandler(versionLegacy, auth, policy, direct, nil))
	r.Handle(pathCreateV2Msg, newCreateHandler(versionV2, auth, policy, direct, fees))
	if store != nil {
		compressed := compressedCommitter{programID: DefaultProgramID, store: store}
		r.Handle(pathCreateCompressedMsg, newCreateHandler(versionCompressed, auth, policy, compressed, fees))
	}
}

// RegisterQuery register queries from buckets in this package.
func RegisterQuery(qr quorum.QueryRouter) {
	NewBucket().Register("multisigs", qr)
}

// createRequest is the content of any creation message.
type createRequest struct {
	createKey   quorum.Address
	creator     quorum.Address
	treasury    quorum.Address
	addressTree quorum.Address
	proof       *compress.AddressProof
	args        CreateArgs
}

// CreateHandler creates multisig accounts. All creation messages are
// processed by the same pipeline, the version only decides where the
// multisig is stored and whether the creation fee is paid.
type CreateHandler struct {
	version   createVersion
	auth      x.Authenticator
	policy    Policy
	programID quorum.Address
	committer committer
	// fees is nil for the versions that do not pay the creation fee.
	fees *feeTransfer
}

var _ quorum.Handler = CreateHandler{}

func newCreateHandler(v createVersion, auth x.Authenticator, policy Policy, c committer, fees *feeTransfer) CreateHandler {
	return CreateHandler{
		version:   v,
		auth:      auth,
		policy:    policy,
		programID: DefaultProgramID,
		committer: c,
		fees:      fees,
	}
}

func (h CreateHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	p, err := h.prepare(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.committer.Check(db, p.req, p.addr); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{GasAllocated: creationCost}, nil
}

func (h CreateHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	p, err := h.prepare(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.committer.Commit(db, p.req, p.addr, p.multisig); err != nil {
		return nil, err
	}

	logger := quorum.GetLogger(ctx).With("multisig", p.addr, "version", h.version)
	res := &quorum.DeliverResult{
		Data: p.addr,
		// Allocated account size is charged on top of the creation cost.
		GasUsed: creationCost + int64(p.multisig.Size()),
	}

	// Fee transfer must stay the last step that modifies the state.
	if h.fees != nil {
		fee, err := h.fees.Transfer(ctx, db, p.conf, p.req.creator)
		if err != nil {
			return nil, err
		}
		if !fee.IsZero() {
			res.Log = fmt.Sprintf("Creation fee: %d", fee.Whole())
		}
	}
	if h.version == versionLegacy {
		logger.Info(DeprecationWarning)
		res.Log = DeprecationWarning
	}

	logger.Info("Multisig created",
		"threshold", p.multisig.Threshold,
		"members", len(p.multisig.Members),
		"memo", p.req.args.memo())
	return res, nil
}

// prepared is a multisig that passed all checks, ready to be committed.
type prepared struct {
	req      *createRequest
	multisig *Multisig
	addr     quorum.Address
	conf     *ProgramConfig
}

// prepare does all the processing common to Check and Deliver. It never
// modifies the state.
func (h CreateHandler) prepare(ctx quorum.Context, db quorum.ReadOnlyKVStore, tx quorum.Tx) (*prepared, error) {
	req, err := h.load(tx)
	if err != nil {
		return nil, err
	}

	// Both the create key and the creator must sign.
	if missing := x.MissingSigners(ctx, h.auth, req.createKey, req.creator); len(missing) != 0 {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "missing signature of %s", missing[0])
	}

	var conf *ProgramConfig
	if h.fees != nil {
		if conf, err = LoadConfig(db); err != nil {
			return nil, err
		}
		if err := h.fees.Check(db, conf, req.creator, req.treasury); err != nil {
			return nil, err
		}
	}

	members := NormalizeMembers(req.args.Members)

	pda, bump, err := DeriveAddress(h.programID, req.createKey)
	if err != nil {
		return nil, err
	}
	addr, err := h.committer.Target(req, pda)
	if err != nil {
		return nil, err
	}

	m := &Multisig{
		CreateKey:             req.createKey,
		ConfigAuthority:       req.args.ConfigAuthority,
		Threshold:             req.args.Threshold,
		TimeLock:              req.args.TimeLock,
		TransactionIndex:      0,
		StaleTransactionIndex: 0,
		RentCollector:         req.args.RentCollector,
		Bump:                  bump,
		Members:               members,
	}
	if m.ConfigAuthority == nil {
		m.ConfigAuthority = quorum.ZeroAddress()
	}
	if err := m.Invariant(h.policy); err != nil {
		return nil, err
	}

	return &prepared{
		req:      req,
		multisig: m,
		addr:     addr,
		conf:     conf,
	}, nil
}

// load returns the content of the message of the handled version.
func (h CreateHandler) load(tx quorum.Tx) (*createRequest, error) {
	switch h.version {
	case versionLegacy:
		var msg CreateMsg
		if err := quorum.LoadMsg(tx, &msg); err != nil {
			return nil, errors.Wrap(err, "load msg")
		}
		return &createRequest{
			createKey: msg.CreateKey,
			creator:   msg.Creator,
			args:      msg.CreateArgs,
		}, nil
	case versionV2:
		var msg CreateV2Msg
		if err := quorum.LoadMsg(tx, &msg); err != nil {
			return nil, errors.Wrap(err, "load msg")
		}
		return &createRequest{
			createKey: msg.CreateKey,
			creator:   msg.Creator,
			treasury:  msg.Treasury,
			args:      msg.CreateArgs,
		}, nil
	case versionCompressed:
		var msg CreateCompressedMsg
		if err := quorum.LoadMsg(tx, &msg); err != nil {
			return nil, errors.Wrap(err, "load msg")
		}
		return &createRequest{
			createKey:   msg.CreateKey,
			creator:     msg.Creator,
			treasury:    msg.Treasury,
			addressTree: msg.AddressTree,
			proof:       &msg.Proof,
			args:        msg.CreateArgs,
		}, nil
	default:
		return nil, errors.Wrapf(errors.ErrHuman, "unknown version %s", h.version)
	}
}
