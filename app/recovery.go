package app

import (
	"time"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Recovery is a decorator to recover from panics in transactions,
// so we can log them as errors
type Recovery struct{}

var _ quorum.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (Recovery) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Checker) (_ *quorum.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (Recovery) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (_ *quorum.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}

// Logging is a decorator that logs every processed transaction together
// with its outcome and duration.
type Logging struct{}

var _ quorum.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs the result of the check
func (Logging) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Checker) (*quorum.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	logDuration(ctx, start, "check", err)
	return res, err
}

// Deliver logs the result of the delivery
func (Logging) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (*quorum.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	logDuration(ctx, start, "deliver", err)
	return res, err
}

func logDuration(ctx quorum.Context, start time.Time, call string, err error) {
	logger := quorum.GetLogger(ctx).With("call", call, "duration", time.Since(start)/time.Microsecond)
	if err != nil {
		logger.Error(err.Error())
	} else {
		logger.Info("tx processed")
	}
}
