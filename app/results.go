package app

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// TxResult is the outcome of a single transaction, as it would be returned
// to the client.
type TxResult struct {
	// Code is zero on success, otherwise the code of the error.
	Code uint32
	// Log is the human readable result, or the error message.
	Log       string
	Data      []byte
	GasWanted int64
	GasUsed   int64
}

// IsErr returns true if the transaction failed.
func (r TxResult) IsErr() bool {
	return r.Code != errors.SuccessABCICode
}

// checkResult converts the result of the check into a TxResult. Unless
// running in debug mode, internal errors are redacted.
func checkResult(res *quorum.CheckResult, err error, debug bool) TxResult {
	if err != nil {
		code, log := errors.ABCIInfo(err, debug)
		return TxResult{Code: code, Log: log}
	}
	return TxResult{
		Data:      res.Data,
		Log:       res.Log,
		GasWanted: res.GasAllocated,
	}
}

// deliverResult converts the result of the delivery into a TxResult.
// Unless running in debug mode, internal errors are redacted.
func deliverResult(res *quorum.DeliverResult, err error, debug bool) TxResult {
	if err != nil {
		code, log := errors.ABCIInfo(err, debug)
		return TxResult{Code: code, Log: log}
	}
	return TxResult{
		Data:    res.Data,
		Log:     res.Log,
		GasUsed: res.GasUsed,
	}
}
