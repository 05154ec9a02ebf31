package utils

import (
	"time"

	"github.com/iov-one/barter"
	"github.com/tendermint/tendermint/libs/log"
)

// Logging writes one log entry per processed transaction with the time it
// took. Failures are logged as errors, successful deliveries as info and
// successful checks as debug.
type Logging struct{}

var _ barter.Decorator = Logging{}

// NewLogging returns a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx barter.Context, store barter.KVStore, tx barter.Tx, next barter.Checker) (*barter.CheckResult, error) {
	started := time.Now()
	res, err := next.Check(ctx, store, tx)
	logger := withDuration(ctx, started)
	if err != nil {
		logger.Error("check failed", "err", err)
	} else {
		logger.Debug(res.Log)
	}
	return res, err
}

func (Logging) Deliver(ctx barter.Context, store barter.KVStore, tx barter.Tx, next barter.Deliverer) (*barter.DeliverResult, error) {
	started := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	logger := withDuration(ctx, started)
	if err != nil {
		logger.Error("deliver failed", "err", err)
	} else {
		logger.Info(res.Log)
	}
	return res, err
}

// withDuration returns the context logger carrying the elapsed time in
// microseconds.
func withDuration(ctx barter.Context, started time.Time) log.Logger {
	return barter.GetLogger(ctx).With("duration", time.Since(started)/time.Microsecond)
}
