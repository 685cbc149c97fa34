package utils

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// Recovery turns a panic anywhere below it into an ErrPanic result and
// logs it with the path of the failing transaction. It belongs right
// below Logging, so that the resulting error is logged as well.
type Recovery struct{}

var _ crowdfund.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Checker) (res *crowdfund.CheckResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, panicked(ctx, tx, r)
		}
	}()
	return next.Check(ctx, store, tx)
}

func (Recovery) Deliver(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Deliverer) (res *crowdfund.DeliverResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, panicked(ctx, tx, r)
		}
	}()
	return next.Deliver(ctx, store, tx)
}

func panicked(ctx crowdfund.Context, tx crowdfund.Tx, r interface{}) error {
	err := errors.Wrapf(errors.ErrPanic, "%v", r)
	crowdfund.GetLogger(ctx).Error("Transaction panicked",
		"path", crowdfund.GetPath(tx),
		"panic", r)
	return err
}
