package weavetest

import "github.com/iov-one/crowdfund"

// Decorator is a mock implementation of the crowdfund.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding method.
// If error attributes are not set then wrapped handler method is called and
// its result returned.
// Each method call is counted. Regardless of the method call result the
// counter is incremented.
type Decorator struct {
	checkCall int
	// CheckErr if set is returned by the Check method before calling
	// the wrapped handler.
	CheckErr error

	deliverCall int
	// DeliverErr if set is returned by the Deliver method before calling
	// the wrapped handler.
	DeliverErr error
}

var _ crowdfund.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Checker) (*crowdfund.CheckResult, error) {
	d.checkCall++

	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Deliverer) (*crowdfund.DeliverResult, error) {
	d.deliverCall++

	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate wraps a handler with a single decorator.
func Decorate(h crowdfund.Handler, d crowdfund.Decorator) crowdfund.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn crowdfund.Handler
	dc crowdfund.Decorator
}

var _ crowdfund.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
