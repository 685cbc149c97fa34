package weavetest

import "github.com/iov-one/crowdfund"

// Handler is a mock implementation of the crowdfund.Handler interface.
// Each method call is counted.
type Handler struct {
	checkCall   int
	CheckResult crowdfund.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult crowdfund.DeliverResult
	DeliverErr    error
}

var _ crowdfund.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
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

// WriteHandler writes a single key value pair to the store and then
// returns Err.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ crowdfund.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &crowdfund.CheckResult{}, nil
}

func (h *WriteHandler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &crowdfund.DeliverResult{}, nil
}

// PanicHandler panics with Msg on every call.
type PanicHandler struct {
	Msg interface{}
}

var _ crowdfund.Handler = PanicHandler{}

func (p PanicHandler) Check(crowdfund.Context, crowdfund.KVStore, crowdfund.Tx) (*crowdfund.CheckResult, error) {
	panic(p.Msg)
}

func (p PanicHandler) Deliver(crowdfund.Context, crowdfund.KVStore, crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	panic(p.Msg)
}
