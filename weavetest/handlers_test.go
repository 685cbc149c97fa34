package weavetest

import (
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
	"github.com/iov-one/crowdfund/weavetest/assert"
)

func TestDecoratorWithHandler(t *testing.T) {
	handler := &Handler{}
	decorator := &Decorator{}
	h := Decorate(handler, decorator)

	db := store.MemStore()
	ctx := UnixCtx(1, 100)

	_, err := h.Check(ctx, db, &Tx{})
	assert.Nil(t, err)
	_, err = h.Deliver(ctx, db, &Tx{})
	assert.Nil(t, err)

	assert.Equal(t, 2, decorator.CallCount())
	assert.Equal(t, 2, handler.CallCount())
	assert.Equal(t, 1, handler.CheckCallCount())
	assert.Equal(t, 1, handler.DeliverCallCount())
}

func TestDecoratorError(t *testing.T) {
	handler := &Handler{}
	decorator := &Decorator{
		CheckErr:   errors.ErrNotFound,
		DeliverErr: errors.ErrUnauthorized,
	}
	h := Decorate(handler, decorator)

	db := store.MemStore()
	ctx := UnixCtx(1, 100)

	_, err := h.Check(ctx, db, &Tx{})
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = h.Deliver(ctx, db, &Tx{})
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Equal(t, 2, decorator.CallCount())
	assert.Equal(t, 0, handler.CallCount())
}

func TestAuth(t *testing.T) {
	a, b, c := NewAddress(), NewAddress(), NewAddress()
	auth := &Auth{Signer: a, Signers: []crowdfund.Address{b}}
	ctx := UnixCtx(1, 100)

	assert.Equal(t, true, auth.HasAddress(ctx, a))
	assert.Equal(t, true, auth.HasAddress(ctx, b))
	assert.Equal(t, false, auth.HasAddress(ctx, c))

	cauth := &CtxAuth{Key: "auth"}
	ctx = cauth.SetSigners(ctx, c)
	assert.Equal(t, true, cauth.HasAddress(ctx, c))
	assert.Equal(t, false, cauth.HasAddress(ctx, a))
}
