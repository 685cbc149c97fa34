package app

import (
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
	"github.com/iov-one/crowdfund/weavetest"
	"github.com/iov-one/crowdfund/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	c1 := &weavetest.Decorator{}
	c2 := &weavetest.Decorator{}
	c3 := &weavetest.Decorator{}
	h := &weavetest.Handler{}

	stack := ChainDecorators(
		c1,
		utils.NewLogging(),
		utils.NewRecovery(),
		c2,
		nil,
	).Chain(
		c3,
		(*weavetest.Decorator)(nil),
	).WithHandler(h)

	ctx := weavetest.UnixCtx(1, 1000)
	tx := &weavetest.Tx{}

	// make some calls, make sure it is fine
	_, err := stack.Check(ctx, nil, tx)
	assert.NoError(t, err)
	_, err = stack.Deliver(ctx, nil, tx)
	assert.NoError(t, err)

	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// a failing decorator stops the chain
	c2.DeliverErr = errors.ErrUnauthorized
	_, err = stack.Deliver(ctx, nil, tx)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 3, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

func TestChainRecoversPanic(t *testing.T) {
	stack := ChainDecorators(
		utils.NewRecovery(),
	).WithHandler(weavetest.PanicHandler{Msg: "boom"})

	_, err := stack.Deliver(weavetest.UnixCtx(1, 1000), nil, &weavetest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err))
}

func TestChainSavepoint(t *testing.T) {
	db := store.MemStore()
	fail := &weavetest.WriteHandler{Key: []byte("a"), Value: []byte("1"), Err: errors.ErrInput}
	ok := &weavetest.WriteHandler{Key: []byte("b"), Value: []byte("2")}
	chain := ChainDecorators(utils.NewSavepoint().OnDeliver())

	ctx := weavetest.UnixCtx(1, 1000)
	_, err := chain.WithHandler(fail).Deliver(ctx, db, &weavetest.Tx{})
	assert.True(t, errors.ErrInput.Is(err))
	_, err = chain.WithHandler(ok).Deliver(ctx, db, &weavetest.Tx{})
	require.NoError(t, err)

	assertHas(t, db, "a", false)
	assertHas(t, db, "b", true)
}

func assertHas(t *testing.T, db crowdfund.ReadOnlyKVStore, key string, want bool) {
	t.Helper()
	has, err := db.Has([]byte(key))
	require.NoError(t, err)
	assert.Equal(t, want, has, key)
}
