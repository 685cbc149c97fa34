package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
	"github.com/iov-one/crowdfund/weavetest"
	"github.com/iov-one/crowdfund/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
)

const dummyKey = "dummy"

type dummyInit struct{}

func (dummyInit) FromGenesis(opts crowdfund.Options, kv crowdfund.KVStore) error {
	var value string
	if err := opts.ReadOptions(dummyKey, &value); err != nil {
		return err
	}
	if value == "" {
		return nil
	}
	return kv.Set([]byte(dummyKey), []byte(value))
}

type countInit struct {
	called int
}

func (c *countInit) FromGenesis(crowdfund.Options, crowdfund.KVStore) error {
	c.called++
	return nil
}

// keyQuery returns the value stored under the queried key.
type keyQuery struct{}

func (keyQuery) Query(db crowdfund.ReadOnlyKVStore, mod string, data []byte) ([]crowdfund.Model, error) {
	if mod != crowdfund.KeyQueryMod {
		return nil, errors.Wrap(errors.ErrHuman, "only key queries")
	}
	value, err := db.Get(data)
	if err != nil || value == nil {
		return nil, err
	}
	return []crowdfund.Model{crowdfund.Pair(data, value)}, nil
}

// pathDecoder builds a transaction that routes to the path given as raw
// bytes.
func pathDecoder(raw []byte) (crowdfund.Tx, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "empty tx")
	}
	if string(raw) == "panic" {
		panic("decoder")
	}
	return &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: string(raw)}}, nil
}

func newTestApp(t *testing.T, kv crowdfund.CommitKVStore) BaseApp {
	t.Helper()
	qr := crowdfund.NewQueryRouter()
	qr.Register("/keys", keyQuery{})

	r := NewRouter()
	r.Handle(&weavetest.Msg{RoutePath: "write"}, &weavetest.WriteHandler{Key: []byte("written"), Value: []byte("yes")})
	r.Handle(&weavetest.Msg{RoutePath: "fail"}, &weavetest.WriteHandler{Key: []byte("failed"), Value: []byte("yes"), Err: errors.ErrInput})

	handler := ChainDecorators(
		utils.NewRecovery(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(r)

	s := NewStoreApp("test-app", kv, qr, context.Background()).WithInit(ChainInitializers(dummyInit{}))
	return NewBaseApp(s, pathDecoder, handler, false)
}

func queryKey(t *testing.T, a BaseApp, key string) (string, bool) {
	t.Helper()
	res := a.Query(abci.RequestQuery{Path: "/keys", Data: []byte(key)})
	require.Equal(t, uint32(0), res.Code, res.Log)

	var keys, values ResultSet
	require.NoError(t, keys.Unmarshal(res.Key))
	require.NoError(t, values.Unmarshal(res.Value))
	models, err := JoinResults(&keys, &values)
	require.NoError(t, err)
	if len(models) == 0 {
		return "", false
	}
	return string(models[0].Value), true
}

func TestStoreAppLifecycle(t *testing.T) {
	kv := store.NewMemCommitStore()
	a := newTestApp(t, kv)

	a.InitChain(abci.RequestInitChain{
		ChainId:       "test-chain",
		AppStateBytes: []byte(`{"dummy": "genesis"}`),
	})
	assert.Equal(t, "test-chain", a.GetChainID())

	now := time.Unix(1700000000, 0).UTC()
	a.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: now}})
	ctx := a.BlockContext()
	height, _ := crowdfund.GetHeight(ctx)
	assert.Equal(t, int64(1), height)
	blockTime, ok := crowdfund.BlockTime(ctx)
	assert.True(t, ok)
	assert.Equal(t, now, blockTime)
	assert.Equal(t, "test-chain", crowdfund.GetChainID(ctx))

	// check does not change deliver state
	assert.Equal(t, uint32(0), a.CheckTx([]byte("write")).Code)

	res := a.DeliverTx([]byte("write"))
	assert.Equal(t, uint32(0), res.Code, res.Log)
	res = a.DeliverTx([]byte("fail"))
	assert.Equal(t, uint32(14), res.Code)
	res = a.DeliverTx([]byte("unknown"))
	assert.Equal(t, uint32(3), res.Code)
	res = a.DeliverTx(nil)
	assert.Equal(t, uint32(14), res.Code)
	res = a.DeliverTx([]byte("panic"))
	assert.Equal(t, uint32(111222), res.Code)

	// nothing is visible before commit
	_, found := queryKey(t, a, "written")
	assert.False(t, found)

	a.EndBlock(abci.RequestEndBlock{})
	commit := a.Commit()
	assert.NotEmpty(t, commit.Data)

	v, found := queryKey(t, a, "written")
	assert.True(t, found)
	assert.Equal(t, "yes", v)
	v, found = queryKey(t, a, dummyKey)
	assert.True(t, found)
	assert.Equal(t, "genesis", v)
	_, found = queryKey(t, a, "failed")
	assert.False(t, found)

	info := a.Info(abci.RequestInfo{})
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, commit.Data, info.LastBlockAppHash)
	assert.Equal(t, "test-app", info.Data)

	// a restart picks up the chain id and the height
	restarted := newTestApp(t, kv)
	assert.Equal(t, "test-chain", restarted.GetChainID())
	assert.Equal(t, int64(1), restarted.Info(abci.RequestInfo{}).LastBlockHeight)
	assert.Panics(t, func() {
		restarted.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	})
}

func TestQueryErrors(t *testing.T) {
	a := newTestApp(t, store.NewMemCommitStore())

	res := a.Query(abci.RequestQuery{Path: "/nothing"})
	assert.Equal(t, uint32(3), res.Code)

	res = a.Query(abci.RequestQuery{Path: "/keys?prefix", Data: []byte("a")})
	assert.Equal(t, uint32(7), res.Code)
}

func TestInitChainErrors(t *testing.T) {
	cases := map[string]abci.RequestInitChain{
		"no app state":     {ChainId: "test-chain"},
		"invalid json":     {ChainId: "test-chain", AppStateBytes: []byte(`{`)},
		"invalid chain id": {ChainId: "x", AppStateBytes: []byte(`{}`)},
		"bad option":       {ChainId: "test-chain", AppStateBytes: []byte(`{"dummy": 5}`)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			a := newTestApp(t, store.NewMemCommitStore())
			assert.Panics(t, func() { a.InitChain(req) })
		})
	}
}

func TestChainInitializers(t *testing.T) {
	c1, c2 := &countInit{}, &countInit{}
	init := ChainInitializers(c1, dummyInit{}, c2)

	opts := crowdfund.Options{dummyKey: json.RawMessage(`"x"`)}
	require.NoError(t, init.FromGenesis(opts, store.MemStore()))
	assert.Equal(t, 1, c1.called)
	assert.Equal(t, 1, c2.called)

	// stops at the first failure
	opts = crowdfund.Options{dummyKey: json.RawMessage(`7`)}
	assert.Error(t, init.FromGenesis(opts, store.MemStore()))
	assert.Equal(t, 2, c1.called)
	assert.Equal(t, 1, c2.called)
}

func TestResultSet(t *testing.T) {
	models := []crowdfund.Model{
		crowdfund.Pair([]byte("k1"), []byte("v1")),
		crowdfund.Pair([]byte("k2"), []byte("v2")),
	}
	keys, err := ResultsFromKeys(models).Marshal()
	require.NoError(t, err)
	values, err := ResultsFromValues(models).Marshal()
	require.NoError(t, err)

	var k, v ResultSet
	require.NoError(t, k.Unmarshal(keys))
	require.NoError(t, v.Unmarshal(values))
	got, err := JoinResults(&k, &v)
	require.NoError(t, err)
	assert.Equal(t, models, got)

	_, err = JoinResults(&k, &ResultSet{})
	assert.Error(t, err)

	var first weavetest.Msg
	require.NoError(t, UnmarshalOneResult(values, &first))
	assert.Equal(t, []byte("v1"), first.Serialized)
}

func TestLoadGenesis(t *testing.T) {
	_, err := LoadGenesis("/no/such/genesis.json")
	assert.True(t, errors.ErrInput.Is(err))
}
