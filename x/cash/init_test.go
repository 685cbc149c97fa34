package cash

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
	"github.com/iov-one/crowdfund/weavetest"
	"github.com/iov-one/crowdfund/weavetest/assert"
)

func TestGenesis(t *testing.T) {
	addr := weavetest.NewAddress()
	raw := fmt.Sprintf(`[{"address": %q, "balance": 1000}]`, addr.String())

	opts := crowdfund.Options{optKey: json.RawMessage(raw)}
	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	got, err := NewController(NewBucket()).Balance(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1000), got)
}

func TestGenesisInvalidAddress(t *testing.T) {
	opts := crowdfund.Options{optKey: json.RawMessage(`[{"address": "0102", "balance": 1}]`)}
	err := Initializer{}.FromGenesis(opts, store.MemStore())
	assert.IsErr(t, errors.ErrInput, err)
}

func TestGenesisMissingKey(t *testing.T) {
	assert.Nil(t, Initializer{}.FromGenesis(crowdfund.Options{}, store.MemStore()))
}
