package cash

import (
	"testing"

	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
	"github.com/iov-one/crowdfund/weavetest"
	"github.com/iov-one/crowdfund/weavetest/assert"
)

func TestMoveCoins(t *testing.T) {
	alice, bob := weavetest.NewAddress(), weavetest.NewAddress()

	cases := map[string]struct {
		aliceBalance uint64
		bobBalance   uint64
		amount       uint64
		wantErr      *errors.Error
		wantAlice    uint64
		wantBob      uint64
	}{
		"simple transfer": {
			aliceBalance: 100,
			amount:       30,
			wantAlice:    70,
			wantBob:      30,
		},
		"whole balance": {
			aliceBalance: 100,
			bobBalance:   5,
			amount:       100,
			wantAlice:    0,
			wantBob:      105,
		},
		"insufficient funds": {
			aliceBalance: 10,
			amount:       11,
			wantErr:      errors.ErrInsufficientAmount,
			wantAlice:    10,
		},
		"empty source account": {
			amount:  1,
			wantErr: errors.ErrInsufficientAmount,
		},
		"zero amount is a no-op": {
			amount: 0,
		},
		"recipient overflow": {
			aliceBalance: 10,
			bobBalance:   ^uint64(0) - 5,
			amount:       10,
			wantErr:      errors.ErrOverflow,
			wantAlice:    10,
			wantBob:      ^uint64(0) - 5,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController(NewBucket())
			if tc.aliceBalance > 0 {
				assert.Nil(t, ctrl.CoinMint(db, alice, tc.aliceBalance))
			}
			if tc.bobBalance > 0 {
				assert.Nil(t, ctrl.CoinMint(db, bob, tc.bobBalance))
			}

			// a failed transfer must not leave partial state behind
			cache := db.CacheWrap()
			err := ctrl.MoveCoins(cache, alice, bob, tc.amount)
			assert.IsErr(t, tc.wantErr, err)
			if err == nil {
				assert.Nil(t, cache.Write())
			} else {
				cache.Discard()
			}

			got, err := ctrl.Balance(db, alice)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantAlice, got)
			got, err = ctrl.Balance(db, bob)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantBob, got)
		})
	}
}

func TestMoveCoinsToSelf(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())
	alice := weavetest.NewAddress()
	assert.Nil(t, ctrl.CoinMint(db, alice, 50))

	assert.Nil(t, ctrl.MoveCoins(db, alice, alice, 50))
	got, err := ctrl.Balance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, uint64(50), got)

	err = ctrl.MoveCoins(db, alice, alice, 51)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
}

func TestCoinMintOverflow(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())
	alice := weavetest.NewAddress()
	assert.Nil(t, ctrl.CoinMint(db, alice, ^uint64(0)))
	err := ctrl.CoinMint(db, alice, 1)
	assert.IsErr(t, errors.ErrOverflow, err)
}

func TestWalletEncoding(t *testing.T) {
	for _, balance := range []uint64{0, 1, 1 << 40, 1<<64 - 1} {
		raw, err := (&Wallet{Balance: balance}).Marshal()
		assert.Nil(t, err)
		var got Wallet
		assert.Nil(t, got.Unmarshal(raw))
		assert.Equal(t, balance, got.Balance)
	}

	raw, err := (&Wallet{Balance: 1 << 40}).Marshal()
	assert.Nil(t, err)
	var got Wallet
	assert.IsErr(t, errors.ErrModel, got.Unmarshal(raw[:len(raw)-1]))
	assert.IsErr(t, errors.ErrModel, got.Unmarshal([]byte{0x00}))
}
