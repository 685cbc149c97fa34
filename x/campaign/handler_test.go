package campaign

import (
	"context"
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
	"github.com/iov-one/crowdfund/weavetest"
	"github.com/iov-one/crowdfund/weavetest/assert"
	"github.com/iov-one/crowdfund/x/cash"
)

// T is the block time all scenarios are relative to.
const T = 1700000000

// routes collects registered handlers by message path.
type routes map[string]crowdfund.Handler

func (r routes) Handle(m crowdfund.Msg, h crowdfund.Handler) {
	r[m.Path()] = h
}

type testEnv struct {
	t      *testing.T
	db     crowdfund.CacheableKVStore
	auth   *weavetest.CtxAuth
	cash   cash.BaseController
	routes routes
	height int64
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		t:      t,
		db:     store.MemStore(),
		auth:   &weavetest.CtxAuth{Key: "signers"},
		cash:   cash.NewController(cash.NewBucket()),
		routes: make(routes),
	}
	RegisterRoutes(env.routes, env.auth, env.cash)
	return env
}

func (e *testEnv) ctx(now int64, signer crowdfund.Address) crowdfund.Context {
	e.height++
	ctx := weavetest.UnixCtx(e.height, now)
	return e.auth.SetSigners(ctx, signer)
}

// deliver runs msg in its own savepoint, the way the application does.
func (e *testEnv) deliver(now int64, signer crowdfund.Address, msg crowdfund.Msg) error {
	e.t.Helper()
	h, ok := e.routes[msg.Path()]
	if !ok {
		e.t.Fatalf("no handler for %s", msg.Path())
	}
	cache := e.db.CacheWrap()
	if _, err := h.Deliver(e.ctx(now, signer), cache, &weavetest.Tx{Msg: msg}); err != nil {
		cache.Discard()
		return err
	}
	return cache.Write()
}

func (e *testEnv) check(now int64, signer crowdfund.Address, msg crowdfund.Msg) error {
	e.t.Helper()
	cache := e.db.CacheWrap()
	defer cache.Discard()
	_, err := e.routes[msg.Path()].Check(e.ctx(now, signer), cache, &weavetest.Tx{Msg: msg})
	return err
}

func (e *testEnv) mint(addr crowdfund.Address, amount uint64) {
	e.t.Helper()
	assert.Nil(e.t, e.cash.CoinMint(e.db, addr, amount))
}

func (e *testEnv) balance(addr crowdfund.Address) uint64 {
	e.t.Helper()
	b, err := e.cash.Balance(e.db, addr)
	assert.Nil(e.t, err)
	return b
}

func (e *testEnv) campaign(addr crowdfund.Address) *Campaign {
	e.t.Helper()
	c, err := NewBucket().GetCampaign(e.db, addr)
	assert.Nil(e.t, err)
	return c
}

// create initializes a campaign and returns its address.
func (e *testEnv) create(authority crowdfund.Address, id byte, goal uint64, deadline int64) crowdfund.Address {
	e.t.Helper()
	msg, err := NewInitializeMsg(authority, campaignID(id), goal, crowdfund.UnixTime(deadline))
	assert.Nil(e.t, err)
	assert.Nil(e.t, e.deliver(T, authority, msg))
	return msg.Campaign
}

func campaignID(b byte) [32]byte {
	var id [32]byte
	for i := range id {
		id[i] = b
	}
	return id
}

func donate(campaign, donor crowdfund.Address, amount uint64) *DonateMsg {
	return &DonateMsg{Amount: amount, Campaign: campaign, Donor: donor, System: cash.SystemProgramID}
}

func withdraw(campaign, creator crowdfund.Address) *WithdrawMsg {
	return &WithdrawMsg{Campaign: campaign, Creator: creator, System: cash.SystemProgramID}
}

func TestInitialize(t *testing.T) {
	env := newTestEnv(t)
	authority := weavetest.NewAddress()

	addr := env.create(authority, 7, 1000, T+100)

	c := env.campaign(addr)
	assert.Equal(t, authority, c.Authority)
	assert.Equal(t, uint64(1000), c.Goal)
	assert.Equal(t, crowdfund.UnixTime(T+100), c.Deadline)
	assert.Equal(t, uint64(0), c.TotalRaised)
	assert.Equal(t, campaignID(7), c.CampaignID)

	want, nonce, err := CampaignAddress(authority, campaignID(7))
	assert.Nil(t, err)
	assert.Equal(t, want, addr)
	assert.Equal(t, nonce, c.Nonce)

	objs, err := NewBucket().ByAuthority(env.db, authority)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(objs))
}

func TestInitializeAcceptsAnyTerms(t *testing.T) {
	env := newTestEnv(t)
	authority := weavetest.NewAddress()

	// zero goal and a deadline in the past are accepted
	addr := env.create(authority, 1, 0, -5)
	c := env.campaign(addr)
	assert.Equal(t, uint64(0), c.Goal)
	assert.Equal(t, crowdfund.UnixTime(-5), c.Deadline)
}

// P1: a second initialize for the same pair fails with allocation
// conflict, a different id is a different campaign.
func TestInitializeUniqueness(t *testing.T) {
	env := newTestEnv(t)
	authority := weavetest.NewAddress()

	first := env.create(authority, 1, 1000, T+100)

	again, err := NewInitializeMsg(authority, campaignID(1), 5, T+999)
	assert.Nil(t, err)
	assert.IsErr(t, errors.ErrAccountInUse, env.check(T, authority, again))
	assert.IsErr(t, errors.ErrAccountInUse, env.deliver(T, authority, again))

	// the original terms are kept
	assert.Equal(t, uint64(1000), env.campaign(first).Goal)

	other := env.create(authority, 2, 1000, T+100)
	if other.Equals(first) {
		t.Fatal("different campaign ids must derive different addresses")
	}
}

func TestInitializeGuards(t *testing.T) {
	authority := weavetest.NewAddress()
	valid, err := NewInitializeMsg(authority, campaignID(3), 10, T+10)
	assert.Nil(t, err)

	cases := map[string]struct {
		signer  crowdfund.Address
		mutate  func(*InitializeMsg)
		wantErr *errors.Error
	}{
		"valid": {
			signer: authority,
			mutate: func(*InitializeMsg) {},
		},
		"authority did not sign": {
			signer:  weavetest.NewAddress(),
			mutate:  func(*InitializeMsg) {},
			wantErr: errors.ErrUnauthorized,
		},
		"wrong system account": {
			signer:  authority,
			mutate:  func(m *InitializeMsg) { m.System = weavetest.NewAddress() },
			wantErr: errors.ErrInvalidProgram,
		},
		"campaign account not derived": {
			signer:  authority,
			mutate:  func(m *InitializeMsg) { m.Campaign = weavetest.NewAddress() },
			wantErr: errors.ErrConstraintSeeds,
		},
		"campaign account derived for another id": {
			signer: authority,
			mutate: func(m *InitializeMsg) {
				m.Campaign, _, _ = CampaignAddress(authority, campaignID(4))
			},
			wantErr: errors.ErrConstraintSeeds,
		},
		"short account": {
			signer:  authority,
			mutate:  func(m *InitializeMsg) { m.Campaign = m.Campaign[:31] },
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := newTestEnv(t)
			msg := *valid
			tc.mutate(&msg)

			assert.IsErr(t, tc.wantErr, env.check(T, tc.signer, &msg))
			assert.IsErr(t, tc.wantErr, env.deliver(T, tc.signer, &msg))

			has, err := NewBucket().Has(env.db, valid.Campaign)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantErr == nil, has)
		})
	}
}

// P2: total raised is the running sum of accepted donations.
func TestDonateMonotonic(t *testing.T) {
	env := newTestEnv(t)
	authority, donor := weavetest.NewAddress(), weavetest.NewAddress()
	env.mint(donor, 10000)
	addr := env.create(authority, 1, 500, T+100)

	amounts := []uint64{100, 0, 250, 1, 900}
	var sum uint64
	for i, amount := range amounts {
		assert.Nil(t, env.deliver(T+int64(i), donor, donate(addr, donor, amount)))
		sum += amount
		assert.Equal(t, sum, env.campaign(addr).TotalRaised)
		assert.Equal(t, sum, env.balance(addr))
	}
	// donations past the goal are kept
	assert.Equal(t, uint64(10000)-sum, env.balance(donor))
}

func TestDonateAtDeadline(t *testing.T) {
	env := newTestEnv(t)
	authority, donor := weavetest.NewAddress(), weavetest.NewAddress()
	env.mint(donor, 100)
	addr := env.create(authority, 1, 500, T+100)

	assert.Nil(t, env.deliver(T+100, donor, donate(addr, donor, 10)))
	assert.Equal(t, uint64(10), env.campaign(addr).TotalRaised)
}

// P3 and scenario C: donations after the deadline are rejected
// regardless of the amount.
func TestDonateExpired(t *testing.T) {
	env := newTestEnv(t)
	authority, donor := weavetest.NewAddress(), weavetest.NewAddress()
	env.mint(donor, 1000)
	addr := env.create(authority, 1, 500, T+100)
	assert.Nil(t, env.deliver(T+1, donor, donate(addr, donor, 20)))

	for _, amount := range []uint64{0, 50, 1000} {
		msg := donate(addr, donor, amount)
		assert.IsErr(t, ErrCampaignExpired, env.check(T+101, donor, msg))
		assert.IsErr(t, ErrCampaignExpired, env.deliver(T+101, donor, msg))
	}
	assert.Equal(t, uint64(20), env.campaign(addr).TotalRaised)
	assert.Equal(t, uint64(20), env.balance(addr))
	assert.Equal(t, uint64(980), env.balance(donor))
}

func TestDonateGuards(t *testing.T) {
	authority, donor := weavetest.NewAddress(), weavetest.NewAddress()

	cases := map[string]struct {
		signer  crowdfund.Address
		msg     func(campaign crowdfund.Address) *DonateMsg
		wantErr *errors.Error
	}{
		"donor did not sign": {
			signer:  authority,
			msg:     func(c crowdfund.Address) *DonateMsg { return donate(c, donor, 10) },
			wantErr: errors.ErrUnauthorized,
		},
		"unknown campaign": {
			signer:  donor,
			msg:     func(crowdfund.Address) *DonateMsg { return donate(weavetest.NewAddress(), donor, 10) },
			wantErr: errors.ErrNotFound,
		},
		"wrong system account": {
			signer: donor,
			msg: func(c crowdfund.Address) *DonateMsg {
				m := donate(c, donor, 10)
				m.System = donor
				return m
			},
			wantErr: errors.ErrInvalidProgram,
		},
		"insufficient funds": {
			signer:  donor,
			msg:     func(c crowdfund.Address) *DonateMsg { return donate(c, donor, 101) },
			wantErr: errors.ErrInsufficientAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := newTestEnv(t)
			env.mint(donor, 100)
			addr := env.create(authority, 1, 500, T+100)

			err := env.deliver(T+1, tc.signer, tc.msg(addr))
			assert.IsErr(t, tc.wantErr, err)

			// nothing is committed on failure
			assert.Equal(t, uint64(0), env.campaign(addr).TotalRaised)
			assert.Equal(t, uint64(0), env.balance(addr))
			assert.Equal(t, uint64(100), env.balance(donor))
		})
	}
}

func TestDonateOverflow(t *testing.T) {
	env := newTestEnv(t)
	authority, donor := weavetest.NewAddress(), weavetest.NewAddress()
	env.mint(donor, ^uint64(0))
	addr := env.create(authority, 1, 500, T+100)

	assert.Nil(t, env.deliver(T+1, donor, donate(addr, donor, ^uint64(0)-1)))

	// put the donor back in funds without going through the campaign
	assert.Nil(t, env.cash.MoveCoins(env.db, addr, donor, 10))
	err := env.deliver(T+2, donor, donate(addr, donor, 2))
	assert.IsErr(t, errors.ErrOverflow, err)
	assert.Equal(t, ^uint64(0)-1, env.campaign(addr).TotalRaised)
}

// P4 and P6 and scenario A.
func TestScenarioSuccessfulCampaign(t *testing.T) {
	env := newTestEnv(t)
	authority := weavetest.NewAddress()
	alice, bob := weavetest.NewAddress(), weavetest.NewAddress()
	env.mint(alice, 600)
	env.mint(bob, 500)

	addr := env.create(authority, 9, 1000, T+100)
	assert.Nil(t, env.deliver(T+10, alice, donate(addr, alice, 600)))
	assert.Nil(t, env.deliver(T+20, bob, donate(addr, bob, 500)))
	assert.Equal(t, uint64(1100), env.campaign(addr).TotalRaised)
	assert.Equal(t, StatusOpen, env.campaign(addr).Status(T+20, env.balance(addr)))

	// not yet expired
	err := env.deliver(T+50, authority, withdraw(addr, authority))
	assert.IsErr(t, ErrWithdrawNotAllowed, err)
	assert.Equal(t, uint64(1100), env.balance(addr))
	assert.Equal(t, uint64(0), env.balance(authority))

	// the deadline itself is still open
	err = env.deliver(T+100, authority, withdraw(addr, authority))
	assert.IsErr(t, ErrWithdrawNotAllowed, err)

	assert.Equal(t, StatusSucceeded, env.campaign(addr).Status(T+150, env.balance(addr)))
	assert.Nil(t, env.check(T+150, authority, withdraw(addr, authority)))
	assert.Nil(t, env.deliver(T+150, authority, withdraw(addr, authority)))
	assert.Equal(t, uint64(0), env.balance(addr))
	assert.Equal(t, uint64(1100), env.balance(authority))
	assert.Equal(t, StatusDrained, env.campaign(addr).Status(T+150, env.balance(addr)))

	// withdrawing again moves nothing
	assert.Nil(t, env.deliver(T+160, authority, withdraw(addr, authority)))
	assert.Equal(t, uint64(0), env.balance(addr))
	assert.Equal(t, uint64(1100), env.balance(authority))
	// the record stays and keeps its total
	assert.Equal(t, uint64(1100), env.campaign(addr).TotalRaised)
}

// P4 and scenario B: the goal must be met.
func TestScenarioGoalNotMet(t *testing.T) {
	env := newTestEnv(t)
	authority, donor := weavetest.NewAddress(), weavetest.NewAddress()
	env.mint(donor, 200)

	addr := env.create(authority, 1, 1000, T+100)
	assert.Nil(t, env.deliver(T+1, donor, donate(addr, donor, 200)))

	err := env.deliver(T+200, authority, withdraw(addr, authority))
	assert.IsErr(t, ErrWithdrawNotAllowed, err)
	assert.Equal(t, uint64(200), env.balance(addr))
	assert.Equal(t, uint64(0), env.balance(authority))
	assert.Equal(t, StatusFailed, env.campaign(addr).Status(T+200, env.balance(addr)))
}

// P5: only the authority can withdraw, checked before anything else.
func TestWithdrawAuthorization(t *testing.T) {
	env := newTestEnv(t)
	authority, donor, thief := weavetest.NewAddress(), weavetest.NewAddress(), weavetest.NewAddress()
	env.mint(donor, 100)

	addr := env.create(authority, 1, 50, T+100)
	assert.Nil(t, env.deliver(T+1, donor, donate(addr, donor, 100)))

	// signed by the thief, naming itself as creator
	err := env.deliver(T+200, thief, withdraw(addr, thief))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	// naming the authority without its signature
	err = env.deliver(T+200, thief, withdraw(addr, authority))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	// even when the withdrawal would not be allowed yet
	err = env.deliver(T+10, thief, withdraw(addr, thief))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Equal(t, uint64(100), env.balance(addr))
	assert.Equal(t, uint64(0), env.balance(thief))
}

func TestWithdrawWrongSystem(t *testing.T) {
	env := newTestEnv(t)
	authority := weavetest.NewAddress()
	addr := env.create(authority, 1, 0, T)

	msg := withdraw(addr, authority)
	msg.System = weavetest.NewAddress()
	assert.IsErr(t, errors.ErrInvalidProgram, env.deliver(T+1, authority, msg))
}

func TestWithdrawZeroGoal(t *testing.T) {
	env := newTestEnv(t)
	authority := weavetest.NewAddress()
	addr := env.create(authority, 1, 0, T)

	// nothing raised, nothing to move, but allowed
	assert.Nil(t, env.deliver(T+1, authority, withdraw(addr, authority)))
	assert.Equal(t, uint64(0), env.balance(authority))
}

func TestWithdrawIncludesExternalDeposits(t *testing.T) {
	env := newTestEnv(t)
	authority, donor := weavetest.NewAddress(), weavetest.NewAddress()
	env.mint(donor, 100)
	addr := env.create(authority, 1, 10, T+10)
	assert.Nil(t, env.deliver(T+1, donor, donate(addr, donor, 10)))

	// a plain transfer to the escrow address
	env.mint(addr, 5)

	assert.Nil(t, env.deliver(T+11, authority, withdraw(addr, authority)))
	assert.Equal(t, uint64(15), env.balance(authority))
	assert.Equal(t, uint64(0), env.balance(addr))
}

func TestMissingBlockTimePanics(t *testing.T) {
	env := newTestEnv(t)
	authority, donor := weavetest.NewAddress(), weavetest.NewAddress()
	addr := env.create(authority, 1, 10, T+10)

	ctx := crowdfund.WithHeight(context.Background(), 1)
	ctx = env.auth.SetSigners(ctx, donor)
	tx := &weavetest.Tx{Msg: donate(addr, donor, 0)}
	assert.Panics(t, func() {
		env.routes[pathDonateMsg].Deliver(ctx, env.db.CacheWrap(), tx)
	})
}
