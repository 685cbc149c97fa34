package campaign

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x"
	"github.com/iov-one/crowdfund/x/cash"
)

const (
	initializeCost = 300
	donateCost     = 100
	withdrawCost   = 100
)

// RegisterQuery will register this bucket as "/campaigns"
func RegisterQuery(qr crowdfund.QueryRouter) {
	NewBucket().Register("campaigns", qr)
}

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r crowdfund.Registry, auth x.Authenticator, cashctrl cash.Controller) {
	bucket := NewBucket()
	r.Handle(&InitializeMsg{}, InitializeHandler{auth: auth, bucket: bucket})
	r.Handle(&DonateMsg{}, DonateHandler{auth: auth, bucket: bucket, cash: cashctrl})
	r.Handle(&WithdrawMsg{}, WithdrawHandler{auth: auth, bucket: bucket, cash: cashctrl})
}

func checkSystem(system crowdfund.Address) error {
	if !system.Equals(cash.SystemProgramID) {
		return errors.Wrapf(errors.ErrInvalidProgram, "system account %s", system)
	}
	return nil
}

func tags(action string, addr crowdfund.Address) []crowdfund.KVPair {
	return []crowdfund.KVPair{
		crowdfund.Tag("action", []byte(action)),
		crowdfund.Tag("campaign", []byte(addr.String())),
	}
}

//---------------- initialize ----------------

// InitializeHandler creates campaigns.
type InitializeHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ crowdfund.Handler = InitializeHandler{}

// Check runs all guards without writing.
func (h InitializeHandler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	res := crowdfund.NewCheck(initializeCost, "")
	return &res, nil
}

// Deliver stores a new campaign at its derived address.
func (h InitializeHandler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	msg, nonce, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	c := &Campaign{
		Authority:   msg.Authority,
		Goal:        msg.Goal,
		Deadline:    msg.Deadline,
		TotalRaised: 0,
		Nonce:       nonce,
		CampaignID:  msg.CampaignID,
	}
	if err := h.bucket.Create(db, NewCampaign(msg.Campaign, c)); err != nil {
		return nil, err
	}

	crowdfund.GetLogger(ctx).Debug("campaign initialized",
		"campaign", msg.Campaign,
		"authority", msg.Authority,
		"goal", msg.Goal,
		"deadline", msg.Deadline)

	return &crowdfund.DeliverResult{
		Data: msg.Campaign,
		Tags: tags(pathInitializeMsg, msg.Campaign),
	}, nil
}

func (h InitializeHandler) validate(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*InitializeMsg, uint8, error) {
	var msg InitializeMsg
	if err := crowdfund.LoadMsg(tx, &msg); err != nil {
		return nil, 0, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Authority) {
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "authority signature missing")
	}
	if err := checkSystem(msg.System); err != nil {
		return nil, 0, err
	}

	addr, nonce, err := CampaignAddress(msg.Authority, msg.CampaignID)
	if err != nil {
		return nil, 0, err
	}
	if !addr.Equals(msg.Campaign) {
		return nil, 0, errors.Wrapf(errors.ErrConstraintSeeds, "campaign account %s, derived %s", msg.Campaign, addr)
	}
	if addr.Equals(msg.Authority) {
		return nil, 0, errors.Wrap(errors.ErrConstraintSeeds, "campaign account is the authority")
	}

	exists, err := h.bucket.Has(db, addr)
	if err != nil {
		return nil, 0, err
	}
	if exists {
		return nil, 0, errors.Wrapf(errors.ErrAccountInUse, "campaign %s", addr)
	}
	return &msg, nonce, nil
}

//---------------- donate ----------------

// DonateHandler moves funds from donors to the campaign escrow.
type DonateHandler struct {
	auth   x.Authenticator
	bucket Bucket
	cash   cash.Controller
}

var _ crowdfund.Handler = DonateHandler{}

// Check runs all guards that do not depend on the donor balance.
func (h DonateHandler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	res := crowdfund.NewCheck(donateCost, "")
	return &res, nil
}

// Deliver transfers the donation and adds it to the total raised.
// Both happen in the same store so a failed transfer leaves the total
// untouched.
func (h DonateHandler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	msg, c, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	total := c.TotalRaised + msg.Amount
	if total < c.TotalRaised {
		return nil, errors.Wrapf(errors.ErrOverflow, "total raised %d plus %d", c.TotalRaised, msg.Amount)
	}
	if err := h.cash.MoveCoins(db, msg.Donor, msg.Campaign, msg.Amount); err != nil {
		return nil, errors.Wrap(err, "transfer donation")
	}
	c.TotalRaised = total
	if err := h.bucket.Save(db, NewCampaign(msg.Campaign, c)); err != nil {
		return nil, err
	}

	crowdfund.GetLogger(ctx).Debug("campaign donation",
		"campaign", msg.Campaign,
		"donor", msg.Donor,
		"amount", msg.Amount,
		"total_raised", c.TotalRaised)

	return &crowdfund.DeliverResult{
		Tags: tags(pathDonateMsg, msg.Campaign),
	}, nil
}

func (h DonateHandler) validate(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*DonateMsg, *Campaign, error) {
	var msg DonateMsg
	if err := crowdfund.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Donor) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "donor signature missing")
	}
	if err := checkSystem(msg.System); err != nil {
		return nil, nil, err
	}
	c, err := h.bucket.GetCampaign(db, msg.Campaign)
	if err != nil {
		return nil, nil, err
	}
	if c.IsExpired(blockNow(ctx)) {
		return nil, nil, errors.Wrapf(ErrCampaignExpired, "deadline %s", c.Deadline)
	}
	return &msg, c, nil
}

//---------------- withdraw ----------------

// WithdrawHandler drains a successful campaign to its authority.
type WithdrawHandler struct {
	auth   x.Authenticator
	bucket Bucket
	cash   cash.Controller
}

var _ crowdfund.Handler = WithdrawHandler{}

// Check runs all guards without moving funds.
func (h WithdrawHandler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	res := crowdfund.NewCheck(withdrawCost, "")
	return &res, nil
}

// Deliver moves the whole escrow balance to the creator. Calling it
// again after a successful withdrawal moves nothing.
func (h WithdrawHandler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	escrow, err := h.cash.Balance(db, msg.Campaign)
	if err != nil {
		return nil, err
	}
	if err := h.cash.MoveCoins(db, msg.Campaign, msg.Creator, escrow); err != nil {
		return nil, errors.Wrap(err, "release escrow")
	}

	crowdfund.GetLogger(ctx).Debug("campaign withdrawal",
		"campaign", msg.Campaign,
		"creator", msg.Creator,
		"amount", escrow)

	return &crowdfund.DeliverResult{
		Tags: tags(pathWithdrawMsg, msg.Campaign),
	}, nil
}

func (h WithdrawHandler) validate(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*WithdrawMsg, error) {
	var msg WithdrawMsg
	if err := crowdfund.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Creator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "creator signature missing")
	}
	if err := checkSystem(msg.System); err != nil {
		return nil, err
	}
	c, err := h.bucket.GetCampaign(db, msg.Campaign)
	if err != nil {
		return nil, err
	}
	if !c.Authority.Equals(msg.Creator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "creator is not the campaign authority")
	}
	if !c.CanWithdraw(blockNow(ctx)) {
		return nil, errors.Wrapf(ErrWithdrawNotAllowed,
			"raised %d of %d, deadline %s", c.TotalRaised, c.Goal, c.Deadline)
	}
	return &msg, nil
}
