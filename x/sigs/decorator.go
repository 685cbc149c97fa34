/*
Package sigs verifies the ed25519 signatures of a transaction and keeps
one sequence per signing key, so a signed transaction is accepted at
most once.
*/
package sigs

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// SignatureCost is the gas a check pays for every verified signer.
const SignatureCost = 500

// RegisterQuery exposes the signer sequences under "/auth".
func RegisterQuery(qr crowdfund.QueryRouter) {
	NewBucket().Register("auth", qr)
}

// Decorator verifies the signatures of a SignedTx, bumps the sequence of
// every signer and hands the signers to Authenticate through the
// context. A transaction without signatures is rejected unless
// AllowMissingSigs was used.
type Decorator struct {
	optional bool
}

var _ crowdfund.Decorator = Decorator{}

func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs passes unsigned transactions down the stack with an
// empty signer list.
func (d Decorator) AllowMissingSigs() Decorator {
	d.optional = true
	return d
}

func (d Decorator) Check(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Checker) (*crowdfund.CheckResult, error) {
	ctx, signed, err := d.authenticate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res.GasAllocated += int64(signed) * SignatureCost
	return res, nil
}

func (d Decorator) Deliver(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Deliverer) (*crowdfund.DeliverResult, error) {
	ctx, _, err := d.authenticate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

// authenticate returns ctx carrying the verified signers and their
// count. A transaction type that cannot carry signatures passes as is.
func (d Decorator) authenticate(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx) (crowdfund.Context, int, error) {
	stx, ok := tx.(SignedTx)
	if !ok {
		return ctx, 0, nil
	}
	signers, err := VerifyTxSignatures(store, stx, crowdfund.GetChainID(ctx))
	if err != nil {
		return nil, 0, errors.Wrap(err, "cannot verify signatures")
	}
	if len(signers) == 0 && !d.optional {
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return withSigners(ctx, signers), len(signers), nil
}
