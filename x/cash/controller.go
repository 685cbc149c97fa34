package cash

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// Controller is the functionality needed by cash.Handler and by other
// extensions that escrow funds.
type Controller interface {
	// Balance returns the amount held by addr, zero if it has no wallet.
	Balance(crowdfund.ReadOnlyKVStore, crowdfund.Address) (uint64, error)
	// MoveCoins transfers amount from src to dest atomically.
	MoveCoins(store crowdfund.KVStore, src, dest crowdfund.Address, amount uint64) error
}

// BaseController is a simple implementation of controller
// wallet must return something that supports AsSet
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the balance of the wallet at addr.
func (c BaseController) Balance(store crowdfund.ReadOnlyKVStore, addr crowdfund.Address) (uint64, error) {
	obj, err := c.bucket.Get(store, addr)
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return 0, nil
	}
	return AsWallet(obj).Balance, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't have sufficient coins, it fails. A zero amount is
// a no-op.
func (c BaseController) MoveCoins(store crowdfund.KVStore, src, dest crowdfund.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	sender, err := c.bucket.Get(store, src)
	if err != nil {
		return err
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrInsufficientAmount, "empty account %s", src)
	}
	if err := AsWallet(sender).Subtract(amount); err != nil {
		return err
	}

	// moving to itself only needs the funds to be there
	if src.Equals(dest) {
		return nil
	}

	recipient, err := c.bucket.GetOrCreate(store, dest)
	if err != nil {
		return err
	}
	if err := AsWallet(recipient).Add(amount); err != nil {
		return err
	}

	if err := c.bucket.Save(store, sender); err != nil {
		return err
	}
	return c.bucket.Save(store, recipient)
}

// CoinMint attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
func (c BaseController) CoinMint(store crowdfund.KVStore, dest crowdfund.Address, amount uint64) error {
	recipient, err := c.bucket.GetOrCreate(store, dest)
	if err != nil {
		return err
	}
	if err := AsWallet(recipient).Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(store, recipient)
}
