package x

import (
	"github.com/iov-one/crowdfund"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding x/sigs for all extensions.
type Authenticator interface {
	// GetSigners reveals all addresses that authorized the current
	// transaction.
	GetSigners(crowdfund.Context) []crowdfund.Address
	// HasAddress checks if any signer matches this address
	HasAddress(crowdfund.Context, crowdfund.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetSigners combines all signers from all Authenticators
func (m MultiAuth) GetSigners(ctx crowdfund.Context) []crowdfund.Address {
	var res []crowdfund.Address
	for _, impl := range m.impls {
		for _, a := range impl.GetSigners(ctx) {
			if !hasAddr(res, a) {
				res = append(res, a)
			}
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx crowdfund.Context, addr crowdfund.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

func hasAddr(all []crowdfund.Address, a crowdfund.Address) bool {
	for _, x := range all {
		if x.Equals(a) {
			return true
		}
	}
	return false
}
