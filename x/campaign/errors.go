package campaign

import (
	"github.com/iov-one/crowdfund/errors"
)

// x/campaign reserves 6000~6099 error codes
var (
	// ErrCampaignExpired is returned when a donation arrives after the
	// deadline.
	ErrCampaignExpired = errors.Register(6000, "Campaign has expired")

	// ErrWithdrawNotAllowed is returned when the goal is not met or the
	// deadline has not passed yet.
	ErrWithdrawNotAllowed = errors.Register(6001, "Withdrawal not allowed")
)
