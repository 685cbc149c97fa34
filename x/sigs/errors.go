package sigs

import (
	"github.com/iov-one/crowdfund/errors"
)

// x/sigs reserves 120~129 error codes

// ErrInvalidSequence is returned when the signature sequence does not
// match the stored one.
var ErrInvalidSequence = errors.Register(120, "invalid sequence number")
