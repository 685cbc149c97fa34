package weavetest

import (
	"context"
	"time"

	"github.com/iov-one/crowdfund"
)

// ChainID is used by all contexts built in this package.
const ChainID = "test-chain"

// BlockCtx returns a context as the application would build it for a
// block at the given height and time.
func BlockCtx(height int64, now time.Time) crowdfund.Context {
	ctx := context.Background()
	ctx = crowdfund.WithHeight(ctx, height)
	ctx = crowdfund.WithChainID(ctx, ChainID)
	ctx = crowdfund.WithBlockTime(ctx, now)
	return ctx
}

// UnixCtx is BlockCtx with the time given in unix seconds.
func UnixCtx(height int64, unix int64) crowdfund.Context {
	return BlockCtx(height, time.Unix(unix, 0).UTC())
}
