package campaign

import (
	"github.com/iov-one/crowdfund"
)

// blockNow returns the time of the block being processed. Handlers
// never read the local clock. A context without block time is a
// wiring bug of the application.
func blockNow(ctx crowdfund.Context) crowdfund.UnixTime {
	now, ok := crowdfund.BlockTime(ctx)
	if !ok {
		panic("block time not present in the context")
	}
	return crowdfund.AsUnixTime(now)
}
