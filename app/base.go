package app

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp runs decoded transactions through the handler stack, on top
// of the storage and queries of StoreApp. CheckTx works on the check
// store and DeliverTx on the deliver store of the current block.
type BaseApp struct {
	*StoreApp
	decoder crowdfund.TxDecoder
	handler crowdfund.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs an abci application. With debug set, error
// responses carry the full stack instead of a redacted log.
func NewBaseApp(store *StoreApp, decoder crowdfund.TxDecoder, handler crowdfund.Handler, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.decode(txBytes)
	if err != nil {
		return crowdfund.DeliverTxError(err, b.debug)
	}
	res, err := b.handler.Deliver(b.txContext("deliver_tx", tx), b.DeliverStore(), tx)
	return crowdfund.DeliverOrError(res, err, b.debug)
}

func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.decode(txBytes)
	if err != nil {
		return crowdfund.CheckTxError(err, b.debug)
	}
	res, err := b.handler.Check(b.txContext("check_tx", tx), b.CheckStore(), tx)
	return crowdfund.CheckOrError(res, err, b.debug)
}

// txContext tags the logger of the block context with the abci call
// and the message path.
func (b BaseApp) txContext(call string, tx crowdfund.Tx) crowdfund.Context {
	return crowdfund.WithLogInfo(b.BlockContext(),
		"call", call,
		"path", crowdfund.GetPath(tx))
}

// decode runs the decoder. A decoder panic on malformed bytes becomes
// ErrPanic.
func (b BaseApp) decode(raw []byte) (tx crowdfund.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(raw)
}
