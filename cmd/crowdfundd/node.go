package main

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/app"
	cfapp "github.com/iov-one/crowdfund/cmd/crowdfundd/app"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
	"golang.org/x/crypto/ed25519"
)

const (
	genesisFile = "genesis.json"
	flagTime    = "time"
)

// localNode executes transactions directly against the database in the
// home directory, one block per transaction. It must not be used while
// the node is started.
type localNode struct {
	app    app.BaseApp
	closer interface{ Close() }
}

// openNode opens the local database and loads the genesis file if the
// chain was never initialized.
func (c *cli) openNode() (*localNode, error) {
	kv, err := cfapp.CommitKVStore(cfapp.DBPath(c.home()))
	if err != nil {
		return nil, err
	}
	n := &localNode{
		app: cfapp.StoreApplication(cfapp.Name, cfapp.Stack(), cfapp.TxDecoder, kv, c.debug()),
	}
	if closer, ok := kv.(interface{ Close() }); ok {
		n.closer = closer
	}
	n.app.WithLogger(c.logger)

	if n.app.GetChainID() == "" {
		gen, err := app.LoadGenesis(filepath.Join(c.home(), genesisFile))
		if err != nil {
			n.Close()
			return nil, errors.Wrap(err, "chain not initialized, run init first")
		}
		if err := initChain(n.app, gen); err != nil {
			n.Close()
			return nil, err
		}
		// the genesis state is committed on its own, so queries see it
		n.app.Commit()
	}
	return n, nil
}

// initChain turns the panics of InitChain into an error.
func initChain(a app.BaseApp, gen app.Genesis) (err error) {
	defer errors.Recover(&err)
	a.InitChain(abci.RequestInitChain{
		ChainId:       gen.ChainID,
		AppStateBytes: gen.AppState,
	})
	return nil
}

func (n *localNode) Close() {
	if n.closer != nil {
		n.closer.Close()
	}
}

// sign wraps msg into a transaction signed with the next sequence of
// key.
func (n *localNode) sign(key ed25519.PrivateKey, msg crowdfund.Msg) ([]byte, error) {
	seq, err := sigs.NextSequence(n.app.DeliverStore(), keyAddress(key))
	if err != nil {
		return nil, err
	}
	tx, err := cfapp.NewTx(msg)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(key, n.app.GetChainID(), seq); err != nil {
		return nil, err
	}
	return tx.Marshal()
}

// execute runs tx in a new block with the given block time and commits
// it. A failed transaction is returned as an error, the block is
// committed anyway.
func (n *localNode) execute(tx []byte, now time.Time) (*crowdfund.DeliverResult, error) {
	info := n.app.Info(abci.RequestInfo{})
	height := info.LastBlockHeight + 1

	n.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{
			ChainID: n.app.GetChainID(),
			Height:  height,
			Time:    now,
		},
	})
	res := n.app.DeliverTx(tx)
	n.app.EndBlock(abci.RequestEndBlock{Height: height})
	n.app.Commit()
	return crowdfund.ParseDeliverOrError(res)
}

// query runs an exact key query against the committed state and
// unmarshals the first result into obj. It reports whether anything
// was found.
func (n *localNode) query(path string, key []byte, obj crowdfund.Persistent) (bool, error) {
	res := n.app.Query(abci.RequestQuery{Path: path, Data: key})
	if res.Code != errors.SuccessABCICode {
		return false, errors.ABCIError(res.Code, res.Log)
	}
	var set app.ResultSet
	if err := set.Unmarshal(res.Value); err != nil {
		return false, err
	}
	if len(set.Results) == 0 {
		return false, nil
	}
	return true, app.UnmarshalOneResult(res.Value, obj)
}

// blockTime parses the value of the --time flag. Empty means now,
// otherwise unix seconds or RFC 3339.
func blockTime(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		value = strconv.Quote(value)
	}
	var t crowdfund.UnixTime
	if err := t.UnmarshalJSON([]byte(value)); err != nil {
		return time.Time{}, errors.Wrapf(err, "time %s", value)
	}
	return t.Time().UTC(), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
