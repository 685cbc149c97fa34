/*
Package app links together all the various components
to construct the crowdfund node.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/app"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
	"github.com/iov-one/crowdfund/x"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/iov-one/crowdfund/x/cash"
	"github.com/iov-one/crowdfund/x/sigs"
	"github.com/iov-one/crowdfund/x/utils"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will increment nonce
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching to the cash and campaign
// handlers. Both share one wallet controller, so campaign escrows
// are regular wallets.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	ctrl := cash.NewController(cash.NewBucket())
	cash.RegisterRoutes(r, authFn, ctrl)
	campaign.RegisterRoutes(r, authFn, ctrl)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/wallets", "/campaigns" and "/auth"
func QueryRouter() crowdfund.QueryRouter {
	r := crowdfund.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		campaign.RegisterQuery,
		sigs.RegisterQuery,
	)
	return r
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack() crowdfund.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn))
}

// Initializers returns all extensions reading the genesis app state.
func Initializers() crowdfund.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		campaign.Initializer{},
	)
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h crowdfund.Handler,
	tx crowdfund.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	return StoreApplication(name, h, tx, kv, debug), nil
}

// StoreApplication is Application on top of an already open store.
// The caller owns the store and closes it.
func StoreApplication(name string, h crowdfund.Handler,
	tx crowdfund.TxDecoder, kv crowdfund.CommitKVStore, debug bool) app.BaseApp {

	st := app.NewStoreApp(name, kv, QueryRouter(), context.Background())
	st.WithInit(Initializers())
	return app.NewBaseApp(st, tx, h, debug)
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (crowdfund.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return store.NewMemCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	kv, err := store.NewLevelDBStore(name, dir)
	if err != nil {
		return nil, err
	}
	return kv, nil
}
