package app

import (
	"encoding/json"
	"path/filepath"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/iov-one/crowdfund/x/cash"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is reported by abci.Info and names the database directory.
const Name = "crowdfund"

// DefaultBalance is given to every account listed by GenInitOptions.
const DefaultBalance = 1000000000

// GenesisState is the app_state section of the genesis file.
type GenesisState struct {
	Cash      []cash.GenesisAccount      `json:"cash"`
	Campaigns []campaign.GenesisCampaign `json:"campaign"`
}

// GenInitOptions produces the app state funding every given address
// with DefaultBalance.
func GenInitOptions(addrs []crowdfund.Address) (json.RawMessage, error) {
	state := GenesisState{
		Cash:      make([]cash.GenesisAccount, 0, len(addrs)),
		Campaigns: []campaign.GenesisCampaign{},
	}
	for i, a := range addrs {
		if err := a.Validate(); err != nil {
			return nil, errors.Wrapf(err, "address %d", i)
		}
		state.Cash = append(state.Cash, cash.GenesisAccount{
			Address: a,
			Balance: DefaultBalance,
		})
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// DBPath is where the node keeps its state inside home. An empty home
// selects an in memory database.
func DBPath(home string) string {
	if home == "" {
		return ""
	}
	return filepath.Join(home, Name+".db")
}

// GenerateApp is used to create a stub for the start command
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	application, err := Application(Name, Stack(), TxDecoder, DBPath(home), debug)
	if err != nil {
		return nil, err
	}
	// set the logger and return
	application.WithLogger(logger)
	return application, nil
}
